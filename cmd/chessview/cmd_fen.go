package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/chess_viewer/pkg/client"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/ui"
)

func runFEN(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := headlessLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := newClient(cfg, logger, nil)
	if err != nil {
		return err
	}
	pos, err := c.Do(cmd.Context(), client.ActionCurrent)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, pos)
	if showBoard {
		o := model.OrientationWhite
		if flipBoard {
			o = o.Flipped()
		}
		theme := ui.DefaultTheme(lipgloss.NewRenderer(out))
		fmt.Fprintln(out, ui.RenderBoard(pos, o, theme))
	}
	return nil
}
