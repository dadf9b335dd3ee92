package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/chess_viewer/pkg/updater"
	"github.com/Dicklesworthstone/chess_viewer/pkg/version"
)

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "chessview %s\n", version.Version)
	if !checkUpdates {
		return nil
	}
	tag, url, err := updater.NewChecker().CheckForUpdates(cmd.Context(), version.Version)
	if err != nil {
		return fmt.Errorf("check for updates: %w", err)
	}
	if tag == "" {
		fmt.Fprintln(out, "Up to date")
		return nil
	}
	fmt.Fprintf(out, "Update available: %s\n%s\n", tag, url)
	return nil
}
