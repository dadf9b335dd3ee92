package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/chess_viewer/pkg/journal"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Journal == "" {
		return errors.New("no journal file configured; pass --journal or set journal in the config")
	}
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	out := cmd.OutOrStdout()
	if journalEntries > 0 {
		entries, err := j.Entries(journalEntries, "")
		if err != nil {
			return err
		}
		return printEntries(out, entries)
	}
	sessions, err := j.Sessions()
	if err != nil {
		return err
	}
	return printSessions(out, sessions)
}

func printSessions(out io.Writer, sessions []model.SessionSummary) error {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return nil
	}
	t := newTable("ID", "STARTED", "DURATION", "SERVER", "POSITIONS", "EVALS", "MOVES", "ERRORS")
	for _, s := range sessions {
		duration := "open"
		if s.EndedAt != nil {
			duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		t.Row(strconv.FormatInt(s.ID, 10), s.StartedAt.Format(time.DateTime), duration, s.Server,
			strconv.Itoa(s.Positions), strconv.Itoa(s.Evaluations), strconv.Itoa(s.Moves), strconv.Itoa(s.Errors))
	}
	_, err := fmt.Fprintln(out, t.Render())
	return err
}

func printEntries(out io.Writer, entries []model.JournalEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries")
		return nil
	}
	t := newTable("TIME", "KIND", "PAYLOAD")
	for _, e := range entries {
		t.Row(e.CreatedAt.Format(time.TimeOnly), e.Kind, e.Payload)
	}
	_, err := fmt.Fprintln(out, t.Render())
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...)
}
