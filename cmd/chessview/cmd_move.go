package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/chess_viewer/pkg/board"
	"github.com/Dicklesworthstone/chess_viewer/pkg/session"
	"github.com/Dicklesworthstone/chess_viewer/pkg/store"
	"github.com/Dicklesworthstone/chess_viewer/pkg/ui"
)

// runMove opens the stream, sends one move and prints frames until the
// server answers with a position or an error.
func runMove(cmd *cobra.Command, args []string) error {
	from, to, err := board.ParseMove(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := headlessLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	s := newSession(cfg, logger, nil)
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), moveWait)
	defer cancel()
	if err := s.Open(ctx); err != nil {
		return err
	}
	if err := s.SendMove(from, to); err != nil {
		return err
	}

	answered, err := awaitReply(ctx, s, store.New(store.WithLogger(logger)), cmd.OutOrStdout())
	if answered {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("no reply to %s%s within %s", from, to, moveWait)
	}
	return err
}

// awaitReply feeds stream events through a store until the position moves
// or an error lands. answered reports whether that happened; err is the
// error the server or the connection reported.
func awaitReply(ctx context.Context, s ui.Stream, st *store.Store, out io.Writer) (answered bool, err error) {
	var replyErr error
	err = followStream(ctx, s, st, func(ev store.Event, c store.Change) bool {
		if f, ok := ev.(store.FrameReceived); ok {
			printFrame(out, f.Message)
		}
		switch {
		case c.Err != nil:
			replyErr = c.Err
			answered = true
		case c.Position:
			answered = true
		}
		return answered
	})
	if err != nil {
		return answered, err
	}
	return answered, replyErr
}

// followStream applies stream events to st in arrival order, calling
// onChange after each, until onChange returns true, ctx ends or the stream
// closes. st is owned by followStream for the duration.
func followStream(ctx context.Context, s ui.Stream, st *store.Store, onChange func(store.Event, store.Change) bool) error {
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	inbox := make(chan store.Event)
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer close(inbox)
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-s.Events():
				if !ok {
					return nil
				}
				select {
				case inbox <- store.FromSession(ev):
				case <-gctx.Done():
					return nil
				}
			}
		}
	})

	g.Go(func() error {
		finished := false
		err := store.Run(gctx, st, inbox, func(ev store.Event, c store.Change) {
			// Run may still pick up a queued event after stop.
			if finished {
				return
			}
			if onChange(ev, c) {
				finished = true
				stop()
			}
		})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})

	return g.Wait()
}

func printFrame(out io.Writer, m session.Message) {
	switch m.Kind {
	case session.KindFEN:
		fmt.Fprintf(out, "fen\t%s\n", m.FEN)
	case session.KindValue:
		fmt.Fprintf(out, "value\t%.2f\n", m.Value)
	case session.KindGameTree:
		fmt.Fprintf(out, "game_tree\t%d bytes\n", len(m.GameTree))
	case session.KindError:
		fmt.Fprintf(out, "error\t%s\n", m.Error)
	}
}
