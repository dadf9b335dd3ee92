// Package store holds the single source of truth for what the board shows:
// position, orientation, move tree and evaluation. Every producer (the
// initial fetch, stream frames, action responses and local gestures) reaches
// it as an Event passed to Apply.
//
// A Store is not safe for concurrent use. It must be owned by one goroutine
// (the bubbletea update loop, or Run), which serialises events so that one is
// fully applied before the next is looked at.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Dicklesworthstone/chess_viewer/pkg/board"
	"github.com/Dicklesworthstone/chess_viewer/pkg/client"
	"github.com/Dicklesworthstone/chess_viewer/pkg/logging"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/movetree"
	"github.com/Dicklesworthstone/chess_viewer/pkg/session"
)

// Event is anything the store reacts to.
type Event interface {
	isEvent()
}

// FetchCompleted is the answer to the initial position fetch.
type FetchCompleted struct {
	Position model.Position
	Err      error
}

// FrameReceived carries one decoded stream frame.
type FrameReceived struct {
	Message session.Message
}

// FrameFailed reports a frame the session could not decode.
type FrameFailed struct {
	Err error
}

// ConnectionChanged mirrors a session state transition.
type ConnectionChanged struct {
	State session.State
	Err   error
}

// ActionCompleted is the answer to reset or navigation.
type ActionCompleted struct {
	Action   client.Action
	Position model.Position
	Err      error
}

// MoveSent reports the outcome of handing a move to the session.
type MoveSent struct {
	Move string
	Err  error
}

// Flipped turns the board around. It never leaves the client.
type Flipped struct{}

func (FetchCompleted) isEvent()    {}
func (FrameReceived) isEvent()     {}
func (FrameFailed) isEvent()       {}
func (ConnectionChanged) isEvent() {}
func (ActionCompleted) isEvent()   {}
func (MoveSent) isEvent()          {}
func (Flipped) isEvent()           {}

// Change says which parts of the state an event touched. Err is the failure
// to surface to the user, if any; it never means the store is broken.
type Change struct {
	Position    bool
	Orientation bool
	Tree        bool
	Evaluation  bool
	Connection  bool
	Err         error
}

// Any returns true if some field of the state changed
func (c Change) Any() bool {
	return c.Position || c.Orientation || c.Tree || c.Evaluation || c.Connection
}

// Recorder receives every applied position and evaluation, every move sent
// and every surfaced error. The session journal implements it.
type Recorder interface {
	Record(entry model.JournalEntry) error
}

// Store is the board state owner.
type Store struct {
	state      model.BoardState
	synced     bool
	connection session.State
	lastErr    error
	closed     bool

	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithRecorder attaches a journal
func WithRecorder(r Recorder) Option { return func(s *Store) { s.recorder = r } }

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.logger = l } }

// WithClock sets the clock used to stamp journal entries
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// New returns a store holding the default state: the start position seen
// from white, no tree and no evaluation.
func New(opts ...Option) *Store {
	s := &Store{
		state:      model.DefaultBoardState(),
		connection: session.StateConnecting,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = logging.Component(s.logger, "store")
	return s
}

// State returns a copy of the board state
func (s *Store) State() model.BoardState {
	st := s.state
	if st.EvaluationScore != nil {
		v := *st.EvaluationScore
		st.EvaluationScore = &v
	}
	return st
}

// Synced returns true once a first valid position has been applied
func (s *Store) Synced() bool {
	return s.synced
}

// Connection returns the last observed stream state
func (s *Store) Connection() session.State {
	return s.connection
}

// LastError returns the most recently surfaced failure
func (s *Store) LastError() error {
	return s.lastErr
}

// Closed returns true after Close
func (s *Store) Closed() bool {
	return s.closed
}

// Close ends the store's life. Every later Apply is a no-op, so a fetch
// that resolves after the view went away cannot write state.
func (s *Store) Close() {
	if !s.closed {
		s.closed = true
		s.logger.Debug("store closed")
	}
}

// Apply folds one event into the state.
func (s *Store) Apply(ev Event) Change {
	if s.closed {
		s.logger.Debug("event after close ignored", "event", fmt.Sprintf("%T", ev))
		return Change{}
	}

	var c Change
	switch e := ev.(type) {
	case FetchCompleted:
		if e.Err != nil {
			c.Err = e.Err
			break
		}
		c = s.setPosition(e.Position, "fetch")
	case FrameReceived:
		c = s.applyMessage(e.Message)
	case FrameFailed:
		c.Err = e.Err
	case ConnectionChanged:
		if s.connection != e.State {
			s.connection = e.State
			c.Connection = true
			s.logger.Info("connection state", "state", e.State.String())
		}
		c.Err = e.Err
	case ActionCompleted:
		if e.Err != nil {
			c.Err = e.Err
			break
		}
		c = s.setPosition(e.Position, string(e.Action))
	case MoveSent:
		if e.Err != nil {
			c.Err = e.Err
			break
		}
		s.record(model.JournalEntry{Kind: model.JournalMove, Payload: e.Move})
	case Flipped:
		s.state.Orientation = s.state.Orientation.Flipped()
		c.Orientation = true
	default:
		s.logger.Warn("unknown event", "event", fmt.Sprintf("%T", ev))
	}

	if c.Err != nil {
		s.lastErr = c.Err
		s.logger.Warn("surfaced error", "kind", model.KindOf(c.Err).String(), "error", c.Err)
		s.record(model.JournalEntry{Kind: model.JournalError, Payload: c.Err.Error()})
	}
	return c
}

func (s *Store) applyMessage(m session.Message) Change {
	switch m.Kind {
	case session.KindFEN:
		return s.setPosition(model.Position(m.FEN), "stream")
	case session.KindGameTree:
		tree, err := movetree.Build(m.GameTree)
		if err != nil {
			if model.KindOf(err) != model.KindMalformedTree {
				err = model.NewError(model.KindMalformedTree, "game tree", err)
			}
			return Change{Err: err}
		}
		s.state.MoveTree = tree
		return Change{Tree: true}
	case session.KindValue:
		v := m.Value
		s.state.EvaluationScore = &v
		s.record(model.JournalEntry{
			Kind:    model.JournalEvaluation,
			Payload: strconv.FormatFloat(v, 'f', 2, 64),
			Score:   &v,
		})
		return Change{Evaluation: true}
	case session.KindError:
		return Change{Err: model.Errorf(model.KindRejectedMove, "move", "%s", m.Error)}
	default:
		return Change{Err: model.Errorf(model.KindProtocolError, "frame", "unknown message kind %d", m.Kind)}
	}
}

// setPosition is last-write-wins across every producer. Malformed positions
// are dropped with a log line and never stored.
func (s *Store) setPosition(p model.Position, source string) Change {
	if err := board.ValidatePosition(p); err != nil {
		s.logger.Warn("dropping invalid position", "source", source, "error", err)
		return Change{}
	}
	if !s.synced {
		s.synced = true
		s.logger.Info("first position applied", "source", source)
	}
	if p == s.state.Position {
		return Change{}
	}
	s.state.Position = p
	s.record(model.JournalEntry{Kind: model.JournalPosition, Payload: string(p)})
	return Change{Position: true}
}

func (s *Store) record(e model.JournalEntry) {
	if s.recorder == nil {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if err := s.recorder.Record(e); err != nil {
		s.logger.Warn("journal write failed", "error", err)
	}
}

// Run owns s on the calling goroutine: it applies events from inbox in
// arrival order until ctx is done or inbox is closed, calling onChange (if
// set) after each one. The store is closed on return.
func Run(ctx context.Context, s *Store, inbox <-chan Event, onChange func(Event, Change)) error {
	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-inbox:
			if !ok {
				return nil
			}
			c := s.Apply(ev)
			if onChange != nil {
				onChange(ev, c)
			}
		}
	}
}

// FromSession translates a session event into a store event
func FromSession(ev session.Event) Event {
	switch e := ev.(type) {
	case session.MessageEvent:
		return FrameReceived{Message: e.Message}
	case session.ErrorEvent:
		return FrameFailed{Err: e.Err}
	case session.StateEvent:
		return ConnectionChanged{State: e.State, Err: e.Err}
	}
	return nil
}
