package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/chess_viewer/pkg/client"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/session"
)

const (
	startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	afterE4  = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	afterE5  = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"
)

type memRecorder struct {
	entries []model.JournalEntry
}

func (m *memRecorder) Record(e model.JournalEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memRecorder) kinds() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Kind
	}
	return out
}

func fenFrame(fen string) Event {
	return FrameReceived{Message: session.Message{Kind: session.KindFEN, FEN: fen}}
}

func TestNew_Defaults(t *testing.T) {
	s := New()
	st := s.State()
	assert.Equal(t, model.StartPosition, st.Position)
	assert.Equal(t, model.OrientationWhite, st.Orientation)
	assert.Nil(t, st.MoveTree)
	assert.Nil(t, st.EvaluationScore)
	assert.False(t, s.Synced())
	assert.Equal(t, session.StateConnecting, s.Connection())
}

func TestApply_StreamBeforeFetchThenFetchOverwrites(t *testing.T) {
	s := New()

	c := s.Apply(fenFrame(startFEN))
	assert.True(t, c.Position)
	assert.True(t, s.Synced())
	assert.Equal(t, model.Position(startFEN), s.State().Position)

	c = s.Apply(FetchCompleted{Position: afterE4})
	assert.True(t, c.Position, "late fetch is last write")
	assert.Equal(t, model.Position(afterE4), s.State().Position)

	s.Apply(fenFrame(afterE5))
	assert.Equal(t, model.Position(afterE5), s.State().Position)
}

func TestApply_InvalidPositionIsDropped(t *testing.T) {
	rec := &memRecorder{}
	s := New(WithRecorder(rec))
	s.Apply(FetchCompleted{Position: afterE4})

	c := s.Apply(fenFrame("rnbqkbnr/pppp"))
	assert.False(t, c.Any())
	assert.NoError(t, c.Err)
	assert.Equal(t, model.Position(afterE4), s.State().Position)

	fresh := New()
	fresh.Apply(fenFrame("garbage"))
	assert.False(t, fresh.Synced(), "an invalid first position does not sync")
	assert.Equal(t, model.StartPosition, fresh.State().Position)
	assert.Equal(t, []string{model.JournalPosition}, rec.kinds())
}

func TestApply_ErrorFrameLeavesPosition(t *testing.T) {
	s := New()
	s.Apply(ConnectionChanged{State: session.StateOpen})
	s.Apply(fenFrame(afterE4))

	c := s.Apply(FrameReceived{Message: session.Message{Kind: session.KindError, Error: "illegal move"}})

	require.Error(t, c.Err)
	assert.True(t, errors.Is(c.Err, model.ErrRejectedMove))
	assert.Contains(t, c.Err.Error(), "illegal move")
	assert.False(t, c.Position)
	assert.Equal(t, model.Position(afterE4), s.State().Position)
	assert.Equal(t, session.StateOpen, s.Connection())
	assert.Equal(t, c.Err, s.LastError())
}

func TestApply_MoveNotSentLeavesPosition(t *testing.T) {
	s := New()
	s.Apply(fenFrame(startFEN))

	err := model.Errorf(model.KindNotConnected, "send move", "session is Connecting")
	c := s.Apply(MoveSent{Move: "e2e4", Err: err})

	assert.True(t, errors.Is(c.Err, model.ErrNotConnected))
	assert.Equal(t, model.Position(startFEN), s.State().Position)
}

func TestApply_GameTree(t *testing.T) {
	s := New()
	c := s.Apply(FrameReceived{Message: session.Message{
		Kind:     session.KindGameTree,
		GameTree: []byte(`{"name":"Start","children":[{"name":"e4","children":[]}]}`),
	}})
	require.True(t, c.Tree)
	tree := s.State().MoveTree
	require.NotNil(t, tree)
	assert.Equal(t, "0-Start-0", tree.ID)
	assert.Equal(t, "1-e4-1", tree.Children[0].ID)

	c = s.Apply(FrameReceived{Message: session.Message{
		Kind:     session.KindGameTree,
		GameTree: []byte(`{"children":[]}`),
	}})
	assert.False(t, c.Tree)
	assert.True(t, errors.Is(c.Err, model.ErrMalformedTree))
	assert.Same(t, tree, s.State().MoveTree, "previous tree kept")
}

func TestApply_GameTreeAsMoveText(t *testing.T) {
	s := New()
	c := s.Apply(FrameReceived{Message: session.Message{Kind: session.KindGameTree, GameTree: []byte("1. e4 e5 (1... c5) 2. Nf3")}})
	require.True(t, c.Tree)
	assert.Equal(t, 5, s.State().MoveTree.Count())
}

func TestApply_GameTreeOpeningWithComment(t *testing.T) {
	s := New()
	c := s.Apply(FrameReceived{Message: session.Message{Kind: session.KindGameTree, GameTree: []byte("{Sicilian} 1. e4 c5 2. Nf3")}})
	require.NoError(t, c.Err)
	require.True(t, c.Tree)
	tree := s.State().MoveTree
	require.NotNil(t, tree)
	assert.Equal(t, []string{"e4", "c5", "Nf3"}, tree.MainLine())
	assert.Equal(t, "3-Nf3-3", tree.Children[0].Children[0].Children[0].ID)
}

func TestApply_Evaluation(t *testing.T) {
	rec := &memRecorder{}
	s := New(WithRecorder(rec), WithClock(func() time.Time { return time.Unix(10, 0) }))

	c := s.Apply(FrameReceived{Message: session.Message{Kind: session.KindValue, Value: 0.3}})

	assert.True(t, c.Evaluation)
	require.NotNil(t, s.State().EvaluationScore)
	assert.Equal(t, 0.3, *s.State().EvaluationScore)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "0.30", rec.entries[0].Payload)
	assert.Equal(t, time.Unix(10, 0), rec.entries[0].CreatedAt)

	st := s.State()
	*st.EvaluationScore = 99
	assert.Equal(t, 0.3, *s.State().EvaluationScore, "State returns a copy")
}

func TestApply_Actions(t *testing.T) {
	s := New()
	s.Apply(fenFrame(afterE4))

	c := s.Apply(ActionCompleted{Action: client.ActionBackward, Position: startFEN})
	assert.True(t, c.Position)
	assert.Equal(t, model.Position(startFEN), s.State().Position)

	failure := model.Errorf(model.KindRejectedMove, "navigate_forward", "no next move")
	c = s.Apply(ActionCompleted{Action: client.ActionForward, Err: failure})
	assert.False(t, c.Position)
	assert.Equal(t, failure, c.Err)
	assert.Equal(t, model.Position(startFEN), s.State().Position)
}

func TestApply_FlipIsLocal(t *testing.T) {
	s := New()
	c := s.Apply(Flipped{})
	assert.True(t, c.Orientation)
	assert.Equal(t, model.OrientationBlack, s.State().Orientation)
	s.Apply(Flipped{})
	assert.Equal(t, model.OrientationWhite, s.State().Orientation)
}

func TestApply_ConnectionChanged(t *testing.T) {
	s := New()
	c := s.Apply(ConnectionChanged{State: session.StateOpen})
	assert.True(t, c.Connection)

	fatal := model.Errorf(model.KindTransportFailure, "read", "eof")
	c = s.Apply(ConnectionChanged{State: session.StateClosed, Err: fatal})
	assert.True(t, c.Connection)
	assert.Equal(t, fatal, c.Err)
	assert.Equal(t, session.StateClosed, s.Connection())
}

func TestClose_LateFetchIsNoop(t *testing.T) {
	s := New()
	s.Close()
	s.Close()

	c := s.Apply(FetchCompleted{Position: afterE4})

	assert.False(t, c.Any())
	assert.Equal(t, model.StartPosition, s.State().Position)
	assert.False(t, s.Synced())
}

func TestFromSession(t *testing.T) {
	msg := session.Message{Kind: session.KindValue, Value: 1}
	assert.Equal(t, FrameReceived{Message: msg}, FromSession(session.MessageEvent{Message: msg}))
	assert.Equal(t, ConnectionChanged{State: session.StateOpen}, FromSession(session.StateEvent{State: session.StateOpen}))
	err := errors.New("x")
	assert.Equal(t, FrameFailed{Err: err}, FromSession(session.ErrorEvent{Err: err}))
}

func TestRun_AppliesInOrderAndCloses(t *testing.T) {
	s := New()
	inbox := make(chan Event, 3)
	inbox <- fenFrame(startFEN)
	inbox <- FetchCompleted{Position: afterE4}
	inbox <- Flipped{}
	close(inbox)

	var seen []Change
	err := Run(context.Background(), s, inbox, func(_ Event, c Change) { seen = append(seen, c) })

	require.NoError(t, err)
	assert.Len(t, seen, 3)
	assert.Equal(t, model.Position(afterE4), s.State().Position)
	assert.Equal(t, model.OrientationBlack, s.State().Orientation)
	assert.True(t, s.Closed())
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, New(), make(chan Event), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
