package ui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/chess_viewer/pkg/analysis"
	"github.com/Dicklesworthstone/chess_viewer/pkg/client"
	"github.com/Dicklesworthstone/chess_viewer/pkg/journal"
	"github.com/Dicklesworthstone/chess_viewer/pkg/loader"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/session"
	"github.com/Dicklesworthstone/chess_viewer/pkg/store"
)

// animationFrame is the tick interval while the tree is moving (~30fps).
const animationFrame = 33 * time.Millisecond

// Backend is the HTTP side of the server.
type Backend interface {
	Do(ctx context.Context, action client.Action) (model.Position, error)
	UploadPGN(ctx context.Context, pgn string) error
}

// Stream is the push channel. *session.Session implements it.
type Stream interface {
	Open(ctx context.Context) error
	SendMove(from, to string) error
	Events() <-chan session.Event
	State() session.State
	Close() error
}

// Journal is the read side of the session journal used by the Stats tab.
type Journal interface {
	CurrentSession() int64
	Evaluations(sessionID int64) ([]float64, error)
	GetSession(id int64) (*model.SessionSummary, error)
}

func (m Model) withTimeout() (context.Context, context.CancelFunc) {
	if m.fetchTimeout > 0 {
		return context.WithTimeout(m.ctx, m.fetchTimeout)
	}
	return context.WithCancel(m.ctx)
}

// fetchCmd asks for the current position once, at startup.
func (m Model) fetchCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		pos, err := backend.Do(ctx, client.ActionCurrent)
		return StoreEventMsg{Event: store.FetchCompleted{Position: pos, Err: err}}
	}
}

// actionCmd runs reset or navigation.
func (m Model) actionCmd(action client.Action) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		pos, err := backend.Do(ctx, action)
		return StoreEventMsg{Event: store.ActionCompleted{Action: action, Position: pos, Err: err}}
	}
}

// openCmd dials the stream. Failures arrive as a Closed state event, so
// the command itself reports nothing.
func (m Model) openCmd() tea.Cmd {
	stream := m.stream
	ctx := m.ctx
	return func() tea.Msg {
		_ = stream.Open(ctx)
		return nil
	}
}

// waitForEvent reads one stream event. It is re-issued after every event
// so the stream is drained in order through the update loop.
func waitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return SessionEndedMsg{}
		}
		return SessionEventMsg{Event: ev}
	}
}

// sendMoveCmd hands a move to the stream
func sendMoveCmd(stream Stream, from, to string) tea.Cmd {
	return func() tea.Msg {
		err := stream.SendMove(from, to)
		return StoreEventMsg{Event: store.MoveSent{Move: from + to, Err: err}}
	}
}

// uploadCmd posts a new game
func (m Model) uploadCmd(pgn, source string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		return PGNUploadedMsg{Source: source, Err: backend.UploadPGN(ctx, pgn)}
	}
}

// reloadFileCmd reads a watched PGN file and posts it
func (m Model) reloadFileCmd(path string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		pgn, err := loader.LoadPGN(path)
		if err != nil {
			return PGNUploadedMsg{Source: path, Err: err}
		}
		ctx, cancel := m.withTimeout()
		defer cancel()
		return PGNUploadedMsg{Source: path, Err: backend.UploadPGN(ctx, pgn)}
	}
}

// statsCmd reads the journal for the Stats tab. tree is summarised as it
// is now; the journal read happens off the update loop.
func statsCmd(j Journal, tree *model.MoveNode) tea.Cmd {
	treeStats := analysis.AnalyzeTree(tree)
	return func() tea.Msg {
		data := StatsData{Tree: treeStats, Eval: analysis.SummarizeEvaluations(nil)}
		if j == nil {
			return StatsMsg{Data: data}
		}
		id := j.CurrentSession()
		scores, err := j.Evaluations(id)
		if err != nil {
			return StatsMsg{Data: data, Err: err}
		}
		data.Eval = analysis.SummarizeEvaluations(scores)
		summary, err := j.GetSession(id)
		if err != nil && !errors.Is(err, journal.ErrNoSession) {
			return StatsMsg{Data: data, Err: err}
		}
		data.Session = summary
		return StatsMsg{Data: data}
	}
}

// copyCmd puts text on the system clipboard
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardMsg{Text: text, Err: clipboard.WriteAll(text)}
	}
}

func animationTick() tea.Cmd {
	return tea.Tick(animationFrame, func(t time.Time) tea.Msg {
		return AnimationTickMsg{At: t}
	})
}
