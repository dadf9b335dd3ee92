package ui

import (
	"time"

	"github.com/Dicklesworthstone/chess_viewer/pkg/session"
	"github.com/Dicklesworthstone/chess_viewer/pkg/store"
)

// StoreEventMsg carries a result (fetch, action, move) to be applied to the
// board store.
type StoreEventMsg struct {
	Event store.Event
}

// SessionEventMsg carries one event read from the stream.
type SessionEventMsg struct {
	Event session.Event
}

// SessionEndedMsg means the stream's event channel has been closed.
type SessionEndedMsg struct{}

// AnimationTickMsg advances the tree transitions.
type AnimationTickMsg struct {
	At time.Time
}

// StatsMsg is a fresh read of the session journal.
type StatsMsg struct {
	Data StatsData
	Err  error
}

// PGNUploadedMsg is the server's answer to a new game.
type PGNUploadedMsg struct {
	Source string // "editor" or a file path
	Err    error
}

// PGNFileChangedMsg is sent by the file watcher when a watched PGN file
// changes on disk.
type PGNFileChangedMsg struct {
	Path string
}

// ClipboardMsg reports the outcome of copying the position.
type ClipboardMsg struct {
	Text string
	Err  error
}
