package model

import "time"

// JournalEntry is one recorded event of a client session
type JournalEntry struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`    // position, evaluation, move, error
	Payload   string    `json:"payload"` // FEN, formatted score, uci move or error text
	Score     *float64  `json:"score,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal entry kinds
const (
	JournalPosition   = "position"
	JournalEvaluation = "evaluation"
	JournalMove       = "move"
	JournalError      = "error"
)

// SessionSummary describes one client session in the journal
type SessionSummary struct {
	ID          int64      `json:"id"`
	ClientID    string     `json:"client_id"`
	Server      string     `json:"server"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Positions   int        `json:"positions"`
	Evaluations int        `json:"evaluations"`
	Moves       int        `json:"moves"`
	Errors      int        `json:"errors"`
}
