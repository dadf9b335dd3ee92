package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that are surfaced to the user but never
// terminate the session.
type ErrorKind int

const (
	KindTransportFailure ErrorKind = iota + 1
	KindProtocolError
	KindRejectedMove
	KindNotConnected
	KindMalformedTree
	KindTimeout
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindTransportFailure:
		return "TransportFailure"
	case KindProtocolError:
		return "ProtocolError"
	case KindRejectedMove:
		return "RejectedMove"
	case KindNotConnected:
		return "NotConnected"
	case KindMalformedTree:
		return "MalformedTree"
	case KindTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is matching against a kind.
var (
	ErrTransport     = &Error{Kind: KindTransportFailure}
	ErrProtocol      = &Error{Kind: KindProtocolError}
	ErrRejectedMove  = &Error{Kind: KindRejectedMove}
	ErrNotConnected  = &Error{Kind: KindNotConnected}
	ErrMalformedTree = &Error{Kind: KindMalformedTree}
	ErrTimeout       = &Error{Kind: KindTimeout}
)

// Error is a kinded error. Op names the operation that failed ("fetch
// current_fen", "send move"); Err is the underlying cause, if any.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

// NewError builds an Error of the given kind
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an Error of the given kind with a formatted message
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so errors.Is(err, ErrTimeout)
// works regardless of Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or 0 if err is not a kinded error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
