// Package session owns the streaming channel to the analysis server: it dials
// the WebSocket, decodes every frame into a tagged Message, sends move
// commands and tears the connection down exactly once. There is no automatic
// reconnect; a fatal read error leaves the session Closed.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Dicklesworthstone/chess_viewer/pkg/logging"
	"github.com/Dicklesworthstone/chess_viewer/pkg/metrics"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// State is the connection lifecycle.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

var stateNames = []string{"Connecting", "Open", "Closing", "Closed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

const (
	DefaultConnectTimeout = 5 * time.Second
	writeTimeout          = 5 * time.Second
	eventBuffer           = 64
)

// ClientIDHeader carries the session's client id on the handshake.
const ClientIDHeader = "X-Chessview-Client"

// Event is what the session reports: a decoded message, a non-fatal error,
// or a state transition.
type Event interface {
	isEvent()
}

// MessageEvent carries one decoded frame.
type MessageEvent struct {
	Message Message
}

// ErrorEvent reports a frame that could not be decoded. The state does not
// change.
type ErrorEvent struct {
	Err error
}

// StateEvent reports a transition. Err is set when the transport failed.
type StateEvent struct {
	State State
	Err   error
}

func (MessageEvent) isEvent() {}
func (ErrorEvent) isEvent()   {}
func (StateEvent) isEvent()   {}

// Session is one streaming connection. Its methods are safe for concurrent
// use; a reader goroutine runs while the session is Open.
type Session struct {
	url            string
	clientID       string
	dialer         *websocket.Dialer
	connectTimeout time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics

	mu     sync.Mutex // guards state, conn, opened
	state  State
	conn   *websocket.Conn
	opened bool

	writeMu sync.Mutex // gorilla allows one concurrent writer

	events       chan Event
	emitMu       sync.Mutex
	eventsClosed bool

	done      chan struct{}
	closeOnce sync.Once
	readDone  chan struct{}
}

// Option customises a Session.
type Option func(*Session)

// WithConnectTimeout bounds the dial and handshake
func WithConnectTimeout(d time.Duration) Option {
	return func(s *Session) { s.connectTimeout = d }
}

// WithDialer replaces the default websocket dialer
func WithDialer(d *websocket.Dialer) Option { return func(s *Session) { s.dialer = d } }

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.logger = l } }

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option { return func(s *Session) { s.metrics = m } }

// WithClientID overrides the generated client id
func WithClientID(id string) Option { return func(s *Session) { s.clientID = id } }

// New prepares a session for url (ws:// or wss://). It starts in Connecting;
// nothing is dialed until Open.
func New(url string, opts ...Option) *Session {
	s := &Session{
		url:            url,
		clientID:       uuid.NewString(),
		dialer:         websocket.DefaultDialer,
		connectTimeout: DefaultConnectTimeout,
		state:          StateConnecting,
		events:         make(chan Event, eventBuffer),
		done:           make(chan struct{}),
		readDone:       make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = logging.Component(s.logger, "session").With("client_id", s.clientID)
	s.metrics.SetConnectionState(StateConnecting.String(), stateNames...)
	return s
}

// ClientID returns the id sent on the handshake
func (s *Session) ClientID() string {
	return s.clientID
}

// Events returns the event stream. It is closed once the session is Closed.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the current connection state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open dials the server. On success the session is Open and frames start
// flowing on Events. On failure it is Closed and the error is a Timeout or
// TransportFailure. Open may be called once.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.opened || s.state != StateConnecting {
		label := stateLabel(s)
		s.mu.Unlock()
		return model.Errorf(model.KindNotConnected, "open", "session already %s", label)
	}
	s.opened = true
	s.mu.Unlock()

	s.emit(StateEvent{State: StateConnecting})
	s.logger.Info("connecting", "url", s.url)

	if s.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()
	}
	header := http.Header{}
	header.Set(ClientIDHeader, s.clientID)

	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		kerr := dialError(err)
		s.logger.Warn("connect failed", "kind", model.KindOf(kerr).String(), "error", err)
		s.metrics.ObserveError(model.KindOf(kerr).String())
		s.finish(kerr)
		close(s.readDone)
		return kerr
	}

	s.mu.Lock()
	if s.state != StateConnecting {
		// Close ran while we were dialing.
		s.mu.Unlock()
		conn.Close()
		s.finish(nil)
		close(s.readDone)
		return model.Errorf(model.KindNotConnected, "open", "closed while connecting")
	}
	s.conn = conn
	s.state = StateOpen
	s.mu.Unlock()

	s.metrics.SetConnectionState(StateOpen.String(), stateNames...)
	s.emit(StateEvent{State: StateOpen})
	s.logger.Info("connected")

	go s.readLoop(conn)
	return nil
}

// stateLabel needs s.mu held.
func stateLabel(s *Session) string {
	if s.opened && s.state == StateConnecting {
		return "opening"
	}
	return s.state.String()
}

func dialError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewError(model.KindTimeout, "connect", err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return model.NewError(model.KindTimeout, "connect", err)
	}
	return model.NewError(model.KindTransportFailure, "connect", err)
}

func (s *Session) readLoop(conn *websocket.Conn) {
	defer close(s.readDone)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closing := s.state == StateClosing
			s.mu.Unlock()
			if closing || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.logger.Info("stream closed")
				s.finish(nil)
				return
			}
			kerr := model.NewError(model.KindTransportFailure, "read", err)
			s.logger.Warn("stream failed", "error", err)
			s.metrics.ObserveError(model.KindTransportFailure.String())
			s.finish(kerr)
			return
		}

		msg, err := Decode(data)
		if err != nil {
			s.logger.Warn("dropping frame", "kind", model.KindProtocolError.String(), "error", err, "bytes", len(data))
			s.metrics.ObserveError(model.KindProtocolError.String())
			s.emit(ErrorEvent{Err: err})
			continue
		}
		s.metrics.ObserveFrame(msg.Kind.String())
		s.emit(MessageEvent{Message: msg})
	}
}

// SendMove sends {"move": from+to}. It only works while Open; otherwise it
// returns a NotConnected error and sends nothing.
func (s *Session) SendMove(from, to string) error {
	s.mu.Lock()
	state, conn := s.state, s.conn
	s.mu.Unlock()
	if state != StateOpen || conn == nil {
		err := model.Errorf(model.KindNotConnected, "send move", "session is %s", state)
		s.logger.Warn("move not sent", "move", from+to, "state", state.String())
		s.metrics.ObserveError(model.KindNotConnected.String())
		return err
	}

	payload, err := EncodeMove(from, to)
	if err != nil {
		return fmt.Errorf("send move: %w", err)
	}

	s.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err = conn.WriteMessage(websocket.TextMessage, payload)
	s.writeMu.Unlock()
	if err != nil {
		s.metrics.ObserveError(model.KindTransportFailure.String())
		return model.NewError(model.KindTransportFailure, "send move", err)
	}
	s.metrics.ObserveMoveSent()
	s.logger.Debug("move sent", "move", from+to)
	return nil
}

// Close moves the session through Closing to Closed and waits for the reader
// to stop. Closing a closed session is a no-op.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	if s.state == StateClosing || s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	opened := s.opened
	conn := s.conn
	s.state = StateClosing
	s.mu.Unlock()

	s.metrics.SetConnectionState(StateClosing.String(), stateNames...)
	s.emit(StateEvent{State: StateClosing})

	if conn == nil {
		if !opened {
			s.finish(nil)
		}
		// A dial in flight notices Closing and finishes on its own.
		return nil
	}

	s.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	s.writeMu.Unlock()
	err := conn.Close()

	<-s.readDone
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close stream: %w", err)
	}
	return nil
}

// finish marks the session Closed and ends the event stream.
func (s *Session) finish(cause error) {
	s.mu.Lock()
	s.state = StateClosed
	s.conn = nil
	s.mu.Unlock()

	s.metrics.SetConnectionState(StateClosed.String(), stateNames...)
	s.emit(StateEvent{State: StateClosed, Err: cause})

	s.emitMu.Lock()
	if !s.eventsClosed {
		s.eventsClosed = true
		close(s.events)
	}
	s.emitMu.Unlock()
}

// emit delivers ev, waiting for room unless the session is being closed, in
// which case events that do not fit are dropped.
func (s *Session) emit(ev Event) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if s.eventsClosed {
		return
	}
	select {
	case s.events <- ev:
		return
	default:
	}
	select {
	case s.events <- ev:
	case <-s.done:
	}
}
