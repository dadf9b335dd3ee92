// Package client talks to the analysis server's HTTP endpoints: the one-shot
// position fetch, the navigation and reset actions, and PGN upload.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dicklesworthstone/chess_viewer/pkg/logging"
	"github.com/Dicklesworthstone/chess_viewer/pkg/metrics"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// DefaultTimeout bounds every HTTP call.
const DefaultTimeout = 5 * time.Second

// Action is a server-side board action answered with a position.
type Action string

const (
	ActionCurrent  Action = "current_fen"
	ActionReset    Action = "reset"
	ActionForward  Action = "navigate_forward"
	ActionBackward Action = "navigate_backward"
)

func (a Action) method() string {
	if a == ActionCurrent {
		return http.MethodGet
	}
	return http.MethodPost
}

// IsValid returns true for the four known actions
func (a Action) IsValid() bool {
	switch a {
	case ActionCurrent, ActionReset, ActionForward, ActionBackward:
		return true
	}
	return false
}

// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithTimeout sets the per-call timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.metrics = m } }

// New returns a client for the server at baseURL (e.g. http://localhost:5000).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = logging.Component(c.logger, "client")
	return c, nil
}

// positionResponse is {fen} or {error}.
type positionResponse struct {
	FEN   *string `json:"fen"`
	Error *string `json:"error"`
}

// CurrentFEN performs the initial position fetch
func (c *Client) CurrentFEN(ctx context.Context) (model.Position, error) {
	return c.Do(ctx, ActionCurrent)
}

// Reset asks the server to start a new game
func (c *Client) Reset(ctx context.Context) (model.Position, error) {
	return c.Do(ctx, ActionReset)
}

// NavigateForward steps one move forward in the server's game
func (c *Client) NavigateForward(ctx context.Context) (model.Position, error) {
	return c.Do(ctx, ActionForward)
}

// NavigateBackward steps one move back in the server's game
func (c *Client) NavigateBackward(ctx context.Context) (model.Position, error) {
	return c.Do(ctx, ActionBackward)
}

// Do performs action and returns the position the server answered with.
// A {error} answer is a RejectedMove error; a body that is neither shape is a
// ProtocolError; a failed or timed-out call is TransportFailure or Timeout.
// The returned position is not validated here.
func (c *Client) Do(ctx context.Context, action Action) (model.Position, error) {
	op := string(action)
	if !action.IsValid() {
		return "", model.Errorf(model.KindProtocolError, op, "unknown action")
	}
	body, status, err := c.call(ctx, action.method(), "/"+op, nil)
	if err != nil {
		return "", err
	}

	var resp positionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if status >= 300 {
			return "", model.Errorf(model.KindTransportFailure, op, "server returned status %d", status)
		}
		return "", model.NewError(model.KindProtocolError, op, fmt.Errorf("decode response: %w", err))
	}
	switch {
	case resp.Error != nil && resp.FEN == nil:
		c.logger.Warn("action rejected", "action", op, "error", *resp.Error)
		return "", model.Errorf(model.KindRejectedMove, op, "%s", *resp.Error)
	case resp.FEN != nil && resp.Error == nil:
		if status >= 300 {
			return "", model.Errorf(model.KindTransportFailure, op, "server returned status %d", status)
		}
		return model.Position(*resp.FEN), nil
	default:
		return "", model.Errorf(model.KindProtocolError, op, "response carries neither fen nor error exclusively")
	}
}

// UploadPGN posts a game in PGN text. The server only reports success or
// failure.
func (c *Client) UploadPGN(ctx context.Context, pgn string) error {
	payload, err := json.Marshal(map[string]string{"pgn": pgn})
	if err != nil {
		return fmt.Errorf("encode pgn: %w", err)
	}
	body, status, err := c.call(ctx, http.MethodPost, "/pgn", payload)
	if err != nil {
		return err
	}
	if status >= 300 {
		var resp positionResponse
		if json.Unmarshal(body, &resp) == nil && resp.Error != nil {
			return model.Errorf(model.KindRejectedMove, "pgn", "%s", *resp.Error)
		}
		return model.Errorf(model.KindTransportFailure, "pgn", "server returned status %d", status)
	}
	return nil
}

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

func (c *Client) call(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	op := strings.TrimPrefix(path, "/")
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return nil, 0, model.NewError(model.KindTransportFailure, op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		kerr := transportError(op, err)
		c.observe(path, kerr, start)
		c.logger.Warn("request failed", "path", path, "kind", model.KindOf(kerr).String(), "error", err)
		return nil, 0, kerr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		kerr := transportError(op, fmt.Errorf("read body: %w", err))
		c.observe(path, kerr, start)
		return nil, 0, kerr
	}
	c.observe(path, nil, start)
	c.logger.Debug("request done", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))
	return body, resp.StatusCode, nil
}

func (c *Client) observe(path string, err error, start time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = model.KindOf(err).String()
		c.metrics.ObserveError(outcome)
	}
	c.metrics.ObserveRequest(path, outcome, time.Since(start))
}

func transportError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewError(model.KindTimeout, op, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return model.NewError(model.KindTimeout, op, err)
	}
	return model.NewError(model.KindTransportFailure, op, err)
}
