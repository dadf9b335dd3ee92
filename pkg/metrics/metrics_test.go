package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveFrame("fen")
	m.ObserveFrame("fen")
	m.ObserveFrame("value")
	m.ObserveMoveSent()
	m.ObserveError("NotConnected")
	m.ObserveRequest("/current_fen", "ok", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames.WithLabelValues("fen")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frames.WithLabelValues("value")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("NotConnected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/current_fen", "ok")))
}

func TestMetrics_ConnectionStateIsExclusive(t *testing.T) {
	m := New()
	states := []string{"Connecting", "Open", "Closing", "Closed"}
	m.SetConnectionState("Connecting", states...)
	m.SetConnectionState("Open", states...)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.connState.WithLabelValues("Connecting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connState.WithLabelValues("Open")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFrame("fen")
		m.ObserveMoveSent()
		m.ObserveError("x")
		m.ObserveRequest("/reset", "ok", time.Second)
		m.SetConnectionState("Open")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveMoveSent()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "chessview_stream_moves_sent_total 1")
}
