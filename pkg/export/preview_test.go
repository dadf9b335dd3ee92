package export

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/movetree"
)

func fixedSource(t *testing.T, pgn string) TreeSource {
	t.Helper()
	if pgn == "" {
		return func() *model.MoveNode { return nil }
	}
	tree, err := movetree.Build([]byte(pgn))
	require.NoError(t, err)
	return func() *model.MoveNode { return tree }
}

func TestPreviewServer_PortAndURL(t *testing.T) {
	server := NewPreviewServer(fixedSource(t, ""), PreviewConfig{Port: 9002})

	if server.Port() != 9002 {
		t.Errorf("Expected Port() to return 9002, got %d", server.Port())
	}
	if server.URL() != "http://localhost:9002" {
		t.Errorf("Unexpected URL %s", server.URL())
	}
}

func TestPreviewServer_IndexEmbedsTree(t *testing.T) {
	cfg := DefaultPreviewConfig()
	srv := httptest.NewServer(NewPreviewServer(fixedSource(t, "1. e4"), cfg).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `src="/tree.svg"`)
	assert.Contains(t, body.String(), `content="2"`)
}

func TestPreviewServer_ServesSVGAndPNG(t *testing.T) {
	srv := httptest.NewServer(NewPreviewServer(fixedSource(t, "1. e4 e5 (1... c5)"), DefaultPreviewConfig()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tree.svg")
	require.NoError(t, err)
	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body.String(), "<svg")
	assert.Contains(t, body.String(), "c5")

	resp, err = http.Get(srv.URL + "/tree.png")
	require.NoError(t, err)
	body.Reset()
	_, err = body.ReadFrom(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body.String(), "\x89PNG"))
}

func TestPreviewServer_NoTreeIs404(t *testing.T) {
	srv := httptest.NewServer(NewPreviewServer(fixedSource(t, ""), DefaultPreviewConfig()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tree.svg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreviewServer_TooSmallIs500(t *testing.T) {
	cfg := DefaultPreviewConfig()
	cfg.Width, cfg.Height = 50, 50
	srv := httptest.NewServer(NewPreviewServer(fixedSource(t, "1. e4"), cfg).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tree.svg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPreviewServer_Status(t *testing.T) {
	srv := httptest.NewServer(NewPreviewServer(fixedSource(t, "1. e4 e5 2. Nf3"), PreviewConfig{Port: 9005}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/__preview__/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var st previewStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "running", st.Status)
	assert.Equal(t, 9005, st.Port)
	assert.True(t, st.HasTree)
	assert.Equal(t, 3, st.Moves)
}

func TestNoCacheMiddleware(t *testing.T) {
	handler := noCacheMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected next handler to run, got %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Expected no-store cache header, got %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected preflight to return 200, got %d", rec.Code)
	}
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort(19000, 19100)
	if err != nil {
		t.Fatalf("FindAvailablePort failed: %v", err)
	}
	if port < 19000 || port > 19100 {
		t.Errorf("Port %d is outside expected range 19000-19100", port)
	}
}

func TestFindAvailablePort_NoneFree(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()
	busy := l.Addr().(*net.TCPAddr).Port

	_, err = FindAvailablePort(busy, busy)
	assert.Error(t, err)
}
