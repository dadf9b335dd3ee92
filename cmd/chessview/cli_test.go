package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/chess_viewer/pkg/journal"
	"github.com/Dicklesworthstone/chess_viewer/pkg/version"
)

// execute runs the root command as the binary would, with an isolated
// config file, and restores every flag afterwards.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log:\n  level: error\n"), 0o644))
	t.Cleanup(func() {
		configPath, serverURL, socketURL, journalPath, logLevel, watchPath = "", "", "", "", "", ""
		showBoard, flipBoard = false, false
		loadWatch, loadGame = false, 0
		exportOut, exportPGN, exportGame = "tree.svg", "", 1
		exportWidth, exportHeight, exportOrientation = 0, 0, ""
		exportServe, exportPort = false, 0
		checkUpdates, journalEntries = false, 0
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", cfgFile}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_Fen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/current_fen" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"fen":"` + afterE4 + `"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "fen", "--server", srv.URL, "--board")
	require.NoError(t, err)
	assert.Contains(t, out, afterE4)
	assert.Contains(t, out, "Black to move")
}

func TestCLI_FenServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"no game"}`))
	}))
	defer srv.Close()

	_, err := execute(t, "fen", "--server", srv.URL)
	assert.ErrorContains(t, err, "no game")
}

func TestCLI_Load(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	path := writePGN(t, twoGames)

	out, err := execute(t, "load", path, "--server", srv.URL, "--game", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded "+path)
	assert.Contains(t, body, `"pgn"`)
	assert.Contains(t, body, "1. e4 e5")
	assert.NotContains(t, body, "1. d4")
}

func TestCLI_ExportFromPGN(t *testing.T) {
	path := writePGN(t, twoGames)
	dest := filepath.Join(t.TempDir(), "tree.svg")

	out, err := execute(t, "export", "--pgn", path, "--game", "2", "--out", dest, "--orientation", "vertical")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), ">d5<")
	assert.Contains(t, string(data), "C - D")
}

func TestCLI_ExportBadOrientation(t *testing.T) {
	_, err := execute(t, "export", "--pgn", writePGN(t, twoGames), "--orientation", "sideways")
	assert.ErrorContains(t, err, "orientation")
}

func TestCLI_Version(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "chessview "+version.Version+"\n", out)
}

func TestCLI_Journal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	_, err = j.StartSession("client-1", "http://localhost:5000")
	require.NoError(t, err)
	require.NoError(t, j.EndSession())
	require.NoError(t, j.Close())

	out, err := execute(t, "journal", "--journal", path)
	require.NoError(t, err)
	assert.Contains(t, out, "http://localhost:5000")
	assert.True(t, strings.Contains(out, "ID"), "header row")

	out, err = execute(t, "journal", "--journal", path, "--session", "999")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries")
}

func TestCLI_JournalNeedsFile(t *testing.T) {
	_, err := execute(t, "journal")
	assert.ErrorContains(t, err, "no journal file")
}

func TestCLI_MoveRejectsBadText(t *testing.T) {
	_, err := execute(t, "move", "e2")
	assert.Error(t, err)
}

func TestCLI_RootTakesNoArgs(t *testing.T) {
	_, err := execute(t, "stray")
	assert.Error(t, err)
}
