// Package export draws the move tree as SVG or PNG snapshots.
//
// This file implements a local preview server for the move tree. Every
// request re-renders the tree from its source, so a browser tab left open
// follows the game as it grows.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// Preview port range tried when no port is given.
const (
	PreviewPortRangeStart = 9000
	PreviewPortRangeEnd   = 9100
)

// TreeSource returns the tree to draw. A nil tree renders as 404.
type TreeSource func() *model.MoveNode

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	// Port to serve on (0 for auto-select)
	Port int

	// RefreshSeconds is how often the page reloads the image; 0 disables it
	RefreshSeconds int

	Title       string
	Width       int
	Height      int
	Orientation layout.Orientation
}

// DefaultPreviewConfig returns sensible defaults for preview configuration.
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		RefreshSeconds: 2,
		Title:          "chessview",
		Width:          DefaultSnapshotWidth,
		Height:         DefaultSnapshotHeight,
	}
}

// PreviewServer serves the current move tree as SVG/PNG plus a small page
// that embeds it.
type PreviewServer struct {
	source TreeSource
	config PreviewConfig
	port   int
	server *http.Server
}

// NewPreviewServer creates a preview server for source.
func NewPreviewServer(source TreeSource, config PreviewConfig) *PreviewServer {
	return &PreviewServer{source: source, config: config, port: config.Port}
}

// Handler returns the router. Exposed for tests.
func (p *PreviewServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(noCacheMiddleware)

	r.Get("/", p.indexHandler)
	r.Get("/tree.svg", p.treeHandler("svg", "image/svg+xml"))
	r.Get("/tree.png", p.treeHandler("png", "image/png"))
	r.Get("/__preview__/status", p.statusHandler)
	return r
}

// Serve listens until ctx is done, then shuts down gracefully. When the
// configured port is 0 a free one is picked from the preview range.
func (p *PreviewServer) Serve(ctx context.Context) error {
	if p.port == 0 {
		port, err := FindAvailablePort(PreviewPortRangeStart, PreviewPortRangeEnd)
		if err != nil {
			return fmt.Errorf("could not find available port: %w", err)
		}
		p.port = port
	}
	p.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", p.port),
		Handler:           p.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return p.Stop()
	case err := <-errChan:
		return err
	}
}

// Stop gracefully stops the preview server.
func (p *PreviewServer) Stop() error {
	if p.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.server.Shutdown(ctx)
}

// Port returns the port the server is running on.
func (p *PreviewServer) Port() int {
	return p.port
}

// URL returns the full URL of the preview server.
func (p *PreviewServer) URL() string {
	return fmt.Sprintf("http://localhost:%d", p.port)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .Refresh}}<meta http-equiv="refresh" content="{{.Refresh}}">{{end}}
<style>body{margin:0;background:#282a36;display:flex;justify-content:center}</style>
</head>
<body><img src="/tree.svg" alt="move tree"></body>
</html>
`))

func (p *PreviewServer) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTemplate.Execute(w, struct {
		Title   string
		Refresh int
	}{p.config.Title, p.config.RefreshSeconds})
}

func (p *PreviewServer) treeHandler(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree := p.source()
		if tree == nil {
			http.Error(w, "no move tree yet", http.StatusNotFound)
			return
		}
		// Render into a buffer so a layout failure can still become a 500.
		var buf bytes.Buffer
		err := WriteTreeSnapshot(&buf, TreeSnapshotOptions{
			Format:      format,
			Tree:        tree,
			Title:       p.config.Title,
			Width:       p.config.Width,
			Height:      p.config.Height,
			Orientation: p.config.Orientation,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(buf.Bytes())
	}
}

type previewStatus struct {
	Status  string `json:"status"`
	Port    int    `json:"port"`
	HasTree bool   `json:"has_tree"`
	Moves   int    `json:"moves"`
}

// statusHandler returns the preview server status as JSON.
func (p *PreviewServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	tree := p.source()
	st := previewStatus{Status: "running", Port: p.port, HasTree: tree != nil}
	if tree != nil {
		st.Moves = countMoves(tree)
	}
	_ = json.NewEncoder(w).Encode(st)
}

func countMoves(n *model.MoveNode) int {
	total := 0
	for _, c := range n.Children {
		total += 1 + countMoves(c)
	}
	return total
}

// noCacheMiddleware adds headers to prevent browser caching.
func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// FindAvailablePort finds an available port in the given range.
func FindAvailablePort(start, end int) (int, error) {
	for port := start; port <= end; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", start, end)
}
