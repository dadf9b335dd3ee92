package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/movetree"
)

var treeNow = time.Unix(1_700_000_000, 0)

func buildTree(t *testing.T, raw string) *model.MoveNode {
	t.Helper()
	root, err := movetree.Build([]byte(raw))
	if err != nil {
		t.Fatalf("build %q: %v", raw, err)
	}
	return root
}

func newTestTreeView(t *testing.T, raw string) *TreeView {
	t.Helper()
	v := NewTreeView(DefaultTheme(lipgloss.DefaultRenderer()), 0, layout.Horizontal)
	v.SetSize(80, 20, treeNow)
	v.SetTree(buildTree(t, raw), treeNow)
	return v
}

func TestTreeView_EmptyShowsPlaceholder(t *testing.T) {
	v := NewTreeView(DefaultTheme(lipgloss.DefaultRenderer()), 0, layout.Horizontal)
	v.SetSize(40, 10, treeNow)

	if !strings.Contains(v.View(), "No game tree yet") {
		t.Error("Expected placeholder for an empty tree")
	}
}

func TestTreeView_RendersLabels(t *testing.T) {
	v := newTestTreeView(t, "1. e4 (1. d4 d5) e5")
	view := v.View()

	for _, want := range []string{"e4", "d4", "e5", "d5"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in tree view", want)
		}
	}
	if got := v.Scene().Len(); got != 5 {
		t.Errorf("Expected 5 rendered nodes, got %d", got)
	}
}

func TestTreeView_NilTreeClears(t *testing.T) {
	v := newTestTreeView(t, "1. e4 e5")
	v.SetTree(nil, treeNow)

	if v.Scene().Len() != 0 {
		t.Errorf("Expected an empty scene, got %d nodes", v.Scene().Len())
	}
}

func TestTreeView_TinyCanvasKeepsPicture(t *testing.T) {
	v := newTestTreeView(t, "1. e4 e5")
	v.SetSize(10, 2, treeNow)

	if v.Scene().Len() != 3 {
		t.Errorf("Expected the previous picture to be kept, got %d nodes", v.Scene().Len())
	}
}

func TestTreeView_ZoomAndReset(t *testing.T) {
	v := newTestTreeView(t, "1. e4 e5")

	v.Zoom(true)
	if v.Viewport().Scale <= 1 {
		t.Errorf("Expected zoom in to raise the scale, got %v", v.Viewport().Scale)
	}
	v.Pan(1, 1)
	v.ResetView()
	if !v.Viewport().IsIdentity() {
		t.Errorf("Expected identity after reset, got %+v", *v.Viewport())
	}
}

func TestTreeView_NewTreeLeavesViewportAlone(t *testing.T) {
	v := newTestTreeView(t, "1. e4 e5")
	v.Pan(2, -1)
	before := *v.Viewport()

	v.SetTree(buildTree(t, "1. e4 e5 2. Nf3"), treeNow)

	if *v.Viewport() != before {
		t.Errorf("Expected viewport %+v, got %+v", before, *v.Viewport())
	}
}

func TestTreeView_ToggleOrientation(t *testing.T) {
	v := newTestTreeView(t, "1. e4 e5")
	v.ToggleOrientation(treeNow)

	if v.Orientation() != layout.Vertical {
		t.Fatalf("Expected vertical, got %v", v.Orientation())
	}
	root, _ := v.Scene().Node("0-Start-0")
	leaf, _ := v.Scene().Node("2-e5-2")
	if leaf.Pos.Y <= root.Pos.Y {
		t.Errorf("Expected depth to grow downwards, root %+v leaf %+v", root.Pos, leaf.Pos)
	}
}

func TestTreeView_SearchSelectsAndFocuses(t *testing.T) {
	v := newTestTreeView(t, "1. e4 e5 2. Nf3 Nc6 3. Bb5")

	v.StartSearch(treeNow)
	if !v.Searching() {
		t.Fatal("Expected search to be active")
	}
	v.UpdateSearch(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Nc")}, treeNow)

	matches := v.Matches()
	if len(matches) == 0 || matches[0] != "Nc6" {
		t.Fatalf("Expected Nc6 as best match, got %v", matches)
	}
	if v.Selected() != "4-Nc6-4" {
		t.Errorf("Expected Nc6 selected, got %q", v.Selected())
	}

	v.UpdateSearch(tea.KeyMsg{Type: tea.KeyEnter}, treeNow)
	if v.Searching() {
		t.Error("Expected enter to close search")
	}
	n, _ := v.Scene().Node("4-Nc6-4")
	at := v.Viewport().Apply(n.Pos)
	c := v.centre()
	if abs := at.X - c.X; abs > 0.001 || abs < -0.001 {
		t.Errorf("Expected Nc6 centred horizontally, at %v centre %v", at.X, c.X)
	}
}

func TestTreeView_SearchEscKeepsView(t *testing.T) {
	v := newTestTreeView(t, "1. e4 e5")
	before := *v.Viewport()

	v.StartSearch(treeNow)
	v.UpdateSearch(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e5")}, treeNow)
	v.UpdateSearch(tea.KeyMsg{Type: tea.KeyEsc}, treeNow)

	if v.Searching() {
		t.Error("Expected esc to close search")
	}
	if *v.Viewport() != before {
		t.Error("Expected esc to leave the viewport alone")
	}
}
