package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestOrientation_Flipped(t *testing.T) {
	if OrientationWhite.Flipped() != OrientationBlack {
		t.Errorf("white flipped = %s, want black", OrientationWhite.Flipped())
	}
	if OrientationBlack.Flipped() != OrientationWhite {
		t.Errorf("black flipped = %s, want white", OrientationBlack.Flipped())
	}
}

func TestMoveNode_CloneIsDeep(t *testing.T) {
	root := &MoveNode{Name: "Start", Children: []*MoveNode{{Name: "e4"}}}
	clone := root.Clone()
	clone.Children[0].Name = "d4"

	if root.Children[0].Name != "e4" {
		t.Errorf("clone shares children with original")
	}
}

func TestMoveNode_FormatMainLine(t *testing.T) {
	root := &MoveNode{Name: "Start", Children: []*MoveNode{
		{Name: "e4", Children: []*MoveNode{
			{Name: "e5", Children: []*MoveNode{{Name: "Nf3"}}},
			{Name: "c5"},
		}},
	}}

	if got, want := root.FormatMainLine(), "1. e4 e5 2. Nf3"; got != want {
		t.Errorf("FormatMainLine() = %q, want %q", got, want)
	}
	if got := root.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewError(KindTimeout, "fetch current_fen", errors.New("deadline")))

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected errors.Is(err, ErrTimeout)")
	}
	if errors.Is(err, ErrTransport) {
		t.Errorf("timeout must not match transport failure")
	}
	if KindOf(err) != KindTimeout {
		t.Errorf("KindOf = %v, want Timeout", KindOf(err))
	}
}
