package analysis

import (
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// TreeStats summarises the shape of a move tree
type TreeStats struct {
	Moves        int `json:"moves"`         // nodes below the root
	MainLine     int `json:"main_line"`     // plies on the first-child path
	Variations   int `json:"variations"`    // non-first children
	MaxDepth     int `json:"max_depth"`
	Leaves       int `json:"leaves"`
	MaxBranching int `json:"max_branching"` // largest number of children at one node
}

// AnalyzeTree walks root once. A nil tree yields zero stats.
func AnalyzeTree(root *model.MoveNode) TreeStats {
	var s TreeStats
	if root == nil {
		return s
	}
	root.Walk(func(n *model.MoveNode, depth int) bool {
		if depth > 0 {
			s.Moves++
		}
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		if len(n.Children) == 0 {
			s.Leaves++
		}
		if len(n.Children) > 1 {
			s.Variations += len(n.Children) - 1
		}
		if len(n.Children) > s.MaxBranching {
			s.MaxBranching = len(n.Children)
		}
		return true
	})
	s.MainLine = len(root.MainLine())
	return s
}
