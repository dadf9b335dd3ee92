package movetree

import (
	"fmt"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// Identity formats a node identity from its depth, name and pre-order index.
func Identity(depth int, name string, counter int) string {
	return fmt.Sprintf("%d-%s-%d", depth, name, counter)
}

// AssignIdentities tags every node of the tree, in place, with
// Identity(depth, name, counter) where counter increments once per node in
// pre-order starting at 0. Structurally identical trees always receive
// identical identities. Adding or removing a node only shifts the counters
// of nodes visited after it; callers re-assign from the full snapshot each
// time rather than patching old identities.
func AssignIdentities(root *model.MoveNode) *model.MoveNode {
	counter := 0
	root.Walk(func(node *model.MoveNode, depth int) bool {
		node.ID = Identity(depth, node.Name, counter)
		counter++
		return true
	})
	return root
}

// Identities returns the identities of the tree in pre-order
func Identities(root *model.MoveNode) []string {
	var ids []string
	root.Walk(func(node *model.MoveNode, _ int) bool {
		ids = append(ids, node.ID)
		return true
	})
	return ids
}

// Index maps identity to node for a tagged tree
func Index(root *model.MoveNode) map[string]*model.MoveNode {
	index := make(map[string]*model.MoveNode)
	root.Walk(func(node *model.MoveNode, _ int) bool {
		index[node.ID] = node
		return true
	})
	return index
}

// Build parses raw move data and assigns identities in one step. This is
// the path every game_tree frame takes.
func Build(raw []byte) (*model.MoveNode, error) {
	root, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return AssignIdentities(root), nil
}
