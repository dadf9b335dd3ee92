package layout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/movetree"
)

func tree(text string) *model.MoveNode {
	return movetree.AssignIdentities(movetree.ParseText(text))
}

func findByName(root *Node, name string) *Node {
	for _, n := range root.Descendants() {
		if n.Source.Name == name {
			return n
		}
	}
	return nil
}

func TestLayout_DegenerateInputs(t *testing.T) {
	root := tree("1. e4 e5")

	assert.Nil(t, Layout(nil, 100, 100))
	assert.Nil(t, Layout(root, 0, 100))
	assert.Nil(t, Layout(root, 100, 0))
	assert.Nil(t, Layout(root, -5, 100))
}

func TestLayout_SingleNodeIsCentered(t *testing.T) {
	out := Layout(movetree.NewRoot(), 400, 200)
	require.NotNil(t, out)

	assert.Equal(t, 0.0, out.X)
	assert.Equal(t, 100.0, out.Y)
	assert.False(t, out.HasChildren)
}

func TestLayout_DepthFillsWidth(t *testing.T) {
	out := Layout(tree("1. e4 e5 2. Nf3"), 300, 120)
	require.NotNil(t, out)

	for _, n := range out.Descendants() {
		assert.InDelta(t, float64(n.Depth)*100, n.X, 1e-9, "node %s", n.ID())
		assert.InDelta(t, 60, n.Y, 1e-9, "a single line stays on the centre row")
	}
}

func TestLayout_CousinsGetDoubleSeparation(t *testing.T) {
	// Start -> e4 -> {e5, c5}; Start -> d4 -> {d5}
	root := movetree.AssignIdentities(&model.MoveNode{Name: "Start", Children: []*model.MoveNode{
		{Name: "e4", Children: []*model.MoveNode{{Name: "e5"}, {Name: "c5"}}},
		{Name: "d4", Children: []*model.MoveNode{{Name: "d5"}}},
	}})
	out := Layout(root, 200, 400)
	require.NotNil(t, out)

	e5, c5, d5 := findByName(out, "e5"), findByName(out, "c5"), findByName(out, "d5")
	sibling := c5.Y - e5.Y
	cousin := d5.Y - c5.Y

	assert.Greater(t, sibling, 0.0)
	assert.InDelta(t, 2*sibling, cousin, 1e-9)
}

func TestLayout_StaysInsideCanvas(t *testing.T) {
	out := Layout(tree("1. e4 e5 (1... c5 2. Nf3 (2. Nc3)) (1... e6) 2. Nf3 Nc6 (2... d6)"), 640, 480)
	require.NotNil(t, out)

	for _, n := range out.Descendants() {
		assert.GreaterOrEqual(t, n.X, 0.0)
		assert.LessOrEqual(t, n.X, 640.0)
		assert.Greater(t, n.Y, 0.0)
		assert.Less(t, n.Y, 480.0)
	}
}

func TestLayout_VerticalSwapsAxes(t *testing.T) {
	root := tree("1. e4 e5 (1... c5)")
	h := Layout(root, 300, 200)
	v := Layout(root, 200, 300, WithOrientation(Vertical))

	hn, vn := h.Descendants(), v.Descendants()
	require.Len(t, vn, len(hn))
	for i := range hn {
		assert.InDelta(t, hn[i].X, vn[i].Y, 1e-9)
		assert.InDelta(t, hn[i].Y, vn[i].X, 1e-9)
		assert.InDelta(t, hn[i].Breadth(Horizontal), vn[i].Breadth(Vertical), 1e-9)
	}
}

func TestLayout_Links(t *testing.T) {
	out := Layout(tree("1. e4 e5 (1... c5)"), 100, 100)
	links := out.Links()

	require.Len(t, links, 3)
	for _, l := range links {
		assert.Equal(t, l.Source, l.Target.Parent)
	}
}

func randomTree(r *rand.Rand, depth int) *model.MoveNode {
	node := &model.MoveNode{Name: "m"}
	if depth == 0 {
		return node
	}
	for i := r.Intn(4); i > 0; i-- {
		node.Children = append(node.Children, randomTree(r, depth-1))
	}
	return node
}

func TestLayout_SiblingsNeverShareBreadth(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		root := movetree.AssignIdentities(randomTree(r, 5))
		out := Layout(root, 800, 600)
		require.NotNil(t, out)

		for _, n := range out.Descendants() {
			for j := 1; j < len(n.Children); j++ {
				prev, cur := n.Children[j-1], n.Children[j]
				if cur.Y <= prev.Y {
					t.Fatalf("tree %d: sibling %s at %.4f not below %s at %.4f", i, cur.ID(), cur.Y, prev.ID(), prev.Y)
				}
			}
		}
	}
}

func TestParseOrientation(t *testing.T) {
	for in, want := range map[string]Orientation{"": Horizontal, "Horizontal": Horizontal, "vertical": Vertical, " v ": Vertical} {
		got, err := ParseOrientation(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOrientation("diagonal")
	assert.Error(t, err)
	assert.Equal(t, "vertical", Vertical.String())
}
