package movetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignIdentities_PreOrderCounter(t *testing.T) {
	root := AssignIdentities(ParseText("1. e4 e5 (1... c5) 2. Nf3"))

	assert.Equal(t, []string{
		"0-Start-0",
		"1-e4-1",
		"2-e5-2",
		"3-Nf3-3",
		"2-c5-4",
	}, Identities(root))
}

func TestAssignIdentities_Deterministic(t *testing.T) {
	inputs := []string{
		"",
		"1. e4 e5 2. Nf3 Nc6",
		"1. d4 (1. e4 e5 (1... e6)) 1... d5 2. c4",
		`{"name":"Start","children":[{"name":"e4"},{"name":"d4","children":[{"name":"d5"}]}]}`,
	}

	for _, in := range inputs {
		first, err := Build([]byte(in))
		require.NoError(t, err)
		second, err := Build([]byte(in))
		require.NoError(t, err)

		assert.Equal(t, Identities(first), Identities(second), "input %q", in)
	}
}

func TestAssignIdentities_UniqueWithinSnapshot(t *testing.T) {
	// Transpositions repeat names at the same depth; the counter keeps ids apart.
	root := AssignIdentities(ParseText("1. e4 (1. d4) (1. e4) 1... e5"))

	seen := make(map[string]bool)
	for _, id := range Identities(root) {
		assert.False(t, seen[id], "duplicate identity %s", id)
		seen[id] = true
	}
}

func TestAssignIdentities_InsertShiftsOnlyLaterNodes(t *testing.T) {
	before := Identities(AssignIdentities(ParseText("1. e4 e5 (1... c5) 2. Nf3")))
	after := Identities(AssignIdentities(ParseText("1. e4 e5 (1... c5) (1... e6) 2. Nf3")))

	// Nodes visited before the insertion point keep their identities.
	assert.Equal(t, before, after[:len(before)])
	assert.Equal(t, "2-e6-5", after[5])
}

func TestIndex(t *testing.T) {
	root := AssignIdentities(ParseText("1. e4 e5"))
	index := Index(root)

	require.Contains(t, index, "2-e5-2")
	assert.Equal(t, "e5", index["2-e5-2"].Name)
}
