package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dicklesworthstone/chess_viewer/pkg/movetree"
)

func TestSummarizeEvaluations(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		check  func(t *testing.T, s EvalSummary)
	}{
		{"empty", nil, func(t *testing.T, s EvalSummary) {
			assert.Zero(t, s.Count)
			assert.Equal(t, -1, s.SwingIndex)
			assert.Equal(t, TrendBalanced, s.Trend)
		}},
		{"single", []float64{0.4}, func(t *testing.T, s EvalSummary) {
			assert.Equal(t, 1, s.Count)
			assert.Equal(t, 0.4, s.Mean)
			assert.Zero(t, s.StdDev)
			assert.Equal(t, 0.4, s.Min)
			assert.Equal(t, 0.4, s.Last)
		}},
		{"rising", []float64{1, 2, 3}, func(t *testing.T, s EvalSummary) {
			assert.InDelta(t, 2.0, s.Mean, 1e-12)
			assert.InDelta(t, 1.0, s.StdDev, 1e-12)
			assert.InDelta(t, 1.0, s.Slope, 1e-12)
			assert.Equal(t, TrendWhite, s.Trend)
			assert.Equal(t, 3.0, s.Max)
		}},
		{"blunder", []float64{0.2, 0.3, -2.5, -2.4}, func(t *testing.T, s EvalSummary) {
			assert.InDelta(t, 2.8, s.LargestSwing, 1e-12)
			assert.Equal(t, 2, s.SwingIndex)
			assert.Equal(t, TrendBlack, s.Trend)
			assert.Equal(t, -2.5, s.Min)
		}},
		{"flat", []float64{0.1, 0.1, 0.1}, func(t *testing.T, s EvalSummary) {
			assert.Equal(t, TrendBalanced, s.Trend)
			assert.Zero(t, s.LargestSwing)
			assert.Equal(t, -1, s.SwingIndex)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, SummarizeEvaluations(tt.scores))
		})
	}
}

func TestAdvantage(t *testing.T) {
	assert.Equal(t, "Equal", Advantage(0.2))
	assert.Equal(t, "White is slightly better", Advantage(0.8))
	assert.Equal(t, "Black is clearly better", Advantage(-2))
	assert.Equal(t, "White is winning", Advantage(7))
}

func TestWhiteShare(t *testing.T) {
	assert.Equal(t, 0.5, WhiteShare(0))
	assert.Greater(t, WhiteShare(2), 0.5)
	assert.Less(t, WhiteShare(-2), 0.5)
	assert.Less(t, WhiteShare(100), 1.0+1e-9)
	assert.Greater(t, WhiteShare(-100), -1e-9)
}

func TestAnalyzeTree(t *testing.T) {
	root, err := movetree.Build([]byte("1. e4 e5 (1... c5 2. Nf3) (1... e6) 2. Nf3"))
	assert.NoError(t, err)

	s := AnalyzeTree(root)

	assert.Equal(t, 6, s.Moves)
	assert.Equal(t, 3, s.MainLine)
	assert.Equal(t, 2, s.Variations)
	assert.Equal(t, 3, s.MaxDepth)
	assert.Equal(t, 3, s.Leaves)
	assert.Equal(t, 3, s.MaxBranching)

	assert.Equal(t, TreeStats{}, AnalyzeTree(nil))
}
