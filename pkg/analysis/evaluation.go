package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// Evaluation Summary
// Statistics over the engine scores a session has received, for the Stats tab
// ============================================================================

// Trend names which side the evaluation has been drifting toward
const (
	TrendWhite    = "white"
	TrendBlack    = "black"
	TrendBalanced = "balanced"
)

// trendThreshold is the per-update slope (in pawns) below which the
// evaluation counts as flat.
const trendThreshold = 0.05

// EvalSummary describes a sequence of evaluation scores (pawns, positive
// favours white).
type EvalSummary struct {
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Last         float64 `json:"last"`
	LargestSwing float64 `json:"largest_swing"` // biggest absolute change between consecutive scores
	SwingIndex   int     `json:"swing_index"`   // index of the score that ended that swing, -1 if none
	Slope        float64 `json:"slope"`         // least-squares change per update
	Trend        string  `json:"trend"`
}

// SummarizeEvaluations computes an EvalSummary. An empty input yields a zero
// summary with SwingIndex -1 and a balanced trend.
func SummarizeEvaluations(scores []float64) EvalSummary {
	s := EvalSummary{SwingIndex: -1, Trend: TrendBalanced}
	if len(scores) == 0 {
		return s
	}
	s.Count = len(scores)
	s.Last = scores[len(scores)-1]
	s.Min = floats.Min(scores)
	s.Max = floats.Max(scores)
	if len(scores) == 1 {
		s.Mean = scores[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(scores, nil)

	for i := 1; i < len(scores); i++ {
		if d := math.Abs(scores[i] - scores[i-1]); d > s.LargestSwing {
			s.LargestSwing = d
			s.SwingIndex = i
		}
	}

	xs := make([]float64, len(scores))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, s.Slope = stat.LinearRegression(xs, scores, nil, false)
	switch {
	case s.Slope > trendThreshold:
		s.Trend = TrendWhite
	case s.Slope < -trendThreshold:
		s.Trend = TrendBlack
	}
	return s
}

// Advantage describes a single score in words
func Advantage(score float64) string {
	side := "White"
	if score < 0 {
		side = "Black"
	}
	switch a := math.Abs(score); {
	case a < 0.5:
		return "Equal"
	case a < 1.5:
		return side + " is slightly better"
	case a < 3:
		return side + " is clearly better"
	default:
		return side + " is winning"
	}
}

// WhiteShare maps a score to the fraction of an evaluation bar filled for
// white: 0.5 at equality, saturating toward 0 or 1 as the score grows.
func WhiteShare(score float64) float64 {
	return 0.5 + 0.5*math.Tanh(score/4)
}
