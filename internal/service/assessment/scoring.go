package assessment

import (
	"fmt"
	"math"
	"strings"
)

// Policy names a scoring rule.
type Policy string

const (
	PolicyPercentage  Policy = "percentage"
	PolicyFixedWeight Policy = "fixed_weight"

	DefaultPointsPerCorrect = 2.0
)

// ScoredResult is one recorded answer and whether it is the correct one.
type ScoredResult struct {
	Correct bool
}

// Scorer derives a final score from a set of results. It never fails.
type Scorer interface {
	Policy() Policy
	Score(results []ScoredResult) float64
}

func countCorrect(results []ScoredResult) int {
	n := 0
	for _, r := range results {
		if r.Correct {
			n++
		}
	}
	return n
}

// PercentageScorer scores round(correct/total*100), or 0 with no results.
// Halves round away from zero.
type PercentageScorer struct{}

func (PercentageScorer) Policy() Policy { return PolicyPercentage }

func (PercentageScorer) Score(results []ScoredResult) float64 {
	if len(results) == 0 {
		return 0
	}
	return math.Round(float64(countCorrect(results)) / float64(len(results)) * 100)
}

// FixedWeightScorer awards Points per correct result.
type FixedWeightScorer struct {
	Points float64
}

func (FixedWeightScorer) Policy() Policy { return PolicyFixedWeight }

func (s FixedWeightScorer) Score(results []ScoredResult) float64 {
	return s.Points * float64(countCorrect(results))
}

// NewScorer returns the scorer for policy. An empty policy selects
// percentage; a non-positive weight falls back to DefaultPointsPerCorrect.
func NewScorer(policy string, pointsPerCorrect float64) (Scorer, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(policy))) {
	case "", PolicyPercentage:
		return PercentageScorer{}, nil
	case PolicyFixedWeight:
		if pointsPerCorrect <= 0 {
			pointsPerCorrect = DefaultPointsPerCorrect
		}
		return FixedWeightScorer{Points: pointsPerCorrect}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}
