package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results(correct, wrong int) []ScoredResult {
	out := make([]ScoredResult, 0, correct+wrong)
	for i := 0; i < correct; i++ {
		out = append(out, ScoredResult{Correct: true})
	}
	for i := 0; i < wrong; i++ {
		out = append(out, ScoredResult{})
	}
	return out
}

func TestPercentageScorer(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		wrong   int
		want    float64
	}{
		{"no results", 0, 0, 0},
		{"all correct", 1, 0, 100},
		{"none correct", 0, 4, 0},
		{"half", 2, 2, 50},
		{"one third rounds down", 1, 2, 33},
		{"two thirds rounds up", 2, 1, 67},
		{"half point rounds away from zero", 1, 7, 13}, // 12.5
	}

	s := PercentageScorer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(results(tt.correct, tt.wrong)))
		})
	}
}

func TestFixedWeightScorer(t *testing.T) {
	s := FixedWeightScorer{Points: 2}
	assert.Equal(t, 0.0, s.Score(nil))
	assert.Equal(t, 2.0, s.Score(results(1, 0)))
	assert.Equal(t, 6.0, s.Score(results(3, 5)))
}

func TestNewScorer(t *testing.T) {
	s, err := NewScorer("", 0)
	require.NoError(t, err)
	assert.Equal(t, PolicyPercentage, s.Policy())

	s, err = NewScorer(" Fixed_Weight ", 0)
	require.NoError(t, err)
	assert.Equal(t, PolicyFixedWeight, s.Policy())
	assert.Equal(t, 2.0, s.Score(results(1, 1)))

	s, err = NewScorer("fixed_weight", 5)
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.Score(results(2, 0)))

	_, err = NewScorer("median", 0)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
