package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floatTolerance = 1e-9

func TestCalculateNextStability(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name      string
		stability float64
		weight    float64
		score     Score
		expected  float64
	}{
		{
			name:      "good review grows stability by effective score",
			stability: 48.0,
			weight:    1.5,
			score:     ScoreGood,
			// effective = 2 * 1.5 = 3.0, growth factor = 1.45
			expected: 69.6,
		},
		{
			name:      "failed review halves stability",
			stability: 48.0,
			weight:    1.0,
			score:     ScoreAgain,
			expected:  24.0,
		},
		{
			name:      "failed review respects stability floor",
			stability: 2.4,
			weight:    1.0,
			score:     ScoreAgain,
			// 2.4 * 0.5 = 1.2, floored at 2.4
			expected: 2.4,
		},
		{
			name:      "hard review with neutral weight",
			stability: 24.0,
			weight:    1.0,
			score:     ScoreHard,
			// effective = 1.0, growth factor = 1.15
			expected: 27.6,
		},
		{
			name:      "growth is capped at the stability ceiling",
			stability: 8000.0,
			weight:    2.0,
			score:     ScoreEasy,
			// 8000 * (1 + 6*0.15) = 15200, clamped
			expected: 8760.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			effective := float64(tc.score) * tc.weight
			got := calculateNextStability(tc.stability, effective, tc.score, params)
			assert.InDelta(t, tc.expected, got, floatTolerance)
		})
	}
}

func TestCalculateNextDifficulty(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name       string
		difficulty float64
		effective  float64
		expected   float64
	}{
		{
			name:       "easy review lowers difficulty",
			difficulty: 5.0,
			effective:  3.0,
			// delta = (3 - 2) * 0.3 = 0.3
			expected: 4.7,
		},
		{
			name:       "failed review raises difficulty",
			difficulty: 5.0,
			effective:  0.0,
			// delta = (0 - 2) * 0.3 = -0.6, difficulty rises
			expected: 5.6,
		},
		{
			name:       "expected performance leaves difficulty unchanged",
			difficulty: 5.0,
			effective:  2.0,
			expected:   5.0,
		},
		{
			name:       "difficulty is capped at the ceiling",
			difficulty: 9.8,
			effective:  0.0,
			expected:   10.0,
		},
		{
			name:       "difficulty is floored at the minimum",
			difficulty: 1.1,
			effective:  6.0,
			// delta = (6 - 2) * 0.3 = 1.2, 1.1 - 1.2 clamped to 1.0
			expected: 1.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNextDifficulty(tc.difficulty, tc.effective, params)
			assert.InDelta(t, tc.expected, got, floatTolerance)
		})
	}
}

func TestCalculateNextReviewAt(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name              string
		stability         float64
		difficulty        float64
		expectedIntervalH float64
	}{
		{
			name:       "above-neutral difficulty stretches the interval",
			stability:  72.0,
			difficulty: 6.0,
			// modifier = 1 + (6 - 5) * 0.12 = 1.12
			expectedIntervalH: 80.64,
		},
		{
			name:              "neutral difficulty uses stability directly",
			stability:         24.0,
			difficulty:        5.0,
			expectedIntervalH: 24.0,
		},
		{
			name:       "below-neutral difficulty shortens the interval",
			stability:  24.0,
			difficulty: 1.0,
			// modifier = 1 + (1 - 5) * 0.12 = 0.52
			expectedIntervalH: 12.48,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNextReviewAt(tc.stability, tc.difficulty, now, params)
			assert.InDelta(t, tc.expectedIntervalH, got.Sub(now).Hours(), floatTolerance)
		})
	}
}

func TestCalculateNextWeight(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		weight   float64
		score    Score
		expected float64
	}{
		{name: "failed review raises weight", weight: 1.0, score: ScoreAgain, expected: 1.05},
		{name: "hard review nudges weight up", weight: 1.0, score: ScoreHard, expected: 1.01},
		{name: "good review nudges weight down", weight: 1.0, score: ScoreGood, expected: 0.99},
		{name: "easy review lowers weight", weight: 1.5, score: ScoreEasy, expected: 1.425},
		{name: "weight is capped at the ceiling", weight: 1.95, score: ScoreAgain, expected: 2.0},
		{name: "weight is floored at the minimum", weight: 0.51, score: ScoreEasy, expected: 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNextWeight(tc.weight, tc.score, params)
			assert.InDelta(t, tc.expected, got, floatTolerance)
		})
	}
}

func TestCalculateReviewUsesUpdatedValuesForScheduling(t *testing.T) {
	t.Parallel()

	// The interval must be computed from the new, clamped stability and
	// difficulty. Starting at difficulty 5.0 with a good review at weight
	// 1.5, difficulty drops to 4.7 and the modifier must reflect that.
	params := NewDefaultParams()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	state := State{Stability: 48.0, Difficulty: 5.0}
	next, weight := calculateReview(state, 1.5, ScoreGood, now, params)

	assert.InDelta(t, 69.6, next.Stability, floatTolerance)
	assert.InDelta(t, 4.7, next.Difficulty, floatTolerance)

	// modifier = 1 + (4.7 - 5) * 0.12 = 0.964; interval = 69.6 * 0.964
	assert.InDelta(t, 67.0944, next.NextReview.Sub(now).Hours(), floatTolerance)
	assert.Equal(t, now, next.LastReviewed)
	assert.InDelta(t, 1.485, weight, floatTolerance)
}

func TestCalculateReviewClampsSuppliedWeight(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := State{Stability: 24.0, Difficulty: 5.0}

	// A drifted weight of 3.0 is read as 2.0, so the effective score for
	// a good review is 4.0, not 6.0.
	next, weight := calculateReview(state, 3.0, ScoreGood, now, params)
	assert.InDelta(t, 24.0*(1+4.0*0.15), next.Stability, floatTolerance)
	assert.InDelta(t, 2.0*0.99, weight, floatTolerance)

	// A drifted weight of 0.1 is read as 0.5.
	next, weight = calculateReview(state, 0.1, ScoreGood, now, params)
	assert.InDelta(t, 24.0*(1+1.0*0.15), next.Stability, floatTolerance)
	assert.InDelta(t, 0.5, weight, floatTolerance)
}

func TestReviewInvariantsAcrossParameterGrid(t *testing.T) {
	t.Parallel()

	// Sweep the legal input domain and check that every update lands
	// inside the documented bounds and never schedules into the past.
	params := NewDefaultParams()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	stabilities := []float64{2.4, 10, 24, 48, 168, 720, 4380, 8760}
	difficulties := []float64{1.0, 2.5, 5.0, 7.5, 10.0}
	weights := []float64{0.5, 0.75, 1.0, 1.5, 2.0}
	scores := []Score{ScoreAgain, ScoreHard, ScoreGood, ScoreEasy}

	for _, stability := range stabilities {
		for _, difficulty := range difficulties {
			for _, weight := range weights {
				for _, score := range scores {
					state := State{Stability: stability, Difficulty: difficulty}
					next, newWeight := calculateReview(state, weight, score, now, params)

					require.GreaterOrEqual(t, next.Stability, params.MinStability,
						"stability below floor for S=%g D=%g w=%g score=%s", stability, difficulty, weight, score)
					require.LessOrEqual(t, next.Stability, params.MaxStability,
						"stability above ceiling for S=%g D=%g w=%g score=%s", stability, difficulty, weight, score)
					require.GreaterOrEqual(t, next.Difficulty, params.MinDifficulty)
					require.LessOrEqual(t, next.Difficulty, params.MaxDifficulty)
					require.GreaterOrEqual(t, newWeight, params.MinWeight)
					require.LessOrEqual(t, newWeight, params.MaxWeight)
					require.False(t, next.NextReview.Before(now),
						"scheduled into the past for S=%g D=%g w=%g score=%s", stability, difficulty, weight, score)
				}
			}
		}
	}
}
