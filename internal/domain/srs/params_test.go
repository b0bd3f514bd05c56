package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	assert.InDelta(t, 2.4, params.MinStability, floatTolerance)
	assert.InDelta(t, 8760.0, params.MaxStability, floatTolerance)
	assert.InDelta(t, 24.0, params.InitialStability, floatTolerance)

	assert.InDelta(t, 1.0, params.MinDifficulty, floatTolerance)
	assert.InDelta(t, 10.0, params.MaxDifficulty, floatTolerance)
	assert.InDelta(t, 5.0, params.InitialDifficulty, floatTolerance)

	assert.InDelta(t, 0.15, params.GrowthRate, floatTolerance)
	assert.InDelta(t, 0.5, params.FailureFactor, floatTolerance)
	assert.InDelta(t, 2.0, params.ExpectedScore, floatTolerance)
	assert.InDelta(t, 0.3, params.DifficultyRate, floatTolerance)
	assert.InDelta(t, 5.0, params.NeutralDifficulty, floatTolerance)
	assert.InDelta(t, 0.12, params.IntervalRate, floatTolerance)

	assert.InDelta(t, 0.5, params.MinWeight, floatTolerance)
	assert.InDelta(t, 2.0, params.MaxWeight, floatTolerance)
	assert.InDelta(t, 1.0, params.DefaultWeight, floatTolerance)

	// Every score needs a multiplier.
	expected := map[Score]float64{
		ScoreAgain: 1.05,
		ScoreHard:  1.01,
		ScoreGood:  0.99,
		ScoreEasy:  0.95,
	}
	for score, multiplier := range expected {
		got, exists := params.WeightMultipliers[score]
		require.True(t, exists, "missing weight multiplier for %s", score)
		assert.InDelta(t, multiplier, got, floatTolerance)
	}

	assert.NoError(t, params.Validate())
}

func TestNewParamsOverrides(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{
		GrowthRate:            0.2,
		FailureFactor:         0.4,
		AgainWeightMultiplier: 1.10,
	})

	assert.InDelta(t, 0.2, params.GrowthRate, floatTolerance)
	assert.InDelta(t, 0.4, params.FailureFactor, floatTolerance)
	assert.InDelta(t, 1.10, params.WeightMultipliers[ScoreAgain], floatTolerance)

	// Unset fields keep their defaults.
	assert.InDelta(t, 2.4, params.MinStability, floatTolerance)
	assert.InDelta(t, 0.95, params.WeightMultipliers[ScoreEasy], floatTolerance)

	assert.NoError(t, params.Validate())
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(p *Params)
	}{
		{
			name:   "inverted stability bounds",
			mutate: func(p *Params) { p.MaxStability = p.MinStability - 1 },
		},
		{
			name:   "initial stability outside bounds",
			mutate: func(p *Params) { p.InitialStability = p.MaxStability + 1 },
		},
		{
			name:   "inverted difficulty bounds",
			mutate: func(p *Params) { p.MaxDifficulty = 0.5 },
		},
		{
			name:   "initial difficulty outside bounds",
			mutate: func(p *Params) { p.InitialDifficulty = 0.1 },
		},
		{
			name:   "non-positive growth rate",
			mutate: func(p *Params) { p.GrowthRate = 0 },
		},
		{
			name:   "failure factor of one or more",
			mutate: func(p *Params) { p.FailureFactor = 1.0 },
		},
		{
			name:   "inverted weight bounds",
			mutate: func(p *Params) { p.MinWeight = 3.0 },
		},
		{
			name:   "default weight outside bounds",
			mutate: func(p *Params) { p.DefaultWeight = 2.5 },
		},
		{
			name:   "missing weight multiplier",
			mutate: func(p *Params) { delete(p.WeightMultipliers, ScoreHard) },
		},
		{
			name:   "non-positive weight multiplier",
			mutate: func(p *Params) { p.WeightMultipliers[ScoreGood] = 0 },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := NewDefaultParams()
			tc.mutate(params)
			err := params.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}
