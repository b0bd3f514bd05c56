package srs

import "fmt"

// Params defines all configurable constants for the scheduling algorithm.
// The formulas in this package read every coefficient from a Params value,
// never from scattered literals, so a tuned instance can be validated and
// tested in isolation.
type Params struct {
	// Stability bounds and initial value, in hours.
	MinStability     float64
	MaxStability     float64
	InitialStability float64

	// Difficulty bounds and initial value.
	MinDifficulty     float64
	MaxDifficulty     float64
	InitialDifficulty float64

	// GrowthRate scales how strongly the effective score grows stability
	// on a successful recall.
	GrowthRate float64

	// FailureFactor is the fraction of stability retained after a failed
	// recall (score Again).
	FailureFactor float64

	// ExpectedScore is the effective score at which difficulty is left
	// unchanged; reviews above it ease the topic, reviews below harden it.
	ExpectedScore float64

	// DifficultyRate scales how far each review moves difficulty.
	DifficultyRate float64

	// NeutralDifficulty is the difficulty at which the interval modifier
	// is exactly 1. IntervalRate scales the modifier per difficulty point
	// away from neutral.
	NeutralDifficulty float64
	IntervalRate      float64

	// WeightMultipliers adjusts a card's intrinsic weight after each
	// review, keyed by score. Failed cards gain weight so they are
	// sampled more often; easy cards lose it.
	WeightMultipliers map[Score]float64

	// Card intrinsic weight bounds and default.
	MinWeight     float64
	MaxWeight     float64
	DefaultWeight float64
}

// ParamsConfig allows overriding individual defaults when constructing a
// Params instance. Zero fields keep the default value.
type ParamsConfig struct {
	MinStability     float64
	MaxStability     float64
	InitialStability float64

	MinDifficulty     float64
	MaxDifficulty     float64
	InitialDifficulty float64

	GrowthRate     float64
	FailureFactor  float64
	ExpectedScore  float64
	DifficultyRate float64

	NeutralDifficulty float64
	IntervalRate      float64

	AgainWeightMultiplier float64
	HardWeightMultiplier  float64
	GoodWeightMultiplier  float64
	EasyWeightMultiplier  float64

	MinWeight     float64
	MaxWeight     float64
	DefaultWeight float64
}

// NewDefaultParams creates a Params instance with the standard constants.
func NewDefaultParams() *Params {
	return &Params{
		MinStability:     2.4,
		MaxStability:     8760.0,
		InitialStability: 24.0,

		MinDifficulty:     1.0,
		MaxDifficulty:     10.0,
		InitialDifficulty: 5.0,

		GrowthRate:    0.15,
		FailureFactor: 0.5,

		ExpectedScore:  2.0,
		DifficultyRate: 0.3,

		NeutralDifficulty: 5.0,
		IntervalRate:      0.12,

		WeightMultipliers: map[Score]float64{
			ScoreAgain: 1.05,
			ScoreHard:  1.01,
			ScoreGood:  0.99,
			ScoreEasy:  0.95,
		},

		MinWeight:     0.5,
		MaxWeight:     2.0,
		DefaultWeight: 1.0,
	}
}

// NewParams creates a Params instance with custom configuration, falling
// back to defaults for zero fields.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinStability > 0 {
		params.MinStability = config.MinStability
	}
	if config.MaxStability > 0 {
		params.MaxStability = config.MaxStability
	}
	if config.InitialStability > 0 {
		params.InitialStability = config.InitialStability
	}

	if config.MinDifficulty > 0 {
		params.MinDifficulty = config.MinDifficulty
	}
	if config.MaxDifficulty > 0 {
		params.MaxDifficulty = config.MaxDifficulty
	}
	if config.InitialDifficulty > 0 {
		params.InitialDifficulty = config.InitialDifficulty
	}

	if config.GrowthRate > 0 {
		params.GrowthRate = config.GrowthRate
	}
	if config.FailureFactor > 0 {
		params.FailureFactor = config.FailureFactor
	}
	if config.ExpectedScore > 0 {
		params.ExpectedScore = config.ExpectedScore
	}
	if config.DifficultyRate > 0 {
		params.DifficultyRate = config.DifficultyRate
	}

	if config.NeutralDifficulty > 0 {
		params.NeutralDifficulty = config.NeutralDifficulty
	}
	if config.IntervalRate > 0 {
		params.IntervalRate = config.IntervalRate
	}

	if config.AgainWeightMultiplier > 0 {
		params.WeightMultipliers[ScoreAgain] = config.AgainWeightMultiplier
	}
	if config.HardWeightMultiplier > 0 {
		params.WeightMultipliers[ScoreHard] = config.HardWeightMultiplier
	}
	if config.GoodWeightMultiplier > 0 {
		params.WeightMultipliers[ScoreGood] = config.GoodWeightMultiplier
	}
	if config.EasyWeightMultiplier > 0 {
		params.WeightMultipliers[ScoreEasy] = config.EasyWeightMultiplier
	}

	if config.MinWeight > 0 {
		params.MinWeight = config.MinWeight
	}
	if config.MaxWeight > 0 {
		params.MaxWeight = config.MaxWeight
	}
	if config.DefaultWeight > 0 {
		params.DefaultWeight = config.DefaultWeight
	}

	return params
}

// Validate checks that the parameter set is internally consistent: bounds
// are ordered, initial values fall inside them, and every score has a
// positive weight multiplier.
func (p *Params) Validate() error {
	if p.MinStability <= 0 || p.MaxStability <= p.MinStability {
		return fmt.Errorf("%w: stability bounds [%g, %g]", ErrInvalidParams, p.MinStability, p.MaxStability)
	}
	if p.InitialStability < p.MinStability || p.InitialStability > p.MaxStability {
		return fmt.Errorf("%w: initial stability %g outside [%g, %g]",
			ErrInvalidParams, p.InitialStability, p.MinStability, p.MaxStability)
	}
	if p.MinDifficulty <= 0 || p.MaxDifficulty <= p.MinDifficulty {
		return fmt.Errorf("%w: difficulty bounds [%g, %g]", ErrInvalidParams, p.MinDifficulty, p.MaxDifficulty)
	}
	if p.InitialDifficulty < p.MinDifficulty || p.InitialDifficulty > p.MaxDifficulty {
		return fmt.Errorf("%w: initial difficulty %g outside [%g, %g]",
			ErrInvalidParams, p.InitialDifficulty, p.MinDifficulty, p.MaxDifficulty)
	}
	if p.GrowthRate <= 0 {
		return fmt.Errorf("%w: growth rate %g must be positive", ErrInvalidParams, p.GrowthRate)
	}
	if p.FailureFactor <= 0 || p.FailureFactor >= 1 {
		return fmt.Errorf("%w: failure factor %g outside (0, 1)", ErrInvalidParams, p.FailureFactor)
	}
	if p.MinWeight <= 0 || p.MaxWeight <= p.MinWeight {
		return fmt.Errorf("%w: weight bounds [%g, %g]", ErrInvalidParams, p.MinWeight, p.MaxWeight)
	}
	if p.DefaultWeight < p.MinWeight || p.DefaultWeight > p.MaxWeight {
		return fmt.Errorf("%w: default weight %g outside [%g, %g]",
			ErrInvalidParams, p.DefaultWeight, p.MinWeight, p.MaxWeight)
	}
	for _, score := range []Score{ScoreAgain, ScoreHard, ScoreGood, ScoreEasy} {
		m, ok := p.WeightMultipliers[score]
		if !ok || m <= 0 {
			return fmt.Errorf("%w: weight multiplier for %s", ErrInvalidParams, score)
		}
	}
	return nil
}
