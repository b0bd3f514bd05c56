package srs

import (
	"math"
	"time"
)

// calculateNextStability determines the new stability after a review.
//
// Stability models how long the topic is expected to stay retained, in
// hours. A failed recall (score Again) halves it, floored at the minimum;
// a successful recall grows it proportionally to the effective score:
//
//	failed:     S' = max(MinStability, S * FailureFactor)
//	successful: S' = S * (1 + effective * GrowthRate)
//
// The result is always clamped to [MinStability, MaxStability].
func calculateNextStability(
	current float64,
	effective float64,
	score Score,
	params *Params,
) float64 {
	var next float64
	if score == ScoreAgain {
		next = math.Max(params.MinStability, current*params.FailureFactor)
	} else {
		next = current * (1 + effective*params.GrowthRate)
	}
	return clamp(next, params.MinStability, params.MaxStability)
}

// calculateNextDifficulty determines the new difficulty after a review.
//
// The effective score is compared against the expected score; performing
// above expectation eases the topic, performing below hardens it:
//
//	delta = (effective - ExpectedScore) * DifficultyRate
//	D' = D - delta
//
// At score Again the effective score is 0, so delta is negative and
// difficulty rises by ExpectedScore * DifficultyRate before clamping. That
// is the intended behavior for a failed recall, not a special case.
// The result is always clamped to [MinDifficulty, MaxDifficulty].
func calculateNextDifficulty(
	current float64,
	effective float64,
	params *Params,
) float64 {
	delta := (effective - params.ExpectedScore) * params.DifficultyRate
	return clamp(current-delta, params.MinDifficulty, params.MaxDifficulty)
}

// calculateNextReviewAt determines when the topic should next be reviewed.
//
// The interval is the new stability scaled by a difficulty modifier, so
// harder topics come back sooner than their stability alone would suggest:
//
//	modifier = 1 + (D' - NeutralDifficulty) * IntervalRate
//	interval_hours = S' * modifier
//
// Both inputs must be the already-updated, already-clamped values from the
// same review. With difficulty in [1, 10] the modifier stays in
// [0.52, 1.6], but the interval is taken as computed either way, with no
// positivity assertion.
func calculateNextReviewAt(
	stability float64,
	difficulty float64,
	now time.Time,
	params *Params,
) time.Time {
	modifier := 1 + (difficulty-params.NeutralDifficulty)*params.IntervalRate
	intervalHours := stability * modifier
	return now.Add(time.Duration(intervalHours * float64(time.Hour)))
}

// calculateNextWeight determines a card's new intrinsic weight after a
// review. Each score has a fixed multiplier: failed cards gain weight so
// the sampler favors them, easy cards lose it. The result is clamped to
// [MinWeight, MaxWeight].
func calculateNextWeight(weight float64, score Score, params *Params) float64 {
	return clamp(weight*params.WeightMultipliers[score], params.MinWeight, params.MaxWeight)
}

// calculateReview applies one review to a topic's scheduling state and the
// reviewed card's intrinsic weight, returning the new state and weight.
//
// The order of operations is load-bearing: stability and difficulty are
// updated and clamped first, and the next-review interval is computed from
// those new values, never the pre-review ones.
//
// The supplied card weight is clamped into [MinWeight, MaxWeight] before
// use. Out-of-range weights are recoverable drift, not errors, and must
// never block a review.
func calculateReview(
	state State,
	cardWeight float64,
	score Score,
	now time.Time,
	params *Params,
) (State, float64) {
	weight := clamp(cardWeight, params.MinWeight, params.MaxWeight)
	effective := float64(score) * weight

	next := State{
		Stability:  calculateNextStability(state.Stability, effective, score, params),
		Difficulty: calculateNextDifficulty(state.Difficulty, effective, params),
	}
	next.NextReview = calculateNextReviewAt(next.Stability, next.Difficulty, now, params)
	next.LastReviewed = now

	return next, calculateNextWeight(weight, score, params)
}

// clamp limits v to the inclusive range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
