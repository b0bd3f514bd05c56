package srs

import "fmt"

// Score is the user's recall quality for a single review. Scores are ordinal:
// each value selects a fixed multiplier from the scheduler parameters and is
// never interpolated.
type Score int

// Valid review scores, worst to best.
const (
	ScoreAgain Score = 0
	ScoreHard  Score = 1
	ScoreGood  Score = 2
	ScoreEasy  Score = 3
)

// IsValid reports whether s is one of the four defined scores.
func (s Score) IsValid() bool {
	return s >= ScoreAgain && s <= ScoreEasy
}

// String returns a human-readable name for the score.
func (s Score) String() string {
	switch s {
	case ScoreAgain:
		return "again"
	case ScoreHard:
		return "hard"
	case ScoreGood:
		return "good"
	case ScoreEasy:
		return "easy"
	default:
		return fmt.Sprintf("score(%d)", int(s))
	}
}
