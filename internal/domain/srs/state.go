package srs

import "time"

// State is the scheduling state of one topic. Stability is the modeled
// memory-retention duration in hours; difficulty rates topic hardness from
// 1 (easiest) to 10 (hardest). A zero LastReviewed means the topic has never
// been reviewed.
type State struct {
	Stability    float64
	Difficulty   float64
	NextReview   time.Time
	LastReviewed time.Time
}
