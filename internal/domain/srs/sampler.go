package srs

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Sampler draws one card index from a weighted set, with probability
// proportional to each card's intrinsic weight. The random source is
// injectable so tests can substitute a deterministic sequence without
// changing the algorithm.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler creates a Sampler backed by the given random source. A nil
// source gets a time-seeded one, making each process draw independently.
func NewSampler(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Sampler{rng: rand.New(src)}
}

// Pick returns the index of one weight, drawn with probability
// weights[i] / sum(weights). Weights need not be integers or normalized.
//
// An empty slice returns ErrEmptyCardSet and a zero or negative weight
// returns ErrInvalidWeight; both are checked before the draw. A single
// entry is always returned regardless of its weight value.
func (s *Sampler) Pick(weights []float64) (int, error) {
	if len(weights) == 0 {
		return 0, ErrEmptyCardSet
	}

	total := 0.0
	for i, w := range weights {
		if w <= 0 {
			return 0, fmt.Errorf("%w: %g at index %d", ErrInvalidWeight, w, i)
		}
		total += w
	}

	s.mu.Lock()
	draw := s.rng.Float64() * total
	s.mu.Unlock()

	// Walk the cumulative distribution to the drawn bucket. Card sets are
	// small (at most a few dozen), so a linear scan beats building and
	// binary-searching a prefix array.
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if draw < cumulative {
			return i, nil
		}
	}

	// Float round-off can leave draw == total; the last bucket owns it.
	return len(weights) - 1, nil
}
