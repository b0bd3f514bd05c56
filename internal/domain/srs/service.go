// Package srs implements the spaced-repetition scheduling engine: a pure,
// closed-form update rule over a topic's stability and difficulty, plus a
// weighted random sampler for choosing which card to show next.
//
// Every operation is a pure function of its explicit inputs. The engine
// performs no I/O and holds no mutable state; callers fetch current state,
// invoke the engine, and persist the result atomically.
package srs

import "time"

// Service defines the scheduling operations exposed to the rest of the
// application.
type Service interface {
	// NewState returns the scheduling state for a freshly created topic:
	// initial stability and difficulty, due immediately.
	NewState(now time.Time) State

	// Review applies a scored review to the given state and card weight,
	// returning the updated state and the card's updated intrinsic
	// weight. An invalid score is rejected with ErrInvalidScore before
	// anything is computed; no partial update is ever observable.
	Review(state State, cardWeight float64, score Score, now time.Time) (State, float64, error)

	// DefaultWeight returns the intrinsic weight assigned to new cards.
	DefaultWeight() float64
}

type defaultService struct {
	params *Params
}

// NewDefaultService creates a scheduling service with the standard
// parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a scheduling service with custom parameters.
// The parameters are validated; invalid parameter sets are rejected rather
// than silently producing out-of-domain state.
func NewServiceWithParams(params *Params) (Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{params: params}, nil
}

// NewState implements Service.
func (s *defaultService) NewState(now time.Time) State {
	return State{
		Stability:  s.params.InitialStability,
		Difficulty: s.params.InitialDifficulty,
		NextReview: now,
	}
}

// Review implements Service.
func (s *defaultService) Review(
	state State,
	cardWeight float64,
	score Score,
	now time.Time,
) (State, float64, error) {
	if !score.IsValid() {
		return State{}, 0, ErrInvalidScore
	}
	next, weight := calculateReview(state, cardWeight, score, now, s.params)
	return next, weight, nil
}

// DefaultWeight implements Service.
func (s *defaultService) DefaultWeight() float64 {
	return s.params.DefaultWeight
}
