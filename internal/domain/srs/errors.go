package srs

import "errors"

// Sentinel errors returned by the scheduler and sampler. All of them are
// precondition failures detected before any computation, so a caller that
// sees one can be certain no state was touched.
var (
	// ErrInvalidScore indicates a review score outside the 0-3 range.
	ErrInvalidScore = errors.New("invalid review score")

	// ErrEmptyCardSet indicates the sampler was invoked with no cards.
	ErrEmptyCardSet = errors.New("card set is empty")

	// ErrInvalidWeight indicates a sampling weight that is zero or negative.
	ErrInvalidWeight = errors.New("invalid card weight")

	// ErrInvalidParams indicates a Params instance that fails validation.
	ErrInvalidParams = errors.New("invalid scheduler parameters")
)
