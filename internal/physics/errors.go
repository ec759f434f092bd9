package physics

import "errors"

var (
	// ErrPlacementExhausted indicates the initializer could not find a spot
	// for a ball within its attempt budget. The table is too small for the
	// requested number of balls.
	ErrPlacementExhausted = errors.New("physics: placement attempts exhausted")

	// ErrRackTooLarge indicates more balls than the rack layout holds.
	ErrRackTooLarge = errors.New("physics: rack holds at most 16 balls")
)
