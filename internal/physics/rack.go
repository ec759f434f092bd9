package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RackSize is the number of positions in the opening layout.
const RackSize = 16

var rowStep = math.Sqrt(3)

// rackPositions is the opening layout: the cue ball on the near side and a
// fifteen ball triangle on the far side. Neighbours in the triangle touch.
var rackPositions = [RackSize][2]float64{
	{0, 5},
	{-2, -2 * rowStep},
	{2, -4 * rowStep},
	{-1, -3 * rowStep},
	{-2, -4 * rowStep},
	{-4, -4 * rowStep},
	{1, -3 * rowStep},
	{1, -1 * rowStep},
	{0, -2 * rowStep},
	{0, 0},
	{3, -3 * rowStep},
	{4, -4 * rowStep},
	{-1, -1 * rowStep},
	{0, -4 * rowStep},
	{-3, -3 * rowStep},
	{2, -2 * rowStep},
}

// Rack writes the first len(s.Balls) rack positions into s, at rest with
// identity orientation, and resets the clock. Ball 0 is the cue ball.
func Rack(s *State) error {
	if len(s.Balls) > RackSize {
		return fmt.Errorf("%d balls: %w", len(s.Balls), ErrRackTooLarge)
	}
	for i := range s.Balls {
		p := rackPositions[i]
		s.Balls[i] = Ball{
			Position:    mgl64.Vec3{p[0], RestHeight, p[1]},
			Orientation: mgl64.QuatIdent(),
		}
	}
	s.Time = 0
	return nil
}
