package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMaxPlacementAttempts bounds the candidates drawn for a single ball.
const DefaultMaxPlacementAttempts = 10000

// Uniform is a source of uniform reals in [0, 1). *rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// Initialize places every ball with DefaultMaxPlacementAttempts per ball.
func Initialize(s *State, rng Uniform) error {
	return InitializeN(s, rng, DefaultMaxPlacementAttempts)
}

// InitializeN places balls one at a time by rejection sampling: a candidate
// is kept once it is at least PlacementClearance from every ball placed
// before it. Velocities are zeroed, orientations reset to identity and the
// clock reset. maxAttempts <= 0 retries without limit.
//
// On error the state is not modified.
func InitializeN(s *State, rng Uniform, maxAttempts int) error {
	w, h := s.Table.Bounds()
	placed := make([]mgl64.Vec3, len(s.Balls))

	for i := range placed {
		ok := false
		for attempt := 0; maxAttempts <= 0 || attempt < maxAttempts; attempt++ {
			x := (2*rng.Float64() - 1) * w
			z := (2*rng.Float64() - 1) * h
			candidate := mgl64.Vec3{x, RestHeight, z}
			if clearOf(candidate, placed[:i]) {
				placed[i] = candidate
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("ball %d of %d after %d attempts: %w", i, len(placed), maxAttempts, ErrPlacementExhausted)
		}
	}

	for i, p := range placed {
		s.Balls[i] = Ball{Position: p, Orientation: mgl64.QuatIdent()}
	}
	s.Time = 0
	return nil
}

func clearOf(p mgl64.Vec3, others []mgl64.Vec3) bool {
	for _, o := range others {
		if o.Sub(p).Len() < PlacementClearance {
			return false
		}
	}
	return true
}
