package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// StepStats counts the contacts resolved by the most recent Advance.
type StepStats struct {
	BallContacts int
	WallContacts int
}

// Stepper advances a State by one timestep. It keeps scratch buffers sized to
// the ball count so repeated calls do not allocate; nothing in them survives
// from one call to the next.
type Stepper struct {
	velocityAcc []mgl64.Vec3
	positionAcc []mgl64.Vec3
	contacts    []int
	stats       StepStats
}

func NewStepper(n int) *Stepper {
	st := &Stepper{}
	st.resize(n)
	return st
}

// Advance steps s with a fresh Stepper.
func Advance(s *State, dt float64) {
	NewStepper(len(s.Balls)).Advance(s, dt)
}

// LastStats returns the contact counts of the last Advance call.
func (st *Stepper) LastStats() StepStats {
	return st.stats
}

// Advance moves s forward by dt. Contacts are detected against the positions
// at the start of the call and resolved together: each ball takes the mean
// of the velocities its contacts propose and the mean of its separation
// corrections, then every ball flies freely for dt and rolls.
func (st *Stepper) Advance(s *State, dt float64) {
	n := len(s.Balls)
	st.resize(n)
	st.reset()

	st.collideBalls(s)
	st.collideWalls(s)

	for i := range s.Balls {
		if st.contacts[i] == 0 {
			continue
		}
		k := 1.0 / float64(st.contacts[i])
		s.Balls[i].Velocity = st.velocityAcc[i].Mul(k)
		s.Balls[i].Position = s.Balls[i].Position.Add(st.positionAcc[i].Mul(k))
	}

	for i := range s.Balls {
		roll(&s.Balls[i], dt)
	}

	s.Time += dt
}

// collideBalls exchanges the normal velocity component of every touching
// pair and pushes each ball out by half the overlap. A pair with coincident
// centers has no defined normal; the resulting NaN is left to propagate.
func (st *Stepper) collideBalls(s *State) {
	for i := 0; i < len(s.Balls); i++ {
		bi := &s.Balls[i]
		for j := i + 1; j < len(s.Balls); j++ {
			bj := &s.Balls[j]

			d := bj.Position.Sub(bi.Position)
			dist := d.Len()
			if dist >= ContactDistance {
				continue
			}

			normal := d.Normalize()
			rel := bi.Velocity.Sub(bj.Velocity)
			vn := normal.Mul(normal.Dot(rel))
			uj := bj.Velocity.Add(vn)

			st.velocityAcc[i] = st.velocityAcc[i].Add(bi.Velocity.Add(bj.Velocity).Sub(uj))
			st.velocityAcc[j] = st.velocityAcc[j].Add(uj)

			push := normal.Mul((ContactDistance - dist) / 2)
			st.positionAcc[i] = st.positionAcc[i].Sub(push)
			st.positionAcc[j] = st.positionAcc[j].Add(push)

			st.contacts[i]++
			st.contacts[j]++
			st.stats.BallContacts++
		}
	}
}

// collideWalls turns the offending velocity component toward the table for
// every bound a ball is past. Position is not corrected; the ball drifts back
// in over the following steps.
func (st *Stepper) collideWalls(s *State) {
	w, h := s.Table.Bounds()
	for i, b := range s.Balls {
		p, v := b.Position, b.Velocity
		if p.X() < -w {
			st.wall(i, mgl64.Vec3{math.Abs(v.X()), 0, v.Z()})
		}
		if p.X() > w {
			st.wall(i, mgl64.Vec3{-math.Abs(v.X()), 0, v.Z()})
		}
		if p.Z() < -h {
			st.wall(i, mgl64.Vec3{v.X(), 0, math.Abs(v.Z())})
		}
		if p.Z() > h {
			st.wall(i, mgl64.Vec3{v.X(), 0, -math.Abs(v.Z())})
		}
	}
}

func (st *Stepper) wall(i int, v mgl64.Vec3) {
	st.velocityAcc[i] = st.velocityAcc[i].Add(v)
	st.contacts[i]++
	st.stats.WallContacts++
}

// roll integrates position and turns the ball about the horizontal axis
// perpendicular to its velocity by the distance travelled (radius 1).
func roll(b *Ball, dt float64) {
	moved := b.Velocity.Mul(dt)
	b.Position = b.Position.Add(moved)

	angle := moved.Len()
	if angle == 0 {
		return
	}
	axis := mgl64.Vec3{b.Velocity.Z(), 0, -b.Velocity.X()}.Normalize()
	b.Orientation = mgl64.QuatRotate(angle, axis).Mul(b.Orientation)
}

func (st *Stepper) resize(n int) {
	if cap(st.contacts) < n {
		st.velocityAcc = make([]mgl64.Vec3, n)
		st.positionAcc = make([]mgl64.Vec3, n)
		st.contacts = make([]int, n)
		return
	}
	st.velocityAcc = st.velocityAcc[:n]
	st.positionAcc = st.positionAcc[:n]
	st.contacts = st.contacts[:n]
}

func (st *Stepper) reset() {
	for i := range st.contacts {
		st.velocityAcc[i] = mgl64.Vec3{}
		st.positionAcc[i] = mgl64.Vec3{}
		st.contacts[i] = 0
	}
	st.stats = StepStats{}
}
