package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// BallRadius is shared by every ball on the table.
	BallRadius = 1.0
	// ContactDistance is the center distance below which two balls touch.
	ContactDistance = 2 * BallRadius
	// PlacementClearance is the minimum center distance the initializer
	// leaves between balls. It is stricter than ContactDistance.
	PlacementClearance = 2.5
	// RestHeight is the fixed y coordinate of every ball center.
	RestHeight = 1.0
)

// Ball is a single sphere. Only x and z of Position and Velocity are simulated.
type Ball struct {
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3
	Orientation mgl64.Quat
}

// Table holds the configured table dimensions. Ball centers stay within
// Bounds, which is one radius inside the configured size.
type Table struct {
	Width  float64
	Height float64
}

// Bounds returns the half extents of the rectangle valid ball centers occupy.
func (t Table) Bounds() (halfWidth, halfHeight float64) {
	return t.Width - BallRadius, t.Height - BallRadius
}

// Contains reports whether p lies inside the bounds, edges included.
func (t Table) Contains(p mgl64.Vec3) bool {
	w, h := t.Bounds()
	return p.X() >= -w && p.X() <= w && p.Z() >= -h && p.Z() <= h
}

// State is the whole simulation: a fixed number of balls on one table.
type State struct {
	Balls []Ball
	Table Table
	Time  float64
}

// NewState returns n balls at rest with identity orientation.
func NewState(n int, table Table) *State {
	s := &State{
		Balls: make([]Ball, n),
		Table: table,
	}
	for i := range s.Balls {
		s.Balls[i].Position = mgl64.Vec3{0, RestHeight, 0}
		s.Balls[i].Orientation = mgl64.QuatIdent()
	}
	return s
}

func (s *State) Clone() *State {
	c := &State{
		Balls: make([]Ball, len(s.Balls)),
		Table: s.Table,
		Time:  s.Time,
	}
	copy(c.Balls, s.Balls)
	return c
}

// IsValid reports whether every component of every ball is finite.
func (s *State) IsValid() bool {
	for _, b := range s.Balls {
		for _, v := range b.Position {
			if !finite(v) {
				return false
			}
		}
		for _, v := range b.Velocity {
			if !finite(v) {
				return false
			}
		}
		if !finite(b.Orientation.W) {
			return false
		}
		for _, v := range b.Orientation.V {
			if !finite(v) {
				return false
			}
		}
	}
	return true
}

// KineticEnergy is the sum of ½|v|² over all balls (unit mass).
func (s *State) KineticEnergy() float64 {
	e := 0.0
	for _, b := range s.Balls {
		e += 0.5 * b.Velocity.Dot(b.Velocity)
	}
	return e
}

// Overlaps counts ball pairs whose centers are closer than ContactDistance.
func (s *State) Overlaps() int {
	n := 0
	for i := range s.Balls {
		for j := i + 1; j < len(s.Balls); j++ {
			if s.Balls[j].Position.Sub(s.Balls[i].Position).Len() < ContactDistance {
				n++
			}
		}
	}
	return n
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
