// Package render copies simulation state into the single precision layout
// a scene graph or GPU upload expects.
package render

import "github.com/san-kum/poolsim/internal/physics"

// BallFrame is one ball's transform. Orientation is stored x, y, z, w.
type BallFrame struct {
	Position    [3]float32 `json:"position"`
	Orientation [4]float32 `json:"orientation"`
}

// Frame is a snapshot of every ball at one instant. It shares no memory with
// the state it was captured from.
type Frame struct {
	Time  float64     `json:"time"`
	Balls []BallFrame `json:"balls"`
}

func Capture(s *physics.State) Frame {
	return CaptureInto(Frame{}, s)
}

// CaptureInto reuses the ball slice of f when it is large enough.
func CaptureInto(f Frame, s *physics.State) Frame {
	if cap(f.Balls) < len(s.Balls) {
		f.Balls = make([]BallFrame, len(s.Balls))
	}
	f.Balls = f.Balls[:len(s.Balls)]
	f.Time = s.Time

	for i, b := range s.Balls {
		q := b.Orientation
		f.Balls[i] = BallFrame{
			Position: [3]float32{
				float32(b.Position.X()), float32(b.Position.Y()), float32(b.Position.Z()),
			},
			Orientation: [4]float32{
				float32(q.V.X()), float32(q.V.Y()), float32(q.V.Z()), float32(q.W),
			},
		}
	}
	return f
}
