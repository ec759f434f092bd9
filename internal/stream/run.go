package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/poolsim/internal/dynamo"
	"github.com/san-kum/poolsim/internal/physics"
	"github.com/san-kum/poolsim/internal/render"
)

// TableInfo is the greeting clients receive on connect.
type TableInfo struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Balls  int     `json:"balls"`
	Radius float64 `json:"radius"`
}

// Run advances s once per tick at fps and broadcasts the frame captured
// after each step. It is the only goroutine touching s, and it returns when
// ctx is done or the state stops being finite.
func Run(ctx context.Context, hub *Hub, s *physics.State, stepper *physics.Stepper, dt float64, fps int) error {
	if dt <= 0 || fps <= 0 {
		return fmt.Errorf("dt %g, fps %d: %w", dt, fps, dynamo.ErrParameterBounds)
	}

	info := TableInfo{Width: s.Table.Width, Height: s.Table.Height, Balls: len(s.Balls), Radius: physics.BallRadius}
	if err := hub.SetGreeting("table", info); err != nil {
		return err
	}

	frame := render.Capture(s)
	if err := hub.Broadcast(frame); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for step := 0; ; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		t := s.Time
		stepper.Advance(s, dt)
		if !s.IsValid() {
			return dynamo.SimError{Step: step, Time: t, Err: dynamo.ErrInvalidState}
		}

		frame = render.CaptureInto(frame, s)
		if err := hub.Broadcast(frame); err != nil {
			return err
		}
	}
}
