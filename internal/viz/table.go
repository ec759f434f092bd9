package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/poolsim/internal/physics"
)

// DrawTable plots s top-down onto c, scaled to fit and centered: the table
// outline, the trail points, and each ball as a circle with a tick along its
// rotated local +z axis.
func DrawTable(c *Canvas, s *physics.State, trail []mgl64.Vec3) {
	cw, ch := c.Width*2, c.Height*4
	tw, th := s.Table.Width, s.Table.Height
	scale := math.Min(float64(cw-1)/(2*tw), float64(ch-1)/(2*th))
	ox := (float64(cw-1) - 2*tw*scale) / 2
	oy := (float64(ch-1) - 2*th*scale) / 2
	project := func(x, z float64) (int, int) {
		return int(ox + (x+tw)*scale), int(oy + (z+th)*scale)
	}

	x0, y0 := project(-tw, -th)
	x1, y1 := project(tw, th)
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)

	for _, p := range trail {
		c.Set(project(p.X(), p.Z()))
	}

	r := int(math.Round(physics.BallRadius * scale))
	for _, b := range s.Balls {
		cx, cy := project(b.Position.X(), b.Position.Z())
		c.DrawCircle(cx, cy, r)
		axis := b.Orientation.Rotate(mgl64.Vec3{0, 0, 1})
		c.DrawLine(cx, cy, cx+int(axis.X()*float64(r)), cy+int(axis.Z()*float64(r)))
	}
}
