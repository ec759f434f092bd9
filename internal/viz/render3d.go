package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/poolsim/internal/physics"
)

// Camera orbits the table origin and projects to the canvas.
type Camera struct {
	Distance   float64
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 80, RotX: -0.9, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) view() mgl64.Quat {
	return mgl64.QuatRotate(c.RotX, mgl64.Vec3{1, 0, 0}).Mul(mgl64.QuatRotate(c.RotY, mgl64.Vec3{0, 1, 0}))
}

// Project converts world coordinates to canvas sub-pixels. It returns x, y,
// depth, and whether the point is on screen.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.view().Rotate(p).Mul(c.Zoom)
	if rot.Z() >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z())
	pScale := float64(min(sw, sh)) / 40.0
	sx := int(rot.X()*scale*pScale) + sw/2
	sy := int(-rot.Y()*scale*pScale) + sh/2
	return sx, sy, rot.Z(), sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe               { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Width*2, c.Height*4
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// TableWireframe outlines the table on the floor plane and gives every ball
// a ring on the rest plane plus its rotated local up axis.
func TableWireframe(s *physics.State) *Wireframe {
	w := NewWireframe()
	tw, th := s.Table.Width, s.Table.Height
	corners := []mgl64.Vec3{{-tw, 0, -th}, {tw, 0, -th}, {tw, 0, th}, {-tw, 0, th}}
	for i := range corners {
		w.AddEdge(corners[i], corners[(i+1)%len(corners)])
	}

	const segments = 8
	for _, b := range s.Balls {
		for k := 0; k < segments; k++ {
			a0 := 2 * math.Pi * float64(k) / segments
			a1 := 2 * math.Pi * float64(k+1) / segments
			p0 := b.Position.Add(mgl64.Vec3{math.Cos(a0), 0, math.Sin(a0)}.Mul(physics.BallRadius))
			p1 := b.Position.Add(mgl64.Vec3{math.Cos(a1), 0, math.Sin(a1)}.Mul(physics.BallRadius))
			w.AddEdge(p0, p1)
		}
		up := b.Orientation.Rotate(mgl64.Vec3{0, physics.BallRadius, 0})
		w.AddEdge(b.Position, b.Position.Add(up))
	}
	return w
}
