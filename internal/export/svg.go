package export

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/poolsim/internal/physics"
	"github.com/san-kum/poolsim/internal/viz"
)

// CanvasToSVG draws every lit sub-pixel of a braille canvas as a square of
// side scale, on the dark table background.
func CanvasToSVG(c *viz.Canvas, scale float64, fill string) string {
	if c == nil {
		return ""
	}

	cols, rows := c.Width*2, c.Height*4
	w, h := float64(cols)*scale, float64(rows)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0b3d2e"/>
<g fill="%s">
`, w, h, w, h, fill)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if c.IsSet(x, y) {
				fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\"/>\n",
					float64(x)*scale, float64(y)*scale, scale, scale)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

var ballColors = []string{
	"#f5f5f5", "#f2c14e", "#2d6cdf", "#d7263d", "#6a4c93",
	"#f77f00", "#1b998b", "#8c1c13", "#222222",
}

// TableToSVG draws the table top-down: felt, cushion line at the ball
// bounds, each ball as a circle with a tick along its rotated local +z axis.
// One table unit is scale pixels.
func TableToSVG(s *physics.State, scale float64) string {
	if s == nil || scale <= 0 {
		return ""
	}

	w, h := s.Table.Width, s.Table.Height
	width := 2 * w * scale
	height := 2 * h * scale
	bw, bh := s.Table.Bounds()

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0b5d2a"/>
<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#0a3d1c" stroke-dasharray="4 4"/>
`, width, height, width, height,
		(w-bw)*scale, (h-bh)*scale, 2*bw*scale, 2*bh*scale))

	r := physics.BallRadius * scale
	for i, b := range s.Balls {
		cx := (b.Position.X() + w) * scale
		cy := (b.Position.Z() + h) * scale
		axis := b.Orientation.Rotate(mgl64.Vec3{0, 0, 1})

		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="#000000" stroke-width="0.5"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#000000" stroke-width="1"/>
`, cx, cy, r, ballColors[i%len(ballColors)],
			cx, cy, cx+axis.X()*r, cy+axis.Z()*r))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG creates an SVG from trajectory data
func TrajectoryToSVG(points []struct{ X, Y float64 }, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
