package metrics

import "github.com/san-kum/poolsim/internal/physics"

// Containment is the fraction of observed states with every ball center
// inside the table bounds. Walls only turn velocity, so a fast ball can sit
// past a bound for a step or two.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(s *physics.State) {
	c.samples++
	for _, b := range s.Balls {
		if !s.Table.Contains(b.Position) {
			c.violations++
			return
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
