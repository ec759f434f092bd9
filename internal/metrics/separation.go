package metrics

import (
	"math"

	"github.com/san-kum/poolsim/internal/physics"
)

// Overlap is the mean number of interpenetrating pairs per observed state.
type Overlap struct {
	name    string
	total   int
	samples int
}

func NewOverlap() *Overlap {
	return &Overlap{name: "overlap"}
}

func (o *Overlap) Name() string { return o.name }

func (o *Overlap) Observe(s *physics.State) {
	o.total += s.Overlaps()
	o.samples++
}

func (o *Overlap) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return float64(o.total) / float64(o.samples)
}

func (o *Overlap) Reset() {
	o.total = 0
	o.samples = 0
}

// MinSeparation is the smallest center distance between any two balls over
// all observed states. It reports 0 until a pair has been seen.
type MinSeparation struct {
	name string
	min  float64
	seen bool
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(s *physics.State) {
	for i := range s.Balls {
		for j := i + 1; j < len(s.Balls); j++ {
			d := s.Balls[j].Position.Sub(s.Balls[i].Position).Len()
			if d < m.min {
				m.min = d
			}
			m.seen = true
		}
	}
}

func (m *MinSeparation) Value() float64 {
	if !m.seen {
		return 0
	}
	return m.min
}

func (m *MinSeparation) Reset() {
	m.min = math.Inf(1)
	m.seen = false
}
