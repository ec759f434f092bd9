package analysis

import (
	"math"

	"github.com/san-kum/poolsim/internal/physics"
)

// Divergence estimates the largest Lyapunov exponent of a table with the
// Benettin method. Ball's x coordinate is nudged by perturbation and both
// tables are stepped side by side.
//
// Algorithm:
// 1. Step the reference and the perturbed table together
// 2. After every step measure their separation d in position and velocity
// 3. Add ln(d/d0) and pull the perturbed table back to distance d0
// 4. λ = Σ ln(d/d0) / elapsed time
//
// Renormalizing every step keeps the pair in the linear regime, so the
// estimate approximates the flow rather than the step size.
func Divergence(s0 *physics.State, ball int, perturbation, dt, duration float64) float64 {
	if ball < 0 || ball >= len(s0.Balls) || perturbation <= 0 || dt <= 0 {
		return 0
	}

	steps := int(math.Round(duration / dt))
	if steps < 1 {
		return 0
	}

	x := s0.Clone()
	xp := s0.Clone()
	xp.Balls[ball].Position[0] += perturbation
	d0 := perturbation

	st := physics.NewStepper(len(x.Balls))
	stp := physics.NewStepper(len(xp.Balls))

	sumLog := 0.0
	for i := 0; i < steps; i++ {
		st.Advance(x, dt)
		stp.Advance(xp, dt)

		sep := separation(x, xp)
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			return sumLog / (float64(i+1) * dt)
		}
		if sep == 0 {
			// The trajectories merged; nothing left to grow.
			break
		}
		sumLog += math.Log(sep / d0)
		rescale(x, xp, d0/sep)
	}

	return sumLog / (float64(steps) * dt)
}

// DivergenceByBall runs Divergence once per ball.
func DivergenceByBall(s0 *physics.State, perturbation, dt, duration float64) []float64 {
	spectrum := make([]float64, len(s0.Balls))
	for i := range spectrum {
		spectrum[i] = Divergence(s0, i, perturbation, dt, duration)
	}
	return spectrum
}

func separation(a, b *physics.State) float64 {
	sum := 0.0
	for i := range a.Balls {
		dp := b.Balls[i].Position.Sub(a.Balls[i].Position)
		dv := b.Balls[i].Velocity.Sub(a.Balls[i].Velocity)
		sum += dp.Dot(dp) + dv.Dot(dv)
	}
	return math.Sqrt(sum)
}

func rescale(ref, p *physics.State, scale float64) {
	for i := range p.Balls {
		r := ref.Balls[i]
		b := &p.Balls[i]
		b.Position = r.Position.Add(b.Position.Sub(r.Position).Mul(scale))
		b.Velocity = r.Velocity.Add(b.Velocity.Sub(r.Velocity).Mul(scale))
	}
}
