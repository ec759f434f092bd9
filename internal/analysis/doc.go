// Package analysis characterizes recorded ball trajectories.
//
// The package includes:
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a series
//   - [Divergence]: growth rate of a small perturbation between two tables
//   - [DivergenceByBall]: the same with each ball perturbed in turn
//   - [PhasePortraitFromSeries]: 2D phase space trajectories
//   - [PoincareFromSeries]: crossings of a series through a threshold
//
// # Chaos Detection
//
// Billiards with several balls are sensitive to initial conditions. A
// positive rate means nearby starts separate exponentially:
//
//	lambda := analysis.Divergence(s0, 0, 1e-6, dt, duration)
//	if lambda > 0 {
//	    // perturbations grow
//	}
package analysis
