package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum zero-pads data to a power of two and returns the magnitudes
// of the first half of its discrete Fourier transform.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	padded := make([]float64, nextPow2(len(data)))
	copy(padded, data)

	spectrum := fft.FFTReal(padded)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in cycles per simulated second of
// the strongest non-DC component of samples taken every dt. The mean is
// removed first so padding does not leak into the low bins.
func DominantFrequency(samples []float64, dt float64) float64 {
	if len(samples) < 2 || dt <= 0 {
		return 0
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	centered := make([]float64, len(samples))
	for i, v := range samples {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best := 0
	for k := 1; k < len(ps); k++ {
		if best == 0 || ps[k] > ps[best] {
			best = k
		}
	}
	if best == 0 {
		return 0
	}

	n := nextPow2(len(samples))
	return float64(best) / (float64(n) * dt)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
