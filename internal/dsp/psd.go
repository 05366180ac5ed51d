// SPDX-License-Identifier: MIT
package dsp

import "math"

// AveragePower returns the mean power across all bins of an FFT output:
// (Σ |X[k]|²) / N.
func AveragePower(x []complex128) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		re, im := real(v), imag(v)
		sum += re*re + im*im
	}
	return sum / float64(n)
}

// RealPSD computes the real-valued power spectral density in dB from FFT
// output x, normalized by N·sampleRate, then rotates the result by N/2 so
// that DC lands at the center bin (FFT-shift). A zero-magnitude bin
// produces -Inf; callers tolerate this per the pipeline's contract.
func RealPSD(x []complex128, sampleRate float64) []float32 {
	n := len(x)
	p := make([]float32, n)
	for k, v := range x {
		re, im := real(v), imag(v)
		mag2 := re*re + im*im
		p[k] = float32(10 * math.Log10(mag2/(float64(n)*sampleRate)))
	}
	rotate(p)
	return p
}

// rotate swaps the two halves of p so that index 0 (DC) moves to N/2.
func rotate(p []float32) {
	mid := len(p) / 2
	for i := 0; i < mid; i++ {
		p[i], p[mid+i] = p[mid+i], p[i]
	}
}
