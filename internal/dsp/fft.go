// SPDX-License-Identifier: MIT
// Package dsp implements the windowed FFT and power-spectrum pipeline that
// turns a buffer of IQ samples into the scalar and vector power estimates
// the anomaly detector and round-robin scheduler consume.
package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"sdrwatch/pkg/bitint"
)

// MinFFTSize is the smallest FFT size the engine accepts. Bandwidths below
// 1 MHz would otherwise derive a size smaller than this floor.
const MinFFTSize = 64

// FFTSizeForBandwidth derives the FFT size N for a given bandwidth in Hz:
// N = 2^(6 + floor(log2(B/1e6))), clamped to a minimum of MinFFTSize.
func FFTSizeForBandwidth(bandwidthHz float64) int {
	if bandwidthHz <= 0 {
		return MinFFTSize
	}
	exp := 6 + int(math.Floor(math.Log2(bandwidthHz/1e6)))
	if exp < 6 {
		exp = 6
	}
	return 1 << uint(exp)
}

// Engine applies a Hann² window to a buffer of complex samples and computes
// its forward DFT. It holds a plan bound to a single FFT size; changing that
// size requires SetFFTSize, which rebuilds the plan and reallocates the
// engine's working buffers.
type Engine struct {
	fftSize int
	plan    *fourier.CmplxFFT
	window  []float64

	// Scratch buffer reused across Execute calls to avoid per-call
	// allocation in the dwell hot path.
	scratch []complex128
}

// NewEngine builds an Engine for the FFT size implied by bandwidthHz.
// Derived sizes below MinFFTSize are clamped up to it, not rejected; an
// error is returned only if the derived size is not a power of two of at
// least 2.
func NewEngine(bandwidthHz float64) (*Engine, error) {
	e := &Engine{}
	if err := e.SetFFTSize(bandwidthHz); err != nil {
		return nil, err
	}
	return e, nil
}

// SetFFTSize rebuilds the FFT plan and working buffers for the size derived
// from bandwidthHz. It is the only way the engine's FFT size changes.
func (e *Engine) SetFFTSize(bandwidthHz float64) error {
	n := FFTSizeForBandwidth(bandwidthHz)
	if n < 2 || !bitint.IsPowerOfTwo(n) {
		return fmt.Errorf("dsp: invalid fft size %d derived from bandwidth %g Hz", n, bandwidthHz)
	}

	window := make([]float64, n)
	for i := range window {
		s := math.Sin(math.Pi * float64(i) / float64(n))
		window[i] = s * s
	}

	e.fftSize = n
	e.plan = fourier.NewCmplxFFT(n)
	e.window = window
	e.scratch = make([]complex128, n)
	return nil
}

// FFTSize returns the engine's current FFT size N.
func (e *Engine) FFTSize() int {
	return e.fftSize
}

// Execute applies the Hann² window to in (in place) and writes the forward
// DFT of the windowed signal into out. Both slices must have length
// FFTSize(); Execute panics otherwise, mirroring the original's
// construction-time contract on buffer size.
func (e *Engine) Execute(in, out []complex128) {
	n := e.fftSize
	if len(in) != n || len(out) != n {
		panic(fmt.Sprintf("dsp: Execute requires buffers of length %d, got in=%d out=%d", n, len(in), len(out)))
	}

	for i := 0; i < n; i++ {
		w := e.window[i]
		in[i] = complex(real(in[i])*w, imag(in[i])*w)
	}

	e.plan.Coefficients(out, in)
}
