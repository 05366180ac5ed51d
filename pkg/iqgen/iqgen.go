// SPDX-License-Identifier: MIT
// Package iqgen generates synthetic complex baseband buffers for exercising
// the DSP pipeline and anomaly detector without a radio attached, the IQ
// analogue of the audio engine's PCM test-signal generators.
package iqgen

import "math"

// Tone returns size complex samples of a continuous-wave tone at
// frequencyHz sampled at sampleRate, with unit amplitude.
func Tone(size int, sampleRate, frequencyHz float64) []complex128 {
	buf := make([]complex128, size)
	step := 2 * math.Pi * frequencyHz / sampleRate
	for i := range buf {
		phase := step * float64(i)
		buf[i] = complex(math.Cos(phase), math.Sin(phase))
	}
	return buf
}

// Noise returns size complex samples of white noise with the given
// amplitude, deterministic given seed so detector tests are reproducible.
func Noise(size int, amplitude float64, seed uint64) []complex128 {
	buf := make([]complex128, size)
	state := seed | 1
	next := func() float64 {
		// xorshift64 (shifts 13, 7, 17), a small deterministic PRNG; cryptographic quality is
		// irrelevant here, only repeatability across test runs.
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return (float64(state%2000000) / 1000000.0) - 1.0
	}
	for i := range buf {
		buf[i] = complex(amplitude*next(), amplitude*next())
	}
	return buf
}
