// SPDX-License-Identifier: MIT
// Package iqrecorder captures raw I/Q samples to a stereo WAV file (I on
// the left channel, Q on the right), letting a dwell slice be replayed or
// inspected offline with ordinary audio tooling.
package iqrecorder

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// Recorder writes complex baseband samples to a WAV file, scaling unit
// amplitude I/Q to the full int16 range.
type Recorder struct {
	recording atomic.Bool
	file      *os.File
	encoder   *wav.Encoder
	buf       *audio.IntBuffer
	sampleHz  int
}

// New returns a Recorder for the given sample rate; Start opens the file
// lazily so construction never fails.
func New(sampleHz int) *Recorder {
	return &Recorder{sampleHz: sampleHz}
}

// Start begins a new capture at filename, truncating any existing file.
func (r *Recorder) Start(filename string) error {
	if r.recording.Load() {
		return fmt.Errorf("iqrecorder: already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("iqrecorder: create %s: %w", filename, err)
	}
	r.file = file
	r.encoder = wav.NewEncoder(file, r.sampleHz, bitDepth, 2, 1)
	r.buf = &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: r.sampleHz},
		Data:   nil,
	}

	r.recording.Store(true)
	return nil
}

// Write appends one buffer of complex samples to the open capture,
// encoding I to the left channel and Q to the right, each scaled from
// [-1, 1] to the full int16 range. Write is a no-op if not recording.
func (r *Recorder) Write(samples []complex64) error {
	if !r.recording.Load() {
		return nil
	}

	data := make([]int, len(samples)*2)
	for i, s := range samples {
		data[2*i] = scaleToInt16(float64(real(s)))
		data[2*i+1] = scaleToInt16(float64(imag(s)))
	}
	r.buf.Data = data

	if err := r.encoder.Write(r.buf); err != nil {
		return fmt.Errorf("iqrecorder: write: %w", err)
	}
	return nil
}

func scaleToInt16(v float64) int {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int(math.Round(v * 32767))
}

// Stop closes the encoder and underlying file. Stop is a no-op if no
// capture is open.
func (r *Recorder) Stop() error {
	if !r.recording.Load() {
		return nil
	}
	r.recording.Store(false)

	if err := r.encoder.Close(); err != nil {
		return fmt.Errorf("iqrecorder: close encoder: %w", err)
	}
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("iqrecorder: close file: %w", err)
	}
	return nil
}

// Recording reports whether a capture is currently open.
func (r *Recorder) Recording() bool {
	return r.recording.Load()
}
