// SPDX-License-Identifier: MIT
// Package tx implements the CW tone transmit worker: a tone generator
// (phase step·i per sample, via iqgen.Tone) hopping across a configured
// frequency set, gated by a
// trigger flag flipped by the keyboard input listener.
package tx

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"sdrwatch/internal/log"
	"sdrwatch/internal/radio"
	"sdrwatch/pkg/iqgen"
)

const (
	defaultBandwidth  = 10e6
	defaultGainDb     = 64
	defaultSampleRate = 30e6
	toneSize          = 2048
	dwellWindow       = 20 * time.Millisecond
	idlePoll          = 100 * time.Millisecond
)

// Config describes the TX chain's static parameters and hop set.
type Config struct {
	Frequencies []float64 // txFrequencies: ordered set of >=1 hop frequencies
	Bandwidth   float64
	GainDb      float64
	SampleRate  float64
}

// Worker drives the CW tone generator and hop schedule on a single radio
// device, gated by an externally flipped trigger.
type Worker struct {
	device  radio.Device
	cfg     Config
	running atomic.Bool

	// Trigger gates transmission: the input listener flips it, the worker
	// polls it.
	Trigger atomic.Bool

	freqIndex int
	onEvent   EventFunc
}

// EventFunc receives TX lifecycle events (hops) for fanout.
type EventFunc func(kind, message string, frequencyHz float64)

// NewWorker returns a Worker transmitting over device per cfg. Bandwidth,
// GainDb, and SampleRate default per §4.6 when left zero.
func NewWorker(device radio.Device, cfg Config) (*Worker, error) {
	if len(cfg.Frequencies) == 0 {
		return nil, fmt.Errorf("tx: at least one hop frequency is required")
	}
	if cfg.Bandwidth == 0 {
		cfg.Bandwidth = defaultBandwidth
	}
	if cfg.GainDb == 0 {
		cfg.GainDb = defaultGainDb
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = defaultSampleRate
	}
	return &Worker{device: device, cfg: cfg}, nil
}

// OnEvent registers a callback invoked on every hop.
func (w *Worker) OnEvent(fn EventFunc) {
	w.onEvent = fn
}

// Stop requests cooperative shutdown.
func (w *Worker) Stop() {
	w.running.Store(false)
}

// Run configures the transmit chain, opens a TX stream, and loops until
// Stop is called, writing the current tone buffer whenever Trigger is set
// and hopping to a new frequency after each dwell window.
func (w *Worker) Run() (err error) {
	w.running.Store(true)

	freq := w.cfg.Frequencies[w.freqIndex]
	if _, cfgErr := w.device.Configure(radio.TX, freq, w.cfg.Bandwidth, w.cfg.GainDb, w.cfg.SampleRate); cfgErr != nil {
		return fmt.Errorf("tx: configure %v Hz: %w", freq, cfgErr)
	}

	stream, err := w.device.SetupStream(radio.TX)
	if err != nil {
		return fmt.Errorf("tx: setup stream: %w", err)
	}
	defer func() {
		if deactErr := stream.Deactivate(); deactErr != nil {
			log.Warnf("tx: deactivate stream: %v", deactErr)
		}
		if closeErr := stream.Close(); closeErr != nil {
			log.Warnf("tx: close stream: %v", closeErr)
		}
	}()

	tone := w.generateTone(freq)

	for w.running.Load() {
		if !w.Trigger.Load() {
			time.Sleep(idlePoll)
			continue
		}

		deadline := time.Now().Add(dwellWindow)
		for time.Now().Before(deadline) && w.running.Load() {
			n, writeErr := stream.WriteStream(tone, 0)
			if writeErr != nil {
				return fmt.Errorf("tx: write stream at %v Hz: %w", freq, writeErr)
			}
			if n < len(tone) {
				log.Warnf("tx: short write at %v Hz: wrote %d of %d", freq, n, len(tone))
			}
		}

		if !w.running.Load() {
			break
		}

		nextIndex := w.nextHopIndex()
		if nextIndex != w.freqIndex {
			w.freqIndex = nextIndex
			freq = w.cfg.Frequencies[w.freqIndex]
			if _, cfgErr := w.device.Configure(radio.TX, freq, w.cfg.Bandwidth, w.cfg.GainDb, w.cfg.SampleRate); cfgErr != nil {
				log.Warnf("tx: configure %v Hz: %v", freq, cfgErr)
				continue
			}
			tone = w.generateTone(freq)
			log.Infof("Hopped to %v Hz", freq)
			if w.onEvent != nil {
				w.onEvent("hopped", fmt.Sprintf("Hopped to %v Hz", freq), freq)
			}
		}
	}

	log.Infof("tx: worker stopped")
	return nil
}

func (w *Worker) generateTone(cwHz float64) []complex64 {
	samples := iqgen.Tone(toneSize, w.cfg.SampleRate, cwHz)
	tone := make([]complex64, len(samples))
	for i, v := range samples {
		tone[i] = complex64(v)
	}
	return tone
}

// nextHopIndex picks a different random index uniformly from
// {0..len(Frequencies)-1} \ {current}, or the current index unchanged when
// there is only one hop frequency.
func (w *Worker) nextHopIndex() int {
	n := len(w.cfg.Frequencies)
	if n < 2 {
		return w.freqIndex
	}
	next := rand.IntN(n - 1)
	if next >= w.freqIndex {
		next++
	}
	return next
}
