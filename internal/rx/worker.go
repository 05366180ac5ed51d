// SPDX-License-Identifier: MIT
package rx

import (
	"fmt"
	"sync/atomic"
	"time"

	"sdrwatch/internal/detector"
	"sdrwatch/internal/dsp"
	"sdrwatch/internal/log"
	"sdrwatch/internal/radio"
	"sdrwatch/internal/roundrobin"
)

const (
	readTimeout       = 100 * time.Millisecond
	calibrateSleep    = 20 * time.Millisecond
	collectInterval   = 10 * time.Millisecond
	recomputeInterval = 10 * time.Second
	gainDb            = 0
	dwellIterations   = detector.ConsecutiveCount + 1 // 11: one full hysteresis flip's worth of slices
)

// EventFunc receives worker lifecycle events (anomaly edges and hops)
// for fanout to a websocket bus or recorder, in
// addition to the structured log lines.
type EventFunc func(kind, message string, frequencyHz float64)

// SpectrumFunc receives one published PSD slice per iteration, for fanout
// to live viewers alongside the on-disk psd_output.txt.
type SpectrumFunc func(centerFreqHz, bandwidthHz float64, bins []float32)

// SamplesFunc receives the raw I/Q buffer read each iteration, before
// windowing, for callers that want to capture it (e.g. to WAV).
type SamplesFunc func(samples []complex64) error

// defaultAlpha is the anomaly decision rule's significance level used when
// a worker is constructed without an explicit one.
const defaultAlpha = 1e-8

// Worker drives the configure→stream→dwell loop over a round-robin table
// on a single radio device, owned exclusively by this goroutine for its
// lifetime.
type Worker struct {
	device     radio.Device
	table      *roundrobin.Table
	outputDir  string
	alpha      float64
	running    atomic.Bool
	onEvent    EventFunc
	onSpectrum SpectrumFunc
	onSamples  SamplesFunc

	dwellCount int
}

// NewWorker returns a Worker over device and table, publishing output
// files into outputDir. alpha is the anomaly decision rule's significance
// level; a non-positive value falls back to defaultAlpha.
func NewWorker(device radio.Device, table *roundrobin.Table, outputDir string, alpha float64) *Worker {
	if alpha <= 0 {
		alpha = defaultAlpha
	}
	return &Worker{device: device, table: table, outputDir: outputDir, alpha: alpha}
}

// OnEvent registers a callback invoked for every lifecycle event the
// worker emits, in addition to its log lines.
func (w *Worker) OnEvent(fn EventFunc) {
	w.onEvent = fn
}

// OnSpectrum registers a callback invoked with every PSD slice the worker
// publishes.
func (w *Worker) OnSpectrum(fn SpectrumFunc) {
	w.onSpectrum = fn
}

// OnSamples registers a callback invoked with the raw I/Q buffer read
// each iteration, before windowing.
func (w *Worker) OnSamples(fn SamplesFunc) {
	w.onSamples = fn
}

func (w *Worker) emit(kind, message string, freq float64) {
	if w.onEvent != nil {
		w.onEvent(kind, message, freq)
	}
}

// Stop requests cooperative shutdown; Run returns once the current
// iteration completes.
func (w *Worker) Stop() {
	w.running.Store(false)
}

// Run executes the dwell loop until Stop is called or a fatal error
// occurs. It always releases the active stream before returning, even on
// the error path.
func (w *Worker) Run() (err error) {
	if w.table.Empty() {
		return fmt.Errorf("rx: round-robin table is empty")
	}

	w.running.Store(true)

	cfg := w.table.Current()
	applied, cfgErr := w.device.Configure(radio.RX, cfg.Frequency, cfg.Bandwidth, gainDb, -1)
	if cfgErr != nil {
		return fmt.Errorf("rx: configure %v Hz: %w", cfg.Frequency, cfgErr)
	}
	sampleRate := applied.SampleRate
	if err := cfg.Engine.SetFFTSize(applied.Bandwidth); err != nil {
		return fmt.Errorf("rx: resize fft engine for %v Hz: %w", cfg.Frequency, err)
	}

	stream, err := w.device.SetupStream(radio.RX)
	if err != nil {
		return fmt.Errorf("rx: setup stream: %w", err)
	}
	defer func() {
		if deactErr := stream.Deactivate(); deactErr != nil {
			log.Warnf("rx: deactivate stream: %v", deactErr)
		}
		if closeErr := stream.Close(); closeErr != nil {
			log.Warnf("rx: close stream: %v", closeErr)
		}
	}()

	buf := make([]complex64, cfg.Engine.FFTSize())
	in := make([]complex128, cfg.Engine.FFTSize())
	out := make([]complex128, cfg.Engine.FFTSize())

	lastSampleCollected := time.Time{}
	lastDistributionProcessed := time.Time{}

	for w.running.Load() {
		cfg = w.table.Current()
		n := cfg.Engine.FFTSize()
		if len(buf) != n {
			buf = make([]complex64, n)
			in = make([]complex128, n)
			out = make([]complex128, n)
		}

		nRead, readErr := stream.ReadStream(buf, readTimeout)
		if readErr != nil {
			log.Warnf("rx: read stream at %v Hz: %v", cfg.Frequency, readErr)
			continue
		}
		if w.onSamples != nil {
			if sampleErr := w.onSamples(buf[:nRead]); sampleErr != nil {
				log.Warnf("rx: sample callback: %v", sampleErr)
			}
		}

		if nRead < n {
			log.Warnf("rx: short read at %v Hz: got %d of %d", cfg.Frequency, nRead, n)
			continue
		}

		for i, v := range buf {
			in[i] = complex(float64(real(v)), float64(imag(v)))
		}
		cfg.Engine.Execute(in, out)
		avg := dsp.AveragePower(out)

		if !cfg.Detector.Ready() {
			cfg.Detector.PushSample(avg)
			log.Debugf("Calibrating initial distribution...")
			if cfg.Detector.Ready() {
				cfg.Detector.ProcessDistribution()
				lastDistributionProcessed = time.Now()
				log.Infof("Calibrating initial distribution completed")
			}
			time.Sleep(calibrateSleep)
		} else if !cfg.Detector.Calibrated() {
			now := time.Now()
			if now.Sub(lastSampleCollected) >= collectInterval {
				cfg.Detector.PushSample(avg)
				lastSampleCollected = now
			}
			cfg.Detector.ProcessDistribution()
			lastDistributionProcessed = now
			time.Sleep(calibrateSleep)
		} else {
			isAnom := cfg.Detector.IsAnomaly(avg, w.alpha)

			if !isAnom {
				if cfg.High {
					w.table.MutateCurrent(func(c *roundrobin.Config) { c.High = false })
					log.Infof("🔴 Anomaly Ended @ %v", cfg.Frequency)
					w.emit("anomaly_ended", fmt.Sprintf("Anomaly Ended @ %v", cfg.Frequency), cfg.Frequency)
				}
				now := time.Now()
				if now.Sub(lastSampleCollected) >= collectInterval {
					cfg.Detector.PushSample(avg)
					lastSampleCollected = now
				}
				if now.Sub(lastDistributionProcessed) >= recomputeInterval {
					cfg.Detector.ProcessDistribution()
					lastDistributionProcessed = now
				}
			} else if !cfg.High {
				w.table.MutateCurrent(func(c *roundrobin.Config) { c.High = true })
				log.Infof("🔵 Anomaly Detected @ %v", cfg.Frequency)
				w.emit("anomaly_detected", fmt.Sprintf("Anomaly Detected @ %v", cfg.Frequency), cfg.Frequency)
			}
		}

		if err := WriteAvgPower(w.outputDir, cfg.Frequency, cfg.Bandwidth, avg); err != nil {
			log.Warnf("rx: %v", err)
		}
		psd := dsp.RealPSD(out, sampleRate)
		if err := WritePSD(w.outputDir, cfg.Frequency, cfg.Bandwidth, psd); err != nil {
			log.Warnf("rx: %v", err)
		}
		if w.onSpectrum != nil {
			w.onSpectrum(cfg.Frequency, cfg.Bandwidth, psd)
		}
		if x0, sigma, lambda := cfg.Detector.Params(); cfg.Detector.Calibrated() {
			if err := WriteCauchyDist(w.outputDir, x0, sigma, lambda); err != nil {
				log.Warnf("rx: %v", err)
			}
		}

		if w.table.Size() > 1 {
			w.dwellCount++
			if w.dwellCount >= dwellIterations {
				w.dwellCount = 0
				next := w.table.Advance()
				if next.Frequency != cfg.Frequency {
					nextApplied, cfgErr := w.device.Configure(radio.RX, next.Frequency, next.Bandwidth, gainDb, -1)
					if cfgErr != nil {
						log.Warnf("rx: configure %v Hz: %v", next.Frequency, cfgErr)
					} else {
						sampleRate = nextApplied.SampleRate
						if fftErr := next.Engine.SetFFTSize(nextApplied.Bandwidth); fftErr != nil {
							log.Warnf("rx: resize fft engine for %v Hz: %v", next.Frequency, fftErr)
						}
					}
					log.Infof("Hopped to %v Hz", next.Frequency)
					w.emit("hopped", fmt.Sprintf("Hopped to %v Hz", next.Frequency), next.Frequency)
				}
			}
		}
	}

	log.Infof("rx: worker stopped")
	return nil
}
