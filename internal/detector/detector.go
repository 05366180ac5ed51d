// SPDX-License-Identifier: MIT
package detector

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MaxSize bounds the rolling sample history the detector fits against.
const MaxSize = 256

// ConsecutiveCount is the number of consecutive tail hits (or misses)
// needed to flip the sticky anomalous decision, in either direction.
const ConsecutiveCount = 10

// Detector fits a skewed-Cauchy distribution to a rolling window of power
// samples and flags sustained excursions into its upper tail via a
// two-sided hysteresis (Schmitt trigger) rule.
type Detector struct {
	samples []float64
	ready   bool // true once the FIFO has overflowed at least once

	calibrated        bool // true once a non-degenerate fit exists
	x0, sigma, lambda float64

	cHigh, cLow int
	anomalous   bool
}

// New returns an empty Detector.
func New() *Detector {
	return &Detector{}
}

// PushSample appends y to the rolling history, evicting the oldest sample
// once MaxSize is reached. Ready becomes true the first time an eviction
// happens and stays true thereafter.
func (d *Detector) PushSample(y float64) {
	d.samples = append(d.samples, y)
	if len(d.samples) > MaxSize {
		d.samples = d.samples[len(d.samples)-MaxSize:]
		d.ready = true
	}
}

// Ready reports whether the sample FIFO has overflowed at least once.
func (d *Detector) Ready() bool {
	return d.ready
}

// Calibrated reports whether ProcessDistribution has produced a usable
// (non-degenerate) fit, which IsAnomaly requires.
func (d *Detector) Calibrated() bool {
	return d.calibrated
}

// ProcessDistribution refits (x0, sigma, lambda) from the current sample
// history: x0 and sigma seed from the median and the IQR-derived Cauchy
// scale estimate, and lambda is then found by brute-force MLE search. It
// is a no-op if the history has fewer than two samples, and leaves
// Calibrated false if the IQR is degenerate (sigma would be 0).
func (d *Detector) ProcessDistribution() {
	n := len(d.samples)
	if n < 2 {
		return
	}

	sorted := make([]float64, n)
	copy(sorted, d.samples)
	sort.Float64s(sorted)

	x0 := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1

	sigma := iqr / 2
	if sigma <= 0 {
		// Degenerate IQR: every subsequent PDF evaluation would collapse to
		// -Inf log-likelihood. Leave calibrated false so the RX worker keeps
		// treating this config as still calibrating.
		return
	}

	lambda := mle(d.samples, x0, sigma)

	d.x0, d.sigma, d.lambda = x0, sigma, lambda
	d.calibrated = true
}

// IsAnomaly evaluates sample y against the fitted distribution's upper
// tail at significance alpha, applying a two-sided hysteresis rule: a
// tail probability below alpha increments cHigh and resets cLow, and vice
// versa. anomalous flips to true once cHigh reaches ConsecutiveCount, and
// back to false once cLow reaches ConsecutiveCount; otherwise it holds its
// previous (sticky) value. IsAnomaly panics if called before
// ProcessDistribution has produced a calibrated fit.
func (d *Detector) IsAnomaly(y, alpha float64) bool {
	if !d.calibrated {
		panic("detector: IsAnomaly called before a calibrated fit exists")
	}

	tailProb := 1 - cdf(y, d.x0, d.sigma, d.lambda)
	if math.IsNaN(tailProb) {
		tailProb = 1
	}

	if tailProb < alpha {
		d.cHigh++
		d.cLow = 0
	} else {
		d.cLow++
		d.cHigh = 0
	}

	if d.cHigh >= ConsecutiveCount {
		d.anomalous = true
		d.cHigh = ConsecutiveCount
	}
	if d.cLow >= ConsecutiveCount {
		d.anomalous = false
		d.cLow = ConsecutiveCount
	}

	return d.anomalous
}

// Params returns the detector's current fitted location, scale, and skew.
func (d *Detector) Params() (x0, sigma, lambda float64) {
	return d.x0, d.sigma, d.lambda
}
