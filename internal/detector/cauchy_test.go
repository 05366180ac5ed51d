// SPDX-License-Identifier: MIT
package detector

import (
	"math"
	"testing"
)

func TestCDFAtX0(t *testing.T) {
	for _, lambda := range []float64{-0.8, -0.2, 0, 0.3, 0.9} {
		got := cdf(5.0, 5.0, 1.0, lambda) - (1-lambda)/2
		if math.Abs(got) > 1e-12 {
			t.Errorf("cdf(x0)-(1-lambda)/2 = %v for lambda=%v, want 0", got, lambda)
		}
	}
}

func TestPDFIntegratesToOne(t *testing.T) {
	const (
		x0    = 0.0
		sigma = 1.0
		lo    = -2000.0
		hi    = 2000.0
		step  = 0.01
	)
	for _, lambda := range []float64{-0.9, -0.3, 0, 0.4, 0.99} {
		var sum float64
		for x := lo; x <= hi; x += step {
			sum += pdf(x, x0, sigma, lambda) * step
		}
		if math.Abs(sum-1) > 1e-3 {
			t.Errorf("integral(pdf) = %v for lambda=%v, want ~1", sum, lambda)
		}
	}
}

func TestSgnPreservesDocumentedBug(t *testing.T) {
	// Values inside (-epsilon, +epsilon) must NOT return 0 under the
	// preserved behavior: anything strictly less than epsilon falls into
	// the < epsilon branch and returns -1, rather than 0.
	if sgn(0) != -1 {
		t.Errorf("sgn(0) = %d, want -1 (documented bug preserved)", sgn(0))
	}
	if sgn(sgnEpsilon/2) != -1 {
		t.Errorf("sgn(epsilon/2) = %d, want -1", sgn(sgnEpsilon/2))
	}
	if sgn(-sgnEpsilon/2) != -1 {
		t.Errorf("sgn(-epsilon/2) = %d, want -1", sgn(-sgnEpsilon/2))
	}
	if sgn(1.0) != 1 {
		t.Errorf("sgn(1.0) = %d, want 1", sgn(1.0))
	}
	if sgn(-1.0) != -1 {
		t.Errorf("sgn(-1.0) = %d, want -1", sgn(-1.0))
	}
}

func TestMLETieBreakSymmetric(t *testing.T) {
	samples := make([]float64, 0, 400)
	for i := -200; i <= 200; i++ {
		samples = append(samples, float64(i)*0.05)
	}
	lambda := mle(samples, 0, 1.0)

	best := nll(samples, 0, 1.0, lambda)
	for l := -1.0; l <= 1.0-dTheta+1e-12; l += dTheta {
		if l >= lambda {
			continue
		}
		if nll(samples, 0, 1.0, l) < best+1e-6 {
			t.Errorf("found lambda=%v within 1e-6 NLL of chosen %v but smaller and not selected", l, lambda)
		}
	}
	if math.Abs(lambda) > 0.1 {
		t.Errorf("mle on symmetric history = %v, want near 0", lambda)
	}
}
