// SPDX-License-Identifier: MIT
// Package rx implements the round-robin RX worker: the dwell loop that
// drives the FFT engine, PSD computer, and anomaly detector for the
// current frequency and republishes psd_output.txt and
// avg_power_output.txt each slice, plus cauchy_dist.txt once the current
// detector has a calibrated fit.
package rx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// writeAtomic writes content to name via a <name>.tmp file followed by a
// rename, so external consumers polling the file never observe a partial
// write.
func writeAtomic(dir, name, content string) error {
	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("rx: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rx: rename %s: %w", tmp, err)
	}
	return nil
}

// WritePSD atomically publishes psd_output.txt: center frequency,
// bandwidth, bin count, then the comma-separated rotated PSD bins with a
// trailing comma.
func WritePSD(dir string, centerFreqHz, bandwidthHz float64, bins []float32) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%d\n", formatHz(centerFreqHz), formatHz(bandwidthHz), len(bins))
	for _, v := range bins {
		fmt.Fprintf(&b, "%s,", strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	return writeAtomic(dir, "psd_output.txt", b.String())
}

// WriteAvgPower atomically publishes avg_power_output.txt: the same
// three-line header (count is always 1) followed by a single average
// power value.
func WriteAvgPower(dir string, centerFreqHz, bandwidthHz float64, avg float64) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n1\n", formatHz(centerFreqHz), formatHz(bandwidthHz))
	fmt.Fprintf(&b, "%s,", strconv.FormatFloat(avg, 'g', -1, 64))
	return writeAtomic(dir, "avg_power_output.txt", b.String())
}

// WriteCauchyDist atomically publishes cauchy_dist.txt: x0, sigma, and
// lambda each on their own line.
func WriteCauchyDist(dir string, x0, sigma, lambda float64) error {
	content := fmt.Sprintf("%s\n%s\n%s\n",
		strconv.FormatFloat(x0, 'g', -1, 64),
		strconv.FormatFloat(sigma, 'g', -1, 64),
		strconv.FormatFloat(lambda, 'g', -1, 64))
	return writeAtomic(dir, "cauchy_dist.txt", content)
}

func formatHz(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
