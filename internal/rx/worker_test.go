// SPDX-License-Identifier: MIT
package rx

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"sdrwatch/internal/radio"
	"sdrwatch/internal/roundrobin"
	"sdrwatch/pkg/iqgen"
)

func mustConfig(t *testing.T, freq, bw float64) roundrobin.Config {
	t.Helper()
	cfg, err := roundrobin.NewConfig(freq, bw)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func TestWorkerPublishesOutputFiles(t *testing.T) {
	dir := t.TempDir()
	table := roundrobin.NewTable()
	table.Emplace(mustConfig(t, 100e6, 1e6))

	dev := &radio.MockDevice{
		Source: func(freq float64, buf []complex64) {
			tone := iqgen.Tone(len(buf), 1e6, 1000)
			for i, v := range tone {
				buf[i] = complex64(v)
			}
		},
	}
	w := NewWorker(dev, table, dir, 0)

	go func() {
		time.Sleep(50 * time.Millisecond)
		w.Stop()
	}()

	if err := w.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	psdPath := filepath.Join(dir, "psd_output.txt")
	data, err := os.ReadFile(psdPath)
	if err != nil {
		t.Fatalf("reading psd_output.txt: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 4 {
		t.Fatalf("psd_output.txt has %d lines, want >= 4", len(lines))
	}
	if got, _ := strconv.ParseFloat(lines[0], 64); got != 100e6 {
		t.Errorf("center frequency line = %v, want 100e6", got)
	}

	avgPath := filepath.Join(dir, "avg_power_output.txt")
	if _, err := os.Stat(avgPath); err != nil {
		t.Errorf("avg_power_output.txt not published: %v", err)
	}
}

func TestWorkerErrorsOnEmptyTable(t *testing.T) {
	dir := t.TempDir()
	table := roundrobin.NewTable()
	dev := &radio.MockDevice{}
	w := NewWorker(dev, table, dir, 0)
	if err := w.Run(); err == nil {
		t.Fatal("expected error running worker over an empty round-robin table")
	}
}

func TestWorkerEscapesDegenerateCalibration(t *testing.T) {
	dir := t.TempDir()
	table := roundrobin.NewTable()
	cfg := mustConfig(t, 100e6, 1e6)

	// Force Ready() true with a constant-valued history: every sample
	// equal means IQR == 0, so ProcessDistribution leaves Calibrated()
	// false, the degenerate case the RX worker must be able to escape.
	for i := 0; i < 300; i++ {
		cfg.Detector.PushSample(1.0)
	}
	cfg.Detector.ProcessDistribution()
	if !cfg.Detector.Ready() {
		t.Fatal("expected Ready() after 300 pushes against a 256-entry history")
	}
	if cfg.Detector.Calibrated() {
		t.Fatal("expected a constant-valued history to produce a degenerate (uncalibrated) fit")
	}
	table.Emplace(cfg)

	var calls int
	dev := &radio.MockDevice{
		Source: func(freq float64, buf []complex64) {
			calls++
			// Vary the noise amplitude across calls so AveragePower varies
			// once these samples enter the rolling history, eventually
			// producing a non-zero IQR (a constant-amplitude tone would
			// keep the average power constant and never escape the
			// degenerate fit).
			amp := 1.0 + float64(calls)
			noise := iqgen.Noise(len(buf), amp, uint64(calls))
			for i, v := range noise {
				buf[i] = complex64(v)
			}
		},
	}
	w := NewWorker(dev, table, dir, 0)

	// At most one sample enters the history per iteration, and each
	// iteration sleeps calibrateSleep; the 0.75 quantile of the 256-entry
	// history only moves off 1.0 once 65 new samples are in, so the window
	// must cover well over 65 iterations.
	go func() {
		time.Sleep(3 * time.Second)
		w.Stop()
	}()
	if err := w.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !table.Current().Detector.Calibrated() {
		t.Fatal("expected the detector to leave the degenerate state once varying samples entered the history")
	}
}

func TestWorkerHopsAfterDwellQuantum(t *testing.T) {
	dir := t.TempDir()
	table := roundrobin.NewTable()
	table.Emplace(mustConfig(t, 100e6, 1e6))
	table.Emplace(mustConfig(t, 200e6, 1e6))

	dev := &radio.MockDevice{
		Source: func(freq float64, buf []complex64) {
			tone := iqgen.Tone(len(buf), 1e6, 1000)
			for i, v := range tone {
				buf[i] = complex64(v)
			}
		},
	}
	var hops []float64
	w := NewWorker(dev, table, dir, 0)
	w.OnEvent(func(kind, message string, freq float64) {
		if kind == "hopped" {
			hops = append(hops, freq)
		}
	})

	go func() {
		time.Sleep(500 * time.Millisecond)
		w.Stop()
	}()
	if err := w.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(hops) == 0 {
		t.Fatal("expected at least one hop across a 2-frequency table within the run window")
	}
}
