// SPDX-License-Identifier: MIT
package iqrecorder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStartStopWritesNonEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	r := New(48000)

	if err := r.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !r.Recording() {
		t.Fatal("Recording() = false after Start")
	}

	samples := make([]complex64, 256)
	for i := range samples {
		samples[i] = complex(0.5, -0.5)
	}
	if err := r.Write(samples); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if r.Recording() {
		t.Fatal("Recording() = true after Stop")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("output WAV file is empty")
	}
}

func TestWriteNoOpWhenNotRecording(t *testing.T) {
	r := New(48000)
	if err := r.Write([]complex64{1, 2, 3}); err != nil {
		t.Fatalf("Write while idle returned error: %v", err)
	}
}

func TestDoubleStartErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	r := New(48000)
	if err := r.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()
	if err := r.Start(path); err == nil {
		t.Fatal("expected error starting a capture while one is already open")
	}
}

func TestScaleToInt16Clamps(t *testing.T) {
	if got := scaleToInt16(2.0); got != 32767 {
		t.Errorf("scaleToInt16(2.0) = %d, want clamped to 32767", got)
	}
	if got := scaleToInt16(-2.0); got != -32767 {
		t.Errorf("scaleToInt16(-2.0) = %d, want clamped to -32767", got)
	}
}
