// SPDX-License-Identifier: MIT
package rx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWritePSDFormat(t *testing.T) {
	dir := t.TempDir()
	bins := []float32{1.5, 2.25, -3}
	if err := WritePSD(dir, 100e6, 1e6, bins); err != nil {
		t.Fatalf("WritePSD: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "psd_output.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected at least 4 lines, got %d: %q", len(lines), string(data))
	}
	if lines[0] != "100000000" {
		t.Errorf("center freq line = %q, want %q", lines[0], "100000000")
	}
	if lines[1] != "1000000" {
		t.Errorf("bandwidth line = %q, want %q", lines[1], "1000000")
	}
	if lines[2] != "3" {
		t.Errorf("bin count line = %q, want %q", lines[2], "3")
	}
	if lines[3] != "1.5,2.25,-3," {
		t.Errorf("bin values line = %q, want %q", lines[3], "1.5,2.25,-3,")
	}
}

func TestWriteAvgPowerFormat(t *testing.T) {
	dir := t.TempDir()
	if err := WriteAvgPower(dir, 50e6, 2e6, 0.125); err != nil {
		t.Fatalf("WriteAvgPower: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "avg_power_output.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "50000000\n2000000\n1\n0.125,"
	if string(data) != want {
		t.Errorf("content = %q, want %q", string(data), want)
	}
}

func TestWriteCauchyDistFormat(t *testing.T) {
	dir := t.TempDir()
	if err := WriteCauchyDist(dir, 1.5, 0.25, -0.1); err != nil {
		t.Fatalf("WriteCauchyDist: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cauchy_dist.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "1.5\n0.25\n-0.1\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", string(data), want)
	}
}

func TestWriteAtomicLeavesNoTmpFile(t *testing.T) {
	dir := t.TempDir()
	if err := writeAtomic(dir, "out.txt", "hello"); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.txt.tmp")); !os.IsNotExist(err) {
		t.Errorf("expected tmp file to be gone after rename, stat err = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", string(data), "hello")
	}
}

func TestWriteAtomicOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	if err := writeAtomic(dir, "out.txt", "first"); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}
	if err := writeAtomic(dir, "out.txt", "second"); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", string(data), "second")
	}
}
