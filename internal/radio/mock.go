// SPDX-License-Identifier: MIT
package radio

import (
	"sync"
	"time"
)

// MockDriver is an in-memory Driver implementation for tests: it serves a
// single MockDevice under a fixed driver name and never touches hardware.
type MockDriver struct {
	Name   string
	Device *MockDevice
}

func (m *MockDriver) Enumerate() ([]DeviceInfo, error) {
	return []DeviceInfo{{Driver: m.Name, Label: "mock"}}, nil
}

func (m *MockDriver) Open(driver string) (Device, error) {
	if driver != m.Name {
		return nil, ErrNoMatchingDevice
	}
	return m.Device, nil
}

// MockDevice is a test double standing in for a SoapySDR device. Source
// feeds ReadStream from a caller-supplied generator function so tests can
// script a synthetic signal at a known frequency; Written records every
// buffer WriteStream is asked to transmit.
type MockDevice struct {
	mu      sync.Mutex
	applied AppliedConfig
	closed  bool

	// Source, if set, is called once per ReadStream to fill the buffer; it
	// receives the current configured frequency so tests can make signal
	// content conditional on tuning (round-robin dwell scenarios).
	Source func(frequencyHz float64, buf []complex64)

	Written [][]complex64
}

func (m *MockDevice) Configure(dir Direction, frequencyHz, bandwidthHz, gainDb, sampleRateHz float64) (AppliedConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sampleRateHz < 0 {
		sampleRateHz = bandwidthHz
	}
	m.applied = AppliedConfig{Gain: gainDb, Frequency: frequencyHz, Bandwidth: bandwidthHz, SampleRate: sampleRateHz}
	return m.applied, nil
}

func (m *MockDevice) SetAntenna(Direction, string) error {
	return nil
}

func (m *MockDevice) SetupStream(dir Direction) (Stream, error) {
	return &mockStream{device: m, dir: dir}, nil
}

func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockDevice) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockDevice) frequency() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied.Frequency
}

type mockStream struct {
	device      *MockDevice
	dir         Direction
	deactivated bool
	closed      bool
}

func (s *mockStream) ReadStream(buf []complex64, timeout time.Duration) (int, error) {
	if s.device.Source != nil {
		s.device.Source(s.device.frequency(), buf)
	}
	return len(buf), nil
}

func (s *mockStream) WriteStream(buf []complex64, timeout time.Duration) (int, error) {
	cp := make([]complex64, len(buf))
	copy(cp, buf)
	s.device.mu.Lock()
	s.device.Written = append(s.device.Written, cp)
	s.device.mu.Unlock()
	return len(buf), nil
}

func (s *mockStream) Deactivate() error {
	s.deactivated = true
	return nil
}

func (s *mockStream) Close() error {
	s.closed = true
	return nil
}
