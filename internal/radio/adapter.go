// SPDX-License-Identifier: MIT
// Package radio is a thin abstraction over the SDR device library, giving
// the RX and TX workers a small capability set (enumerate, open, configure,
// stream) instead of a base class with overridden hooks.
package radio

import (
	"errors"
	"time"
)

// Direction selects which signal path a device operation applies to.
type Direction int

const (
	RX Direction = iota
	TX
)

// ErrNoMatchingDevice is returned when enumeration finds no device whose
// driver key matches the requested identifier.
var ErrNoMatchingDevice = errors.New("radio: no device found for driver")

// DeviceInfo is one entry from Driver.Enumerate, the subset of SoapySDR
// device arguments the adapter cares about.
type DeviceInfo struct {
	Driver string
	Label  string
	Args   map[string]string
}

// Driver enumerates and opens devices for a single backend (SoapySDR,
// a mock for tests, or a future alternative binding).
type Driver interface {
	Enumerate() ([]DeviceInfo, error)
	Open(driver string) (Device, error)
}

// Stream is an opened, activated RX or TX data path.
type Stream interface {
	// ReadStream reads up to len(buf) complex samples with the given
	// timeout, returning the count actually read.
	ReadStream(buf []complex64, timeout time.Duration) (int, error)
	// WriteStream writes len(buf) complex samples with the given timeout,
	// returning the count actually written.
	WriteStream(buf []complex64, timeout time.Duration) (int, error)
	Deactivate() error
	Close() error
}

// Device is an open radio device, exclusively owned by one worker for its
// lifetime.
type Device interface {
	// Configure sets gain/frequency/bandwidth/sample-rate on direction's
	// channel 0, settles, and reads back the actual applied values.
	// sampleRateHz < 0 defaults the sample rate to bandwidthHz.
	Configure(dir Direction, frequencyHz, bandwidthHz, gainDb, sampleRateHz float64) (AppliedConfig, error)
	SetAntenna(dir Direction, name string) error

	SetupStream(dir Direction) (Stream, error)

	Close() error
}

// AppliedConfig is the read-back of a Configure call: what the device
// actually settled on, which may differ from the request.
type AppliedConfig struct {
	Gain       float64
	Frequency  float64
	Bandwidth  float64
	SampleRate float64
}

// Open iterates driver's enumeration and opens the first device whose
// driver key equals name, per the external driver-identifier contract
// ("lime", "rtlsdr").
func Open(driver Driver, name string) (Device, error) {
	infos, err := driver.Enumerate()
	if err != nil {
		return nil, err
	}
	if _, err := FindDriver(infos, name); err != nil {
		return nil, err
	}
	return driver.Open(name)
}
