// SPDX-License-Identifier: MIT
package radio

import (
	"fmt"
	"time"
	"unsafe"

	sdrdevice "github.com/pothosware/go-soapy-sdr/pkg/device"
)

// settleDelay is the pause after applying gain/frequency/bandwidth/sample
// rate before reading back what the hardware actually settled on; radios
// commonly snap requested values to the nearest supported step.
const settleDelay = 10 * time.Millisecond

func soapyDirection(dir Direction) sdrdevice.Direction {
	if dir == TX {
		return sdrdevice.DirectionTX
	}
	return sdrdevice.DirectionRX
}

// SoapyDriver opens devices through the SoapySDR C API, the binding shared
// by both LimeSDR and RTL-SDR hardware.
type SoapyDriver struct{}

func (SoapyDriver) Enumerate() ([]DeviceInfo, error) {
	results := sdrdevice.Enumerate(nil)
	infos := make([]DeviceInfo, 0, len(results))
	for _, args := range results {
		infos = append(infos, DeviceInfo{
			Driver: args["driver"],
			Label:  args["label"],
			Args:   args,
		})
	}
	return infos, nil
}

func (SoapyDriver) Open(driver string) (Device, error) {
	results := sdrdevice.Enumerate(nil)
	for _, args := range results {
		if args["driver"] != driver {
			continue
		}
		dev, err := sdrdevice.Make(args)
		if err != nil {
			return nil, fmt.Errorf("radio: open %s: %w", driver, err)
		}
		return &soapyDevice{dev: dev}, nil
	}
	return nil, ErrNoMatchingDevice
}

type soapyDevice struct {
	dev *sdrdevice.SDRDevice
}

func (d *soapyDevice) Configure(dir Direction, frequencyHz, bandwidthHz, gainDb, sampleRateHz float64) (AppliedConfig, error) {
	direction := soapyDirection(dir)

	if err := d.dev.SetGain(direction, 0, gainDb); err != nil {
		return AppliedConfig{}, fmt.Errorf("radio: set gain: %w", err)
	}
	if err := d.dev.SetFrequency(direction, 0, frequencyHz, nil); err != nil {
		return AppliedConfig{}, fmt.Errorf("radio: set frequency: %w", err)
	}
	if err := d.dev.SetBandwidth(direction, 0, bandwidthHz); err != nil {
		return AppliedConfig{}, fmt.Errorf("radio: set bandwidth: %w", err)
	}
	if sampleRateHz < 0 {
		sampleRateHz = bandwidthHz
	}
	if err := d.dev.SetSampleRate(direction, 0, sampleRateHz); err != nil {
		return AppliedConfig{}, fmt.Errorf("radio: set sample rate: %w", err)
	}

	time.Sleep(settleDelay)

	return AppliedConfig{
		Gain:       d.dev.GetGain(direction, 0),
		Frequency:  d.dev.GetFrequency(direction, 0),
		Bandwidth:  d.dev.GetBandwidth(direction, 0),
		SampleRate: d.dev.GetSampleRate(direction, 0),
	}, nil
}

func (d *soapyDevice) SetAntenna(dir Direction, name string) error {
	if err := d.dev.SetAntenna(soapyDirection(dir), 0, name); err != nil {
		return fmt.Errorf("radio: set antenna: %w", err)
	}
	return nil
}

func (d *soapyDevice) SetupStream(dir Direction) (Stream, error) {
	direction := soapyDirection(dir)
	stream, err := d.dev.SetupSDRStream(direction, "CF32", []uint{0}, nil)
	if err != nil {
		return nil, fmt.Errorf("radio: setup stream: %w", err)
	}
	if err := d.dev.ActivateStream(stream, 0, 0, 0); err != nil {
		return nil, fmt.Errorf("radio: activate stream: %w", err)
	}
	return &soapyStream{dev: d.dev, stream: stream}, nil
}

func (d *soapyDevice) Close() error {
	return d.dev.Unmake()
}

type soapyStream struct {
	dev    *sdrdevice.SDRDevice
	stream *sdrdevice.SDRStream
}

func (s *soapyStream) ReadStream(buf []complex64, timeout time.Duration) (int, error) {
	var flags int
	var timeNs int64
	buffs := []unsafe.Pointer{unsafe.Pointer(&buf[0])}
	n, err := s.dev.ReadStream(s.stream, buffs, uint(len(buf)), &flags, &timeNs, timeout.Microseconds())
	if err != nil {
		return n, fmt.Errorf("radio: read stream: %w", err)
	}
	return n, nil
}

func (s *soapyStream) WriteStream(buf []complex64, timeout time.Duration) (int, error) {
	buffs := []unsafe.Pointer{unsafe.Pointer(&buf[0])}
	n, err := s.dev.WriteStream(s.stream, buffs, uint(len(buf)), 0, 0, timeout.Microseconds())
	if err != nil {
		return n, fmt.Errorf("radio: write stream: %w", err)
	}
	return n, nil
}

func (s *soapyStream) Deactivate() error {
	return s.dev.DeactivateStream(s.stream, 0, 0)
}

func (s *soapyStream) Close() error {
	return s.dev.CloseStream(s.stream)
}
