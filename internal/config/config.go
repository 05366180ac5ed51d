// SPDX-License-Identifier: MIT
// Package config loads and validates runtime settings for the monitor:
// which radio driver to open, the frequencies to watch or transmit, the
// detector's significance level, and where output and transport land.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects which worker the supervisor runs, replacing a compile-time
// entrypoint choice with a runtime parameter.
type Mode string

const (
	ModeRX          Mode = "rx"
	ModeTX          Mode = "tx"
	ModeListDrivers Mode = "list-drivers"
)

// Config holds every runtime setting for the monitor, loaded from YAML and
// overridable by environment variables.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
	Mode     Mode   `yaml:"mode"`

	Radio      RadioConfig      `yaml:"radio"`
	RoundRobin RoundRobinConfig `yaml:"round_robin"`
	Detector   DetectorConfig   `yaml:"detector"`
	TX         TXConfig         `yaml:"tx"`
	Output     OutputConfig     `yaml:"output"`
	Websocket  WebsocketConfig  `yaml:"websocket"`
	Recording  RecordingConfig  `yaml:"recording"`
}

// RadioConfig identifies and tunes the receive device. The RX worker uses
// Driver, Frequency and Bandwidth; it does not apply Gain, SampleRate or
// Antenna, and always configures 0 dB gain with the sample rate equal to
// the bandwidth.
type RadioConfig struct {
	Driver     string  `yaml:"driver"` // e.g. "lime", "rtlsdr"
	Frequency  float64 `yaml:"frequency_hz"`
	Bandwidth  float64 `yaml:"bandwidth_hz"`
	Gain       float64 `yaml:"gain_db"`
	SampleRate float64 `yaml:"sample_rate_hz"` // <= 0 defaults to Bandwidth
	Antenna    string  `yaml:"antenna,omitempty"`
}

// FrequencyEntry is one round-robin table entry from config.
type FrequencyEntry struct {
	Frequency float64 `yaml:"frequency_hz"`
	Bandwidth float64 `yaml:"bandwidth_hz"`
}

// RoundRobinConfig lists the frequencies the RX worker scans. When empty,
// the RX worker watches RadioConfig's single frequency without rotating.
type RoundRobinConfig struct {
	Frequencies []FrequencyEntry `yaml:"frequencies"`
}

// DetectorConfig tunes the anomaly decision rule's significance level.
type DetectorConfig struct {
	Alpha float64 `yaml:"alpha"`
}

// TXConfig configures the CW tone transmit worker.
type TXConfig struct {
	Driver      string    `yaml:"driver"`
	Frequencies []float64 `yaml:"frequencies_hz"`
	Bandwidth   float64   `yaml:"bandwidth_hz"`
	Gain        float64   `yaml:"gain_db"`
	SampleRate  float64   `yaml:"sample_rate_hz"`
}

// OutputConfig controls where the published PSD, average-power, and
// Cauchy-fit files land.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// WebsocketConfig configures the live event and spectrum fanout server.
type WebsocketConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// RecordingConfig configures raw I/Q capture to WAV.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
}

// Defaults applied before a config file or env overrides are consulted.
const (
	DefaultLogLevel      = "info"
	DefaultGainDb        = 0
	DefaultSampleRate    = -1 // sentinel: default to bandwidth
	DefaultDetectorAlpha = 1e-8
	DefaultOutputDir     = "."
	DefaultWebsocketAddr = ":8765"
	DefaultRecordingDir  = "./recordings"
	DefaultTXBandwidth   = 10e6
	DefaultTXGainDb      = 64
	DefaultTXSampleRate  = 30e6
)

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Mode:     ModeRX,
		Radio: RadioConfig{
			Gain:       DefaultGainDb,
			SampleRate: DefaultSampleRate,
		},
		Detector: DetectorConfig{
			Alpha: DefaultDetectorAlpha,
		},
		TX: TXConfig{
			Bandwidth:  DefaultTXBandwidth,
			Gain:       DefaultTXGainDb,
			SampleRate: DefaultTXSampleRate,
		},
		Output: OutputConfig{
			Dir: DefaultOutputDir,
		},
		Websocket: WebsocketConfig{
			Addr: DefaultWebsocketAddr,
		},
		Recording: RecordingConfig{
			OutputDir: DefaultRecordingDir,
		},
	}
}

// Load reads YAML config from path, applies environment overrides,
// validates, and returns the result. An empty path falls back to
// config.yaml in the working directory if present, otherwise defaults.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}

	return cfg, nil
}

// Validate checks invariants Load cannot otherwise catch: whichever mode
// is selected must have the settings it needs to run.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeRX:
		if c.Radio.Driver == "" {
			return fmt.Errorf("radio.driver is required for rx mode")
		}
		if c.Radio.Frequency <= 0 {
			return fmt.Errorf("radio.frequency_hz must be positive")
		}
		if c.Radio.Bandwidth <= 0 {
			return fmt.Errorf("radio.bandwidth_hz must be positive")
		}
	case ModeTX:
		if c.TX.Driver == "" {
			return fmt.Errorf("tx.driver is required for tx mode")
		}
		if len(c.TX.Frequencies) == 0 {
			return fmt.Errorf("tx.frequencies_hz must have at least one entry")
		}
	case ModeListDrivers:
		// no additional requirements
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(val)
	}
	if val, ok := os.LookupEnv("ENV_RADIO_DRIVER"); ok {
		c.Radio.Driver = val
	}
	if val, ok := os.LookupEnv("ENV_RADIO_FREQUENCY_HZ"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Radio.Frequency = f
		}
	}
	if val, ok := os.LookupEnv("ENV_RADIO_BANDWIDTH_HZ"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Radio.Bandwidth = f
		}
	}
	if val, ok := os.LookupEnv("ENV_WEBSOCKET_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Websocket.Enabled = b
		}
	}
	if val, ok := os.LookupEnv("ENV_WEBSOCKET_ADDR"); ok {
		c.Websocket.Addr = val
	}
	if val, ok := os.LookupEnv("ENV_OUTPUT_DIR"); ok {
		c.Output.Dir = val
	}
}
