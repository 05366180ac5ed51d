// SPDX-License-Identifier: MIT
// Package cmd parses command-line arguments into a config.Config using
// cobra, layering flags over whatever a --config file already set.
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sdrwatch/internal/config"
	"sdrwatch/pkg/build"
)

// Parsed holds the result of command-line parsing: the resolved config,
// whose Mode says which worker or one-off action (list-drivers) the
// caller should run.
type Parsed struct {
	Config *config.Config
}

// ParseArgs builds the root command and its rx/tx/list-drivers
// subcommands, parses os.Args-equivalent input via cobra, and returns the
// resulting config.
func ParseArgs(args []string) (*Parsed, error) {
	buildInfo := build.GetBuildFlags()
	name := buildInfo.Name
	if name == "unknown" {
		name = "sdrwatch"
	}

	var configPath string
	var txFreqFlag string

	cfg := config.New()

	rootCmd := &cobra.Command{
		Use:           name,
		Short:         "SDR spectrum monitor: scans frequencies, fits an anomaly model, and hops on trigger.",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&cfg.Output.Dir, "output-dir", config.DefaultOutputDir, "Directory for psd/avg-power/cauchy-dist output files")
	rootCmd.PersistentFlags().BoolVar(&cfg.Websocket.Enabled, "websocket", false, "Enable the live event/spectrum websocket server")
	rootCmd.PersistentFlags().StringVar(&cfg.Websocket.Addr, "websocket-addr", config.DefaultWebsocketAddr, "Websocket server listen address")
	rootCmd.PersistentFlags().BoolVar(&cfg.Recording.Enabled, "record", false, "Capture raw I/Q samples to a WAV file")
	rootCmd.PersistentFlags().StringVar(&cfg.Recording.OutputDir, "record-dir", config.DefaultRecordingDir, "Directory for I/Q WAV captures")

	rxCmd := &cobra.Command{
		Use:   "rx",
		Short: "Monitor one or more frequencies, detecting anomalies against a fitted skewed-Cauchy model",
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			cfg.Mode = config.ModeRX
			return nil
		},
	}
	rxCmd.Flags().StringVar(&cfg.Radio.Driver, "driver", "", "Radio driver identifier (e.g. lime, rtlsdr)")
	rxCmd.Flags().Float64Var(&cfg.Radio.Frequency, "frequency", 0, "Center frequency in Hz")
	rxCmd.Flags().Float64Var(&cfg.Radio.Bandwidth, "bandwidth", 0, "Bandwidth in Hz")
	rxCmd.Flags().Float64Var(&cfg.Radio.Gain, "gain", config.DefaultGainDb, "Receive gain in dB (stored in the config; the RX worker configures the device at 0 dB)")
	rxCmd.Flags().Float64Var(&cfg.Detector.Alpha, "alpha", config.DefaultDetectorAlpha, "Anomaly decision rule's significance level")
	var hopFlag string
	rxCmd.Flags().StringVar(&hopFlag, "hop", "", "Comma-separated freq:bandwidth pairs in Hz added to the round-robin table, e.g. 100e6:1e6,200e6:1e6")
	rootCmd.AddCommand(rxCmd)

	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Transmit a CW tone, hopping across a frequency set on a keyboard trigger",
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			cfg.Mode = config.ModeTX
			return nil
		},
	}
	txCmd.Flags().StringVar(&cfg.TX.Driver, "driver", "", "Radio driver identifier (e.g. lime, rtlsdr)")
	txCmd.Flags().StringVar(&txFreqFlag, "frequencies", "", "Comma-separated hop frequencies in Hz")
	txCmd.Flags().Float64Var(&cfg.TX.Bandwidth, "bandwidth", config.DefaultTXBandwidth, "Transmit bandwidth in Hz")
	txCmd.Flags().Float64Var(&cfg.TX.Gain, "gain", config.DefaultTXGainDb, "Transmit gain in dB")
	txCmd.Flags().Float64Var(&cfg.TX.SampleRate, "sample-rate", config.DefaultTXSampleRate, "Transmit sample rate in Hz")
	rootCmd.AddCommand(txCmd)

	listCmd := &cobra.Command{
		Use:   "list-drivers",
		Short: "List radio devices the SoapySDR binding can see and exit",
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			cfg.Mode = config.ModeListDrivers
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	if hopFlag != "" {
		entries, err := parseHopFlag(hopFlag)
		if err != nil {
			return nil, err
		}
		cfg.RoundRobin.Frequencies = append(cfg.RoundRobin.Frequencies, entries...)
	}
	if cfg.Mode == config.ModeRX && cfg.Radio.Frequency > 0 && cfg.Radio.Bandwidth > 0 {
		cfg.RoundRobin.Frequencies = append([]config.FrequencyEntry{{
			Frequency: cfg.Radio.Frequency,
			Bandwidth: cfg.Radio.Bandwidth,
		}}, cfg.RoundRobin.Frequencies...)
	}
	if txFreqFlag != "" {
		freqs, err := parseFloatList(txFreqFlag)
		if err != nil {
			return nil, err
		}
		cfg.TX.Frequencies = freqs
	}

	if configPath != "" {
		fileCfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = mergeOntoFileConfig(fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Parsed{Config: cfg}, nil
}

// mergeOntoFileConfig lets explicit flags (already applied to flagCfg)
// win over a --config file's values for the radio driver, frequency and
// bandwidth, the round-robin and TX frequency lists, and the TX driver,
// wherever the flag value is non-zero; Mode always comes from the flags,
// and Debug, Websocket.Enabled and Recording.Enabled are OR-ed. Every
// other field (gain, alpha, sample rate, output and recording dirs,
// websocket address, log level) keeps the file's value.
func mergeOntoFileConfig(fileCfg, flagCfg *config.Config) *config.Config {
	if flagCfg.Radio.Driver != "" {
		fileCfg.Radio.Driver = flagCfg.Radio.Driver
	}
	if flagCfg.Radio.Frequency != 0 {
		fileCfg.Radio.Frequency = flagCfg.Radio.Frequency
	}
	if flagCfg.Radio.Bandwidth != 0 {
		fileCfg.Radio.Bandwidth = flagCfg.Radio.Bandwidth
	}
	if len(flagCfg.RoundRobin.Frequencies) > 0 {
		fileCfg.RoundRobin.Frequencies = flagCfg.RoundRobin.Frequencies
	}
	if len(flagCfg.TX.Frequencies) > 0 {
		fileCfg.TX.Frequencies = flagCfg.TX.Frequencies
	}
	if flagCfg.TX.Driver != "" {
		fileCfg.TX.Driver = flagCfg.TX.Driver
	}
	fileCfg.Mode = flagCfg.Mode
	fileCfg.Debug = fileCfg.Debug || flagCfg.Debug
	fileCfg.Websocket.Enabled = fileCfg.Websocket.Enabled || flagCfg.Websocket.Enabled
	fileCfg.Recording.Enabled = fileCfg.Recording.Enabled || flagCfg.Recording.Enabled
	return fileCfg
}

func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("cmd: invalid frequency %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func parseHopFlag(s string) ([]config.FrequencyEntry, error) {
	parts := strings.Split(s, ",")
	out := make([]config.FrequencyEntry, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pair := strings.SplitN(p, ":", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("cmd: invalid hop entry %q, want freq:bandwidth", p)
		}
		freq, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("cmd: invalid hop frequency %q: %w", pair[0], err)
		}
		bw, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("cmd: invalid hop bandwidth %q: %w", pair[1], err)
		}
		out = append(out, config.FrequencyEntry{Frequency: freq, Bandwidth: bw})
	}
	return out, nil
}
