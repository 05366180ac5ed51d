// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"sdrwatch/cmd"
	"sdrwatch/internal/config"
	"sdrwatch/internal/eventbus"
	"sdrwatch/internal/iqrecorder"
	"sdrwatch/internal/log"
	"sdrwatch/internal/radio"
	"sdrwatch/internal/roundrobin"
	"sdrwatch/internal/rx"
	"sdrwatch/internal/tui"
	"sdrwatch/internal/tx"
)

// The program flow is divided into three phases:
//
// 1. Startup (cold path): parse flags/config, resolve log level, execute
//    one-off commands that exit (list-drivers) without opening a device.
// 2. Concurrent (hot path): open the radio device, build the round-robin
//    table or TX hop set, start the worker goroutine, wire it to the
//    websocket bus and I/Q recorder if enabled.
// 3. Shutdown (cold path): handle SIGINT/SIGTERM, stop the worker, close
//    the device and any transports.
func main() {
	parsed, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := parsed.Config

	if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}
	if cfg.Debug {
		log.SetLevel(log.LevelDebug)
	}

	driver := radio.SoapyDriver{}

	switch cfg.Mode {
	case config.ModeListDrivers:
		if err := runListDrivers(driver); err != nil {
			log.Fatalf("%v", err)
		}
		return
	case config.ModeRX:
		if err := runRX(driver, cfg); err != nil {
			log.Fatalf("%v", err)
		}
	case config.ModeTX:
		if err := runTX(driver, cfg); err != nil {
			log.Fatalf("%v", err)
		}
	}
}

func runListDrivers(driver radio.Driver) error {
	infos, err := radio.ListDevices(driver)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No radio devices found.")
		return nil
	}
	fmt.Printf("Available radio devices (%d found)\n\n", len(infos))
	for _, info := range infos {
		fmt.Printf("[%s] %s\n", info.Driver, info.Label)
		for k, v := range info.Args {
			fmt.Printf("    %s=%s\n", k, v)
		}
	}
	return nil
}

func runRX(driverEnum radio.Driver, cfg *config.Config) error {
	if cfg.Radio.Driver == "" {
		chosen, err := tui.Run(driverEnum)
		if err != nil {
			return fmt.Errorf("device picker: %w", err)
		}
		if chosen == "" {
			return fmt.Errorf("no device selected")
		}
		cfg.Radio.Driver = chosen
	}

	device, err := radio.Open(driverEnum, cfg.Radio.Driver)
	if err != nil {
		return fmt.Errorf("open device %q: %w", cfg.Radio.Driver, err)
	}
	defer device.Close()

	table := roundrobin.NewTable()
	entries := cfg.RoundRobin.Frequencies
	if len(entries) == 0 {
		entries = []config.FrequencyEntry{{Frequency: cfg.Radio.Frequency, Bandwidth: cfg.Radio.Bandwidth}}
	}
	for _, e := range entries {
		rrCfg, err := roundrobin.NewConfig(e.Frequency, e.Bandwidth)
		if err != nil {
			return fmt.Errorf("round-robin config for %v Hz: %w", e.Frequency, err)
		}
		table.Emplace(rrCfg)
	}

	var bus eventbus.Bus
	if cfg.Websocket.Enabled {
		bus = eventbus.NewWebSocketBus(cfg.Websocket.Addr)
		defer bus.Close()
	}

	var recorder *iqrecorder.Recorder
	if cfg.Recording.Enabled {
		recorder = iqrecorder.New(int(cfg.Radio.Bandwidth))
		capturePath := fmt.Sprintf("%s/capture.wav", cfg.Recording.OutputDir)
		if err := os.MkdirAll(cfg.Recording.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create recording dir: %w", err)
		}
		if err := recorder.Start(capturePath); err != nil {
			return fmt.Errorf("start recording: %w", err)
		}
		defer recorder.Stop()
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	worker := rx.NewWorker(device, table, cfg.Output.Dir, cfg.Detector.Alpha)
	if bus != nil {
		worker.OnEvent(func(kind, message string, freq float64) {
			_ = bus.PublishEvent(eventbus.Event{Kind: kind, Message: message, FrequencyHz: freq})
		})
		worker.OnSpectrum(func(centerFreqHz, bandwidthHz float64, bins []float32) {
			_ = bus.PublishSpectrum(eventbus.Spectrum{CenterFrequencyHz: centerFreqHz, BandwidthHz: bandwidthHz, Bins: bins})
		})
	}
	if recorder != nil {
		worker.OnSamples(recorder.Write)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Infof("shutdown signal received, stopping rx worker...")
		worker.Stop()
	}()

	log.Infof("rx: watching %d frequencies on driver %q", table.Size(), cfg.Radio.Driver)
	return worker.Run()
}

func runTX(driverEnum radio.Driver, cfg *config.Config) error {
	if cfg.TX.Driver == "" {
		chosen, err := tui.Run(driverEnum)
		if err != nil {
			return fmt.Errorf("device picker: %w", err)
		}
		if chosen == "" {
			return fmt.Errorf("no device selected")
		}
		cfg.TX.Driver = chosen
	}

	device, err := radio.Open(driverEnum, cfg.TX.Driver)
	if err != nil {
		return fmt.Errorf("open device %q: %w", cfg.TX.Driver, err)
	}
	defer device.Close()

	worker, err := tx.NewWorker(device, tx.Config{
		Frequencies: cfg.TX.Frequencies,
		Bandwidth:   cfg.TX.Bandwidth,
		GainDb:      cfg.TX.Gain,
		SampleRate:  cfg.TX.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("build tx worker: %w", err)
	}

	var bus eventbus.Bus
	if cfg.Websocket.Enabled {
		bus = eventbus.NewWebSocketBus(cfg.Websocket.Addr)
		defer bus.Close()
		worker.OnEvent(func(kind, message string, freq float64) {
			_ = bus.PublishEvent(eventbus.Event{Kind: kind, Message: message, FrequencyHz: freq})
		})
	}

	listener, err := tx.NewInputListener(int(os.Stdin.Fd()), worker)
	if err != nil {
		return fmt.Errorf("enter raw terminal mode: %w", err)
	}
	defer listener.Close()

	var running atomic.Bool
	running.Store(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Infof("shutdown signal received, stopping tx worker...")
		running.Store(false)
		worker.Stop()
	}()

	go listener.Listen(os.Stdin, &running)

	log.Infof("tx: ready on driver %q, space/enter to toggle transmit, q to quit", cfg.TX.Driver)
	return worker.Run()
}
