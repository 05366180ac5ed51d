// SPDX-License-Identifier: MIT
package roundrobin

import (
	"sdrwatch/internal/detector"
	"sdrwatch/internal/dsp"
)

// Config is a per-frequency entry in the round-robin scheduling table: the
// frequency and bandwidth being monitored, the FFT engine and anomaly
// detector dedicated to that frequency, and the sticky edge tracker the RX
// worker flips on anomaly transitions. Table.Erase matches entries by
// Frequency alone.
type Config struct {
	Frequency float64
	Bandwidth float64
	Engine    *dsp.Engine
	Detector  *detector.Detector

	// High is the RX worker's per-config anomaly edge tracker. It must
	// live here, not in the worker loop frame, so it survives cursor
	// rotation across dwell slices on other frequencies.
	High bool
}

// NewConfig builds a Config for frequency/bandwidth with a freshly
// allocated FFT engine and detector.
func NewConfig(frequency, bandwidth float64) (Config, error) {
	engine, err := dsp.NewEngine(bandwidth)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Frequency: frequency,
		Bandwidth: bandwidth,
		Engine:    engine,
		Detector:  detector.New(),
	}, nil
}

// Table is the round-robin state table over per-frequency configs, keyed
// by frequency for Erase. Emplace does not check for an existing entry
// with the same frequency, so duplicates are kept.
type Table struct {
	list *List[Config]
}

// NewTable returns an empty scheduling table.
func NewTable() *Table {
	return &Table{list: NewList[Config]()}
}

// Size returns the number of frequencies in the table.
func (t *Table) Size() int {
	return t.list.Size()
}

// Empty reports whether the table has no entries.
func (t *Table) Empty() bool {
	return t.list.Empty()
}

// Emplace appends cfg to the table.
func (t *Table) Emplace(cfg Config) int {
	return t.list.Emplace(cfg)
}

// Erase removes the entry for frequency, if present.
func (t *Table) Erase(frequency float64) int {
	return t.list.Erase(func(c Config) bool { return c.Frequency == frequency })
}

// Current returns the config under the cursor.
func (t *Table) Current() Config {
	return t.list.Current()
}

// Advance moves the cursor to the next config and returns it.
func (t *Table) Advance() Config {
	return t.list.Advance()
}

// MutateCurrent applies fn to the config under the cursor in place, used
// by the RX worker to flip the per-config High edge tracker without it
// being lost on the next rotation.
func (t *Table) MutateCurrent(fn func(*Config)) {
	t.list.MutateCurrent(fn)
}
