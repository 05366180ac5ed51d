// SPDX-License-Identifier: MIT
package roundrobin

import "testing"

func TestTableEraseByFrequency(t *testing.T) {
	table := NewTable()
	c1, err := NewConfig(100e6, 2e6)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	c2, err := NewConfig(200e6, 2e6)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	table.Emplace(c1)
	table.Emplace(c2)
	if table.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", table.Size())
	}
	table.Erase(100e6)
	if table.Size() != 1 {
		t.Fatalf("Size() after erase = %d, want 1", table.Size())
	}
	if table.Current().Frequency != 200e6 {
		t.Fatalf("Current().Frequency = %v, want 200e6", table.Current().Frequency)
	}
}

func TestTableAdvanceRotatesThroughAllFrequencies(t *testing.T) {
	table := NewTable()
	freqs := []float64{100e6, 200e6, 300e6}
	for _, f := range freqs {
		cfg, err := NewConfig(f, 2e6)
		if err != nil {
			t.Fatalf("NewConfig: %v", err)
		}
		table.Emplace(cfg)
	}
	seen := map[float64]bool{table.Current().Frequency: true}
	for i := 0; i < len(freqs)-1; i++ {
		seen[table.Advance().Frequency] = true
	}
	for _, f := range freqs {
		if !seen[f] {
			t.Errorf("frequency %v never visited by rotation", f)
		}
	}
}

func TestConfigHighSurvivesRotation(t *testing.T) {
	table := NewTable()
	c1, _ := NewConfig(100e6, 2e6)
	c2, _ := NewConfig(200e6, 2e6)
	table.Emplace(c1)
	table.Emplace(c2)

	table.MutateCurrent(func(c *Config) { c.High = true })

	table.Advance() // now at c2
	table.Advance() // back to c1
	if !table.Current().High {
		t.Fatal("per-config High edge flag did not survive cursor rotation")
	}
}
