package colour

import (
	"strings"
	"testing"
)

func records(freqs ...float64) []ColorRecord {
	out := make([]ColorRecord, len(freqs))
	for i, f := range freqs {
		out[i] = NewColorRecord(i*20, 100, 200-i*10, f)
	}
	return out
}

func TestCategoriseTiered(t *testing.T) {
	tests := []struct {
		name                       string
		n                          int
		dominant, secondary, accent int
	}{
		{name: "full", n: 10, dominant: 3, secondary: 3, accent: 2},
		{name: "four", n: 4, dominant: 3, secondary: 1, accent: 0},
		{name: "one", n: 1, dominant: 1, secondary: 0, accent: 0},
		{name: "none", n: 0, dominant: 0, secondary: 0, accent: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := records(make([]float64, tt.n)...)
			p := CategoriseTiered(recs)
			if len(p.Dominant) != tt.dominant || len(p.Secondary) != tt.secondary || len(p.Accent) != tt.accent {
				t.Errorf("sizes = %d/%d/%d, want %d/%d/%d",
					len(p.Dominant), len(p.Secondary), len(p.Accent), tt.dominant, tt.secondary, tt.accent)
			}
			if len(p.All) != tt.n {
				t.Errorf("All has %d records, want %d", len(p.All), tt.n)
			}
		})
	}
}

func TestCategoriseThresholdBands(t *testing.T) {
	p := CategoriseThreshold(records(0.02, 0.5, 0.3, 0.2, 0.15, 0.12, 0.07, 0.06, 0.04, 0.03, 0.01))

	if len(p.Dominant) != 4 {
		t.Errorf("dominant has %d records, want cap of 4", len(p.Dominant))
	}
	if p.Dominant[0].Frequency != 0.5 {
		t.Errorf("dominant[0] frequency = %v, want 0.5", p.Dominant[0].Frequency)
	}
	if len(p.Secondary) != 2 {
		t.Errorf("secondary has %d records, want 2", len(p.Secondary))
	}
	if len(p.Accent) != 3 {
		t.Errorf("accent has %d records, want cap of 3", len(p.Accent))
	}
	for _, r := range p.Accent {
		if r.Frequency >= 0.05 {
			t.Errorf("accent contains frequency %v", r.Frequency)
		}
	}
}

func TestCategoriseThresholdBackfill(t *testing.T) {
	// Everything is dominant; secondary and accent borrow sorted[1] and sorted[2].
	recs := records(0.4, 0.3, 0.2)
	p := CategoriseThreshold(recs)

	if len(p.Dominant) != 3 {
		t.Fatalf("dominant has %d records, want 3", len(p.Dominant))
	}
	if len(p.Secondary) != 1 || p.Secondary[0].Hex != recs[1].Hex {
		t.Errorf("secondary = %v, want backfill of %s", p.Secondary, recs[1].Hex)
	}
	if len(p.Accent) != 1 || p.Accent[0].Hex != recs[2].Hex {
		t.Errorf("accent = %v, want backfill of %s", p.Accent, recs[2].Hex)
	}
}

func TestCategoriseThresholdDominantNeverEmpty(t *testing.T) {
	p := CategoriseThreshold(records(0.01))
	if len(p.Dominant) != 1 || p.Dominant[0].Frequency != 0.01 {
		t.Errorf("dominant = %v, want the single low-frequency record", p.Dominant)
	}
	if p.Secondary[0].Hex != DefaultSecondaryHex {
		t.Errorf("secondary = %s, want default %s", p.Secondary[0].Hex, DefaultSecondaryHex)
	}
	if p.Accent[0].Frequency != 0.01 {
		t.Errorf("accent = %v, want the low-frequency record", p.Accent)
	}

	empty := CategoriseThreshold(nil)
	if len(empty.Dominant) != 1 || empty.Dominant[0].Hex != DefaultDominantHex {
		t.Errorf("empty input dominant = %v, want default", empty.Dominant)
	}
}

func TestPaletteString(t *testing.T) {
	p := CategoriseTiered(records(0.5, 0.3))
	s := p.String()
	if !strings.Contains(s, "dominant:") || !strings.Contains(s, p.Dominant[0].Hex) {
		t.Errorf("String() = %q, missing dominant hexes", s)
	}
}
