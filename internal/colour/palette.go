package colour

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Category caps for threshold slicing.
const (
	thresholdDominantCap  = 4
	thresholdSecondaryCap = 4
	thresholdAccentCap    = 3

	dominantThreshold  = 0.10
	secondaryThreshold = 0.05
)

// Default colours used when a category has nothing to show.
const (
	DefaultDominantHex  = "#6366f1"
	DefaultSecondaryHex = "#8b5cf6"
	DefaultAccentHex    = "#06b6d4"
)

// Palette groups ranked colour records into roles.
type Palette struct {
	Dominant  []ColorRecord `json:"dominant"`
	Secondary []ColorRecord `json:"secondary"`
	Accent    []ColorRecord `json:"accent"`
	All       []ColorRecord `json:"all,omitempty"`
}

// Len returns the number of categorised records.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Dominant) + len(p.Secondary) + len(p.Accent)
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// String returns a human-readable representation of the palette.
func (p *Palette) String() string {
	var b strings.Builder
	for _, group := range []struct {
		name    string
		records []ColorRecord
	}{
		{"dominant", p.Dominant},
		{"secondary", p.Secondary},
		{"accent", p.Accent},
	} {
		hexes := make([]string, len(group.records))
		for i, r := range group.records {
			hexes[i] = r.Hex
		}
		fmt.Fprintf(&b, "%-10s %s\n", group.name+":", strings.Join(hexes, " "))
	}
	return b.String()
}

// CategoriseTiered slices ranked image records: the first 3 are dominant,
// the next 3 secondary and the next 2 accent.
func CategoriseTiered(records []ColorRecord) *Palette {
	return &Palette{
		Dominant:  window(records, 0, 3),
		Secondary: window(records, 3, 6),
		Accent:    window(records, 6, 8),
		All:       records,
	}
}

// CategoriseThreshold assigns webpage records by frequency band and backfills
// empty bands from the ranked list. Bands still empty get the default colours.
func CategoriseThreshold(records []ColorRecord) *Palette {
	sorted := make([]ColorRecord, len(records))
	copy(sorted, records)
	sortByFrequency(sorted)

	p := &Palette{
		Dominant:  []ColorRecord{},
		Secondary: []ColorRecord{},
		Accent:    []ColorRecord{},
		All:       sorted,
	}
	for _, r := range sorted {
		switch {
		case r.Frequency >= dominantThreshold:
			if len(p.Dominant) < thresholdDominantCap {
				p.Dominant = append(p.Dominant, r)
			}
		case r.Frequency >= secondaryThreshold:
			if len(p.Secondary) < thresholdSecondaryCap {
				p.Secondary = append(p.Secondary, r)
			}
		default:
			if len(p.Accent) < thresholdAccentCap {
				p.Accent = append(p.Accent, r)
			}
		}
	}

	if len(p.Dominant) == 0 && len(sorted) > 0 {
		p.Dominant = append(p.Dominant, sorted[0])
	}
	if len(p.Secondary) == 0 && len(sorted) > 1 {
		p.Secondary = append(p.Secondary, sorted[1])
	}
	if len(p.Accent) == 0 && len(sorted) > 2 {
		p.Accent = append(p.Accent, sorted[2])
	}

	if len(p.Dominant) == 0 {
		p.Dominant = []ColorRecord{DefaultRecord(DefaultDominantHex, 0.3)}
	}
	if len(p.Secondary) == 0 {
		p.Secondary = []ColorRecord{DefaultRecord(DefaultSecondaryHex, 0.2)}
	}
	if len(p.Accent) == 0 {
		p.Accent = []ColorRecord{DefaultRecord(DefaultAccentHex, 0.1)}
	}
	return p
}

// DefaultPalette is the palette used when no colour evidence exists.
// Only dominant is populated.
func DefaultPalette() *Palette {
	def := DefaultRecord(DefaultDominantHex, 1)
	return &Palette{
		Dominant:  []ColorRecord{def},
		Secondary: []ColorRecord{},
		Accent:    []ColorRecord{},
		All:       []ColorRecord{def},
	}
}

func window(records []ColorRecord, from, to int) []ColorRecord {
	if from >= len(records) {
		return []ColorRecord{}
	}
	to = min(to, len(records))
	out := make([]ColorRecord, to-from)
	copy(out, records[from:to])
	return out
}

var defaultRecords = map[string]ColorRecord{
	DefaultDominantHex:  {Hex: DefaultDominantHex, RGB: [3]int{99, 102, 241}, HSL: [3]int{238, 84, 67}},
	DefaultSecondaryHex: {Hex: DefaultSecondaryHex, RGB: [3]int{139, 92, 246}, HSL: [3]int{258, 90, 66}},
	DefaultAccentHex:    {Hex: DefaultAccentHex, RGB: [3]int{6, 182, 212}, HSL: [3]int{189, 94, 43}},
}

// DefaultRecord returns one of the built-in default colours with the given frequency.
func DefaultRecord(hex string, frequency float64) ColorRecord {
	rec, ok := defaultRecords[hex]
	if !ok {
		return mustHex(hex, frequency)
	}
	rec.Frequency = frequency
	return rec
}

func mustHex(hex string, frequency float64) ColorRecord {
	rec, err := RecordFromHex(hex, frequency)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in colour %s: %v", hex, err))
	}
	return rec
}

// SortedByFrequency returns a copy of records ranked by frequency, highest first.
func SortedByFrequency(records []ColorRecord) []ColorRecord {
	out := make([]ColorRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	return out
}
