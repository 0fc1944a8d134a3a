package colour

const (
	hexBlack = "#000000"
	hexWhite = "#ffffff"

	// monochromeShare is the share of the distinct colour count pure black
	// or white must exceed to be kept.
	monochromeShare = 0.1
)

// Tally counts colour occurrences by lowercase hex, remembering first-seen order.
type Tally struct {
	order  []string
	counts map[string]float64
}

// NewTally creates an empty Tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[string]float64)}
}

// Add increments hex by weight. Callers normalise hex to "#rrggbb" lowercase.
func (t *Tally) Add(hex string, weight float64) {
	if _, ok := t.counts[hex]; !ok {
		t.order = append(t.order, hex)
	}
	t.counts[hex] += weight
}

// Len returns the number of distinct colours.
func (t *Tally) Len() int {
	return len(t.order)
}

// Count returns the accumulated weight for hex.
func (t *Tally) Count(hex string) float64 {
	return t.counts[hex]
}

// Palette converts the tally into a threshold-categorised palette.
// Frequency is count divided by the number of distinct colours. Pure black
// and white are only kept when frequent, and are ranked after the rest
// when they tie. An empty tally yields DefaultPalette.
func (t *Tally) Palette() *Palette {
	if t.Len() == 0 {
		return DefaultPalette()
	}

	size := float64(t.Len())
	records := make([]ColorRecord, 0, t.Len())
	for _, hex := range t.order {
		count := t.counts[hex]
		if count <= 0 || hex == hexBlack || hex == hexWhite {
			continue
		}
		rec, err := RecordFromHex(hex, count/size)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	records = SortedByFrequency(records)

	for _, hex := range []string{hexWhite, hexBlack} {
		if count, ok := t.counts[hex]; ok && count > size*monochromeShare {
			records = append(records, mustHex(hex, count/size))
		}
	}

	return CategoriseThreshold(records)
}
