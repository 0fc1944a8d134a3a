package colour

import (
	"fmt"
	"strings"
)

// MaxCategorySize caps each category of a sanitised palette.
const MaxCategorySize = 5

// ValidateRecord checks hex format and channel ranges.
func ValidateRecord(c ColorRecord) error {
	if !strictHexPattern.MatchString(c.Hex) {
		return fmt.Errorf("invalid hex %q", c.Hex)
	}
	for i, v := range c.RGB {
		if v < 0 || v > 255 {
			return fmt.Errorf("rgb channel %d out of range: %d", i, v)
		}
	}
	if c.HSL[0] < 0 || c.HSL[0] > 360 {
		return fmt.Errorf("hue out of range: %d", c.HSL[0])
	}
	if c.HSL[1] < 0 || c.HSL[1] > 100 {
		return fmt.Errorf("saturation out of range: %d", c.HSL[1])
	}
	if c.HSL[2] < 0 || c.HSL[2] > 100 {
		return fmt.Errorf("lightness out of range: %d", c.HSL[2])
	}
	return nil
}

// sanitiseRecord lowercases hex and pins frequency to [0.01, 1]; a
// non-positive frequency becomes 0.3 first.
func sanitiseRecord(c ColorRecord) ColorRecord {
	c.Hex = strings.ToLower(c.Hex)
	if c.Frequency <= 0 {
		c.Frequency = 0.3
	}
	c.Frequency = max(0.01, min(1, c.Frequency))
	return c
}

// Sanitise validates a palette produced outside the clustering pipeline.
// Invalid records are dropped and each category is capped. A nil palette is
// rejected; otherwise the result always has a non-empty dominant category.
func Sanitise(p *Palette) (*Palette, bool) {
	if p == nil {
		return nil, false
	}

	clean := func(records []ColorRecord) []ColorRecord {
		out := make([]ColorRecord, 0, min(len(records), MaxCategorySize))
		for _, r := range records {
			if len(out) == MaxCategorySize {
				break
			}
			if ValidateRecord(r) != nil {
				continue
			}
			out = append(out, sanitiseRecord(r))
		}
		return out
	}

	out := &Palette{
		Dominant:  clean(p.Dominant),
		Secondary: clean(p.Secondary),
		Accent:    clean(p.Accent),
		All:       p.All,
	}
	if len(out.Dominant) == 0 {
		out.Dominant = []ColorRecord{DefaultRecord(DefaultDominantHex, 1)}
	}
	return out, true
}
