// Package colour provides pixel sampling, clustering and palette building for palettesniffer.
package colour

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorRecord is a single palette entry.
type ColorRecord struct {
	Hex       string  `json:"hex"`
	RGB       [3]int  `json:"rgb"`
	HSL       [3]int  `json:"hsl"`
	Frequency float64 `json:"frequency"`
}

// RGB represents a colour in 8-bit RGB.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a lowercase hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// NewColorRecord builds a record from 8-bit channels, deriving hex and HSL.
func NewColorRecord(r, g, b int, frequency float64) ColorRecord {
	rgb := RGB{R: clampByte(r), G: clampByte(g), B: clampByte(b)}
	return ColorRecord{
		Hex:       rgb.Hex(),
		RGB:       [3]int{int(rgb.R), int(rgb.G), int(rgb.B)},
		HSL:       HSLOf(rgb),
		Frequency: frequency,
	}
}

// RecordFromHSL builds a record from hue [0,360), saturation and lightness in percent.
func RecordFromHSL(h, s, l float64, frequency float64) ColorRecord {
	rgb := HSLToRGB(h, s, l)
	rec := NewColorRecord(int(rgb.R), int(rgb.G), int(rgb.B), frequency)
	rec.HSL = [3]int{int(math.Round(h)), int(math.Round(s)), int(math.Round(l))}
	return rec
}

// ToRGB returns the record's channels as an RGB value.
func (c ColorRecord) ToRGB() RGB {
	return RGB{R: clampByte(c.RGB[0]), G: clampByte(c.RGB[1]), B: clampByte(c.RGB[2])}
}

// HSLOf converts an RGB colour to rounded [hue 0-360, saturation 0-100, lightness 0-100].
func HSLOf(rgb RGB) [3]int {
	c := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
	h, s, l := c.Hsl()
	return [3]int{int(math.Round(h)), int(math.Round(s * 100)), int(math.Round(l * 100))}
}

// ParseHex parses a "#rrggbb" or "#rgb" string.
func ParseHex(hex string) (RGB, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", hex, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// RecordFromHex builds a record from a hex string.
func RecordFromHex(hex string, frequency float64) (ColorRecord, error) {
	rgb, err := ParseHex(hex)
	if err != nil {
		return ColorRecord{}, err
	}
	return NewColorRecord(int(rgb.R), int(rgb.G), int(rgb.B), frequency), nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
