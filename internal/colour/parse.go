package colour

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	hexPattern   = regexp.MustCompile(`#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})\b`)
	rgbPattern   = regexp.MustCompile(`rgb\s*\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)`)
	rgbaPattern  = regexp.MustCompile(`rgba\s*\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*,\s*[\d.]+\s*\)`)
	hslPattern   = regexp.MustCompile(`hsl\s*\(\s*(\d+)\s*,\s*(\d+)%\s*,\s*(\d+)%\s*\)`)
	hslaPattern  = regexp.MustCompile(`hsla\s*\(\s*(\d+)\s*,\s*(\d+)%\s*,\s*(\d+)%\s*,\s*[\d.]+\s*\)`)
	namedPattern = regexp.MustCompile(`(?i)\b(aqua|black|blue|fuchsia|gray|green|lime|maroon|navy|olive|purple|red|silver|teal|white|yellow|orange|pink|brown|violet|indigo|magenta|cyan|transparent)\b`)

	// CustomPropertyPattern matches a CSS custom property declaration and captures its value.
	CustomPropertyPattern = regexp.MustCompile(`--[\w-]+:\s*([#\w\(\),\s%]+);`)

	strictHexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	rgbValuePattern  = regexp.MustCompile(`rgb\((\d+),\s*(\d+),\s*(\d+)\)`)
	rgbaValuePattern = regexp.MustCompile(`rgba\((\d+),\s*(\d+),\s*(\d+),\s*[\d.]+\)`)
)

// ParseStyleColours finds every colour literal in a CSS or inline style string
// and adds one occurrence of each to the tally.
func ParseStyleColours(text string, t *Tally) {
	if text == "" {
		return
	}

	for _, m := range hexPattern.FindAllStringSubmatch(text, -1) {
		hex := m[1]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		t.Add("#"+strings.ToLower(hex), 1)
	}

	for _, re := range []*regexp.Regexp{rgbPattern, rgbaPattern} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			t.Add(rgbHex(atoi(m[1]), atoi(m[2]), atoi(m[3])), 1)
		}
	}

	for _, re := range []*regexp.Regexp{hslPattern, hslaPattern} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			t.Add(HSLToRGB(float64(atoi(m[1])), float64(atoi(m[2])), float64(atoi(m[3]))).Hex(), 1)
		}
	}

	for _, m := range namedPattern.FindAllStringSubmatch(text, -1) {
		if hex, ok := NamedColourHex(m[1]); ok {
			t.Add(hex, 1)
		}
	}
}

// AddColourValue adds a single attribute value such as a meta theme-color
// with the given weight. rgb() and hsl() are converted; anything that does
// not end up as a six digit hex is ignored.
func AddColourValue(value string, t *Tally, weight float64) {
	value = strings.TrimSpace(value)
	hex := value
	switch {
	case strings.HasPrefix(value, "rgb"):
		if r, g, b, ok := parseRGBValue(value); ok {
			hex = rgbHex(r, g, b)
		}
	case strings.HasPrefix(value, "hsl"):
		if m := hslPattern.FindStringSubmatch(value); m != nil {
			hex = HSLToRGB(float64(atoi(m[1])), float64(atoi(m[2])), float64(atoi(m[3]))).Hex()
		}
	}
	if strictHexPattern.MatchString(hex) {
		t.Add(strings.ToLower(hex), weight)
	}
}

// IsColourLiteral reports whether value looks like a hex, rgb or hsl colour.
func IsColourLiteral(value string) bool {
	return strings.HasPrefix(value, "#") || strings.HasPrefix(value, "rgb") || strings.HasPrefix(value, "hsl")
}

// NamedColourHex resolves a CSS colour keyword.
func NamedColourHex(name string) (string, bool) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return RGB{R: c.R, G: c.G, B: c.B}.Hex(), true
}

// HSLToRGB converts hue in degrees and saturation/lightness in percent to RGB.
// Hue wraps; saturation and lightness are clamped to [0,100].
func HSLToRGB(h, s, l float64) RGB {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	s = math.Max(0, math.Min(100, s)) / 100
	l = math.Max(0, math.Min(100, l)) / 100
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

func parseRGBValue(value string) (r, g, b int, ok bool) {
	for _, re := range []*regexp.Regexp{rgbValuePattern, rgbaValuePattern} {
		if m := re.FindStringSubmatch(value); m != nil {
			return atoi(m[1]), atoi(m[2]), atoi(m[3]), true
		}
	}
	return 0, 0, 0, false
}

func rgbHex(r, g, b int) string {
	return RGB{R: clampByte(r), G: clampByte(g), B: clampByte(b)}.Hex()
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
