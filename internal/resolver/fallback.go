package resolver

import (
	"net/url"
	"strings"
	"unicode/utf16"

	"golang.org/x/net/idna"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

type paletteTemplate struct {
	dominant, secondary, accent []colour.ColorRecord
}

func (t paletteTemplate) palette() *colour.Palette {
	return &colour.Palette{
		Dominant:  append([]colour.ColorRecord(nil), t.dominant...),
		Secondary: append([]colour.ColorRecord(nil), t.secondary...),
		Accent:    append([]colour.ColorRecord(nil), t.accent...),
	}
}

func rec(hex string, r, g, b, h, s, l int, freq float64) colour.ColorRecord {
	return colour.ColorRecord{Hex: hex, RGB: [3]int{r, g, b}, HSL: [3]int{h, s, l}, Frequency: freq}
}

func white(freq float64) colour.ColorRecord { return rec("#ffffff", 255, 255, 255, 0, 0, 100, freq) }

// brands are matched by substring against the hostname, in order.
var brands = []struct {
	name     string
	template paletteTemplate
}{
	{"github", paletteTemplate{
		[]colour.ColorRecord{rec("#24292e", 36, 41, 46, 210, 13, 16, 0.4)},
		[]colour.ColorRecord{rec("#f6f8fa", 246, 248, 250, 210, 14, 97, 0.3)},
		[]colour.ColorRecord{rec("#0366d6", 3, 102, 214, 212, 97, 43, 0.2)},
	}},
	{"twitter", paletteTemplate{
		[]colour.ColorRecord{rec("#1da1f2", 29, 161, 242, 203, 89, 53, 0.4)},
		[]colour.ColorRecord{white(0.3)},
		[]colour.ColorRecord{rec("#14171a", 20, 23, 26, 210, 13, 9, 0.2)},
	}},
	{"facebook", paletteTemplate{
		[]colour.ColorRecord{rec("#1877f2", 24, 119, 242, 214, 89, 52, 0.4)},
		[]colour.ColorRecord{white(0.3)},
		[]colour.ColorRecord{rec("#42a5f5", 66, 165, 245, 207, 90, 61, 0.2)},
	}},
	{"linkedin", paletteTemplate{
		[]colour.ColorRecord{rec("#0077b5", 0, 119, 181, 201, 100, 35, 0.4)},
		[]colour.ColorRecord{white(0.3)},
		[]colour.ColorRecord{rec("#00a0dc", 0, 160, 220, 199, 100, 43, 0.2)},
	}},
	{"instagram", paletteTemplate{
		[]colour.ColorRecord{rec("#e4405f", 228, 64, 95, 348, 72, 57, 0.4)},
		[]colour.ColorRecord{white(0.3)},
		[]colour.ColorRecord{rec("#833ab4", 131, 58, 180, 280, 51, 47, 0.2)},
	}},
	{"youtube", paletteTemplate{
		[]colour.ColorRecord{rec("#ff0000", 255, 0, 0, 0, 100, 50, 0.4)},
		[]colour.ColorRecord{white(0.3)},
		[]colour.ColorRecord{rec("#282828", 40, 40, 40, 0, 0, 16, 0.2)},
	}},
	{"netflix", paletteTemplate{
		[]colour.ColorRecord{rec("#e50914", 229, 9, 20, 357, 92, 47, 0.4)},
		[]colour.ColorRecord{rec("#000000", 0, 0, 0, 0, 0, 0, 0.3)},
		[]colour.ColorRecord{white(0.2)},
	}},
}

// industries are matched when the hostname contains the industry name or any
// of its keywords, in order.
var industries = []struct {
	name     string
	keywords []string
	template paletteTemplate
}{
	{"tech", []string{"tech", "software", "app", "api", "dev", "code", "programming", "digital", "web", "online"}, paletteTemplate{
		[]colour.ColorRecord{rec("#2563eb", 37, 99, 235, 217, 91, 53, 0.4), rec("#1e40af", 30, 64, 175, 217, 91, 40, 0.3)},
		[]colour.ColorRecord{rec("#64748b", 100, 116, 139, 215, 16, 47, 0.25), rec("#f1f5f9", 241, 245, 249, 210, 20, 96, 0.2)},
		[]colour.ColorRecord{rec("#06b6d4", 6, 182, 212, 189, 94, 43, 0.15), rec("#8b5cf6", 139, 92, 246, 258, 90, 66, 0.1)},
	}},
	{"bank", []string{"bank", "finance", "credit", "loan", "money", "pay", "cash", "financial", "investment"}, paletteTemplate{
		[]colour.ColorRecord{rec("#059669", 5, 150, 105, 160, 84, 30, 0.4), rec("#047857", 4, 120, 87, 160, 84, 24, 0.3)},
		[]colour.ColorRecord{rec("#374151", 55, 65, 81, 220, 13, 27, 0.25), rec("#f9fafb", 249, 250, 251, 220, 14, 98, 0.2)},
		[]colour.ColorRecord{rec("#f59e0b", 245, 158, 11, 38, 92, 50, 0.15), rec("#dc2626", 220, 38, 38, 0, 84, 51, 0.1)},
	}},
	{"health", []string{"health", "medical", "doctor", "hospital", "clinic", "pharmacy", "care", "wellness", "therapy"}, paletteTemplate{
		[]colour.ColorRecord{rec("#0891b2", 8, 145, 178, 191, 91, 36, 0.4), rec("#0e7490", 14, 116, 144, 191, 91, 31, 0.3)},
		[]colour.ColorRecord{rec("#6b7280", 107, 114, 128, 220, 9, 46, 0.25), rec("#f8fafc", 248, 250, 252, 210, 20, 98, 0.2)},
		[]colour.ColorRecord{rec("#10b981", 16, 185, 129, 160, 84, 39, 0.15), rec("#ef4444", 239, 68, 68, 0, 84, 60, 0.1)},
	}},
	{"edu", []string{"edu", "school", "university", "college", "learn", "education", "course", "training", "academy"}, paletteTemplate{
		[]colour.ColorRecord{rec("#7c3aed", 124, 58, 237, 262, 83, 58, 0.4), rec("#6d28d9", 109, 40, 217, 262, 83, 50, 0.3)},
		[]colour.ColorRecord{rec("#4b5563", 75, 85, 99, 220, 13, 34, 0.25), rec("#fafafa", 250, 250, 250, 0, 0, 98, 0.2)},
		[]colour.ColorRecord{rec("#f97316", 249, 115, 22, 25, 95, 53, 0.15), rec("#06b6d4", 6, 182, 212, 189, 94, 43, 0.1)},
	}},
	{"shop", []string{"shop", "store", "buy", "sell", "market", "mall", "retail", "commerce", "ecommerce"}, paletteTemplate{
		[]colour.ColorRecord{rec("#dc2626", 220, 38, 38, 0, 84, 51, 0.4), rec("#b91c1c", 185, 28, 28, 0, 84, 42, 0.3)},
		[]colour.ColorRecord{rec("#374151", 55, 65, 81, 220, 13, 27, 0.25), white(0.2)},
		[]colour.ColorRecord{rec("#059669", 5, 150, 105, 160, 84, 30, 0.15), rec("#f59e0b", 245, 158, 11, 38, 92, 50, 0.1)},
	}},
	{"design", []string{"design", "creative", "art", "studio", "agency", "brand", "marketing", "advertising"}, paletteTemplate{
		[]colour.ColorRecord{rec("#8b5cf6", 139, 92, 246, 258, 90, 66, 0.4), rec("#7c3aed", 124, 58, 237, 262, 83, 58, 0.3)},
		[]colour.ColorRecord{rec("#64748b", 100, 116, 139, 215, 16, 47, 0.25), rec("#f8fafc", 248, 250, 252, 210, 20, 98, 0.2)},
		[]colour.ColorRecord{rec("#f97316", 249, 115, 22, 25, 95, 53, 0.15), rec("#10b981", 16, 185, 129, 160, 84, 39, 0.1)},
	}},
}

// BrandPalette returns the known palette for a well-known site.
func BrandPalette(host string) (*colour.Palette, bool) {
	for _, b := range brands {
		if strings.Contains(host, b.name) {
			return b.template.palette(), true
		}
	}
	return nil, false
}

// IndustryPalette returns a palette typical of the industry the hostname
// suggests.
func IndustryPalette(host string) (*colour.Palette, bool) {
	lower := strings.ToLower(host)
	for _, ind := range industries {
		if strings.Contains(host, ind.name) {
			return ind.template.palette(), true
		}
		for _, kw := range ind.keywords {
			if strings.Contains(lower, kw) {
				return ind.template.palette(), true
			}
		}
	}
	return nil, false
}

// GenerateFallbackPalette derives a palette from the URL alone: a known brand,
// then an industry guess, then colours generated from a hash of the host and
// path. The same URL always yields the same palette.
func GenerateFallbackPalette(rawURL string) *colour.Palette {
	host, path := rawURL, ""
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host, path = asciiHost(u.Hostname()), u.EscapedPath()
		if path == "" {
			path = "/"
		}
	}
	if p, ok := BrandPalette(host); ok {
		return p
	}
	if p, ok := IndustryPalette(host); ok {
		return p
	}
	return hashPalette(host, simpleHash(host+path))
}

// asciiHost returns the punycode form of an internationalised host name.
func asciiHost(host string) string {
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

func hashPalette(host string, hash int64) *colour.Palette {
	h := float64(hash % 360)
	s := float64(65 + utf16Len(host)%20)
	l := float64(45 + hash%25)

	hue := func(offset float64) float64 {
		return float64(int(h+offset) % 360)
	}

	return &colour.Palette{
		Dominant: []colour.ColorRecord{
			colour.RecordFromHSL(h, s, l, 0.5),
			colour.RecordFromHSL(h, s-10, l-10, 0.3),
		},
		Secondary: []colour.ColorRecord{
			colour.RecordFromHSL(hue(30), s-20, l+15, 0.2),
			colour.RecordFromHSL(hue(60), s-15, l+20, 0.15),
		},
		Accent: []colour.ColorRecord{
			colour.RecordFromHSL(hue(180), s+15, l-5, 0.1),
			colour.RecordFromHSL(hue(120), s+10, l+10, 0.08),
		},
	}
}

// simpleHash is the 31-multiplier string hash over UTF-16 code units with
// 32-bit wraparound, made non-negative.
func simpleHash(s string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

func utf16Len(s string) int64 {
	return int64(len(utf16.Encode([]rune(s))))
}
