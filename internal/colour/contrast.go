package colour

import "math"

// WCAG conformance levels.
const (
	WCAGLevelAAA  = "AAA"
	WCAGLevelAA   = "AA"
	WCAGLevelFail = "FAIL"
)

// Analysis describes how a record performs as a text or background colour.
type Analysis struct {
	ColorRecord
	ContrastWithWhite float64 `json:"contrastWithWhite"`
	ContrastWithBlack float64 `json:"contrastWithBlack"`
	WCAGLevel         string  `json:"wcagLevel"`
	IsLight           bool    `json:"isLight"`
	IsDark            bool    `json:"isDark"`
}

// Analyse computes contrast against white and black and the best WCAG level.
func Analyse(c ColorRecord) Analysis {
	rgb := c.ToRGB()
	white := ContrastRatio(rgb, RGB{R: 255, G: 255, B: 255})
	black := ContrastRatio(rgb, RGB{})
	return Analysis{
		ColorRecord:       c,
		ContrastWithWhite: white,
		ContrastWithBlack: black,
		WCAGLevel:         WCAGLevel(math.Max(white, black)),
		IsLight:           c.HSL[2] > 50,
		IsDark:            c.HSL[2] < 50,
	}
}

// WCAGLevel maps a contrast ratio to AAA (>= 7), AA (>= 4.5) or FAIL.
func WCAGLevel(ratio float64) string {
	switch {
	case ratio >= 7:
		return WCAGLevelAAA
	case ratio >= 4.5:
		return WCAGLevelAA
	default:
		return WCAGLevelFail
	}
}

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c RGB) float64 {
	return 0.2126*gammaCorrect(float64(c.R)/255.0) +
		0.7152*gammaCorrect(float64(c.G)/255.0) +
		0.0722*gammaCorrect(float64(c.B)/255.0)
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21.
func ContrastRatio(c1, c2 RGB) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}
