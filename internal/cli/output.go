package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

// Output formats accepted by --format.
const (
	formatHex         = "hex"
	formatRGB         = "rgb"
	formatJSON        = "json"
	formatCategorised = "categorised"
)

var validFormats = []string{formatHex, formatRGB, formatJSON, formatCategorised}

const swatchWidth = 8

// previewEnabled reports whether colour swatches should be drawn: they were
// requested and stdout is a terminal.
func previewEnabled(requested bool, outputFile string) bool {
	return requested && outputFile == "" && term.IsTerminal(int(os.Stdout.Fd()))
}

// formatPalette formats the palette according to the specified format.
func formatPalette(p *colour.Palette, format string, showPreview bool) (string, error) {
	switch format {
	case formatHex:
		return formatLines(p, showPreview, func(r colour.ColorRecord) string { return r.Hex }), nil
	case formatRGB:
		return formatLines(p, showPreview, func(r colour.ColorRecord) string { return r.ToRGB().String() }), nil
	case formatJSON:
		jsonBytes, err := p.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(jsonBytes) + "\n", nil
	case formatCategorised:
		return formatCategorisedPalette(p, showPreview), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(validFormats, ", "))
	}
}

// formatLines writes one record per line, dominant first.
func formatLines(p *colour.Palette, showPreview bool, text func(colour.ColorRecord) string) string {
	var b strings.Builder
	for _, r := range categorised(p) {
		if showPreview {
			b.WriteString(swatch(r.ToRGB()) + "  ")
		}
		b.WriteString(text(r))
		b.WriteString("\n")
	}
	return b.String()
}

// formatCategorisedPalette lists each role with frequency and contrast details.
func formatCategorisedPalette(p *colour.Palette, showPreview bool) string {
	var b strings.Builder
	for _, group := range []struct {
		name    string
		records []colour.ColorRecord
	}{
		{"Dominant", p.Dominant},
		{"Secondary", p.Secondary},
		{"Accent", p.Accent},
	} {
		fmt.Fprintf(&b, "%s:\n", group.name)
		if len(group.records) == 0 {
			b.WriteString("  (none)\n")
			continue
		}
		for _, r := range group.records {
			a := colour.Analyse(r)
			b.WriteString("  ")
			if showPreview {
				b.WriteString(swatch(r.ToRGB()) + "  ")
			}
			fmt.Fprintf(&b, "%s  %5.1f%%  hsl(%d, %d%%, %d%%)  white %.2f:1  black %.2f:1  %s\n",
				r.Hex, r.Frequency*100, r.HSL[0], r.HSL[1], r.HSL[2],
				a.ContrastWithWhite, a.ContrastWithBlack, a.WCAGLevel)
		}
	}
	return b.String()
}

// swatch renders a solid block in the given colour.
func swatch(rgb colour.RGB) string {
	c := color.BgRGB(int(rgb.R), int(rgb.G), int(rgb.B))
	c.EnableColor()
	return c.Sprint(strings.Repeat(" ", swatchWidth))
}

func categorised(p *colour.Palette) []colour.ColorRecord {
	out := make([]colour.ColorRecord, 0, p.Len())
	out = append(out, p.Dominant...)
	out = append(out, p.Secondary...)
	return append(out, p.Accent...)
}

// writeOutput writes to path, or stdout when path is empty.
func writeOutput(path, output string) error {
	if path == "" {
		fmt.Print(output)
		return nil
	}
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil { // #nosec G306 - palette output is not sensitive
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
