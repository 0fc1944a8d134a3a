package cli

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Table lays rows out in padded columns. Cells in a column with a width limit
// wrap at word boundaries; right-aligned columns suit numbers and durations.
type Table struct {
	headers    []string
	rows       [][]string
	padding    int
	maxWidths  map[int]int
	alignRight map[int]bool
}

// NewTable creates a table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:    headers,
		padding:    2,
		maxWidths:  make(map[int]int),
		alignRight: make(map[int]bool),
	}
}

// SetColumnMaxWidth wraps cells in column col that are wider than width.
func (t *Table) SetColumnMaxWidth(col, width int) {
	t.maxWidths[col] = width
}

// AlignRight right-aligns column col.
func (t *Table) AlignRight(col int) {
	t.alignRight[col] = true
}

// AddRow appends a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	normalised := make([]string, len(t.headers))
	copy(normalised, row)
	t.rows = append(t.rows, normalised)
}

// Render returns the table with a header, a dashed separator and the rows.
func (t *Table) Render() string {
	var b strings.Builder
	_, _ = t.WriteTo(&b)
	return b.String()
}

// WriteTo writes the rendered table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	if len(t.headers) == 0 {
		return 0, nil
	}

	// Each cell becomes one or more lines.
	cells := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		cells[r] = make([][]string, len(row))
		for c, cell := range row {
			cells[r][c] = wrapText(cell, t.maxWidths[c])
		}
	}

	widths := make([]int, len(t.headers))
	for c, h := range t.headers {
		widths[c] = width(h)
	}
	for _, row := range cells {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], width(line))
			}
		}
	}

	var b strings.Builder
	gap := strings.Repeat(" ", t.padding)
	writeLine := func(parts []string) {
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteString("\n")
	}

	parts := make([]string, len(t.headers))
	for c, h := range t.headers {
		parts[c] = t.pad(c, h, widths[c])
	}
	writeLine(parts)
	for c, w := range widths {
		parts[c] = strings.Repeat("-", w)
	}
	writeLine(parts)

	for _, row := range cells {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for l := 0; l < height; l++ {
			for c := range t.headers {
				text := ""
				if l < len(row[c]) {
					text = row[c][l]
				}
				parts[c] = t.pad(c, text, widths[c])
			}
			writeLine(parts)
		}
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func (t *Table) pad(col int, s string, w int) string {
	if t.alignRight[col] {
		return padLeft(s, w)
	}
	return padRight(s, w)
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}

// padRight pads s with spaces to w runes. Longer strings are returned unchanged.
func padRight(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := width(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}

// wrapText breaks text at word boundaries into lines of at most w runes.
// Words longer than w are split. w <= 0 disables wrapping.
func wrapText(text string, w int) []string {
	if w <= 0 || width(text) <= w {
		return []string{text}
	}

	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		for width(word) > w {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			runes := []rune(word)
			lines = append(lines, string(runes[:w]))
			word = string(runes[w:])
		}
		switch {
		case line == "":
			line = word
		case width(line)+1+width(word) <= w:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}
