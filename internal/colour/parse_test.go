package colour

import "testing"

func TestParseStyleColours(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  map[string]float64
	}{
		{
			name:  "hex six and three",
			style: "color: #FF8800; background: #abc;",
			want:  map[string]float64{"#ff8800": 1, "#aabbcc": 1},
		},
		{
			name:  "rgb and rgba",
			style: "color: rgb(255, 0, 0); border-color: rgba(0, 0, 255, 0.5)",
			want:  map[string]float64{"#ff0000": 1, "#0000ff": 1},
		},
		{
			name:  "hsl",
			style: "color: hsl(120, 100%, 50%); fill: hsla(240, 100%, 50%, 0.2)",
			want:  map[string]float64{"#00ff00": 1, "#0000ff": 1},
		},
		{
			name:  "named colours",
			style: "color: Red; background: navy; border: transparent",
			want:  map[string]float64{"#ff0000": 1, "#000080": 1},
		},
		{
			name:  "repeats accumulate",
			style: "a{color:#111111} b{color:#111111}",
			want:  map[string]float64{"#111111": 2},
		},
		{
			name:  "out of range rgb is clamped",
			style: "color: rgb(300, 0, 0)",
			want:  map[string]float64{"#ff0000": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := NewTally()
			ParseStyleColours(tt.style, tally)
			if tally.Len() != len(tt.want) {
				t.Errorf("tally has %d colours, want %d", tally.Len(), len(tt.want))
			}
			for hex, count := range tt.want {
				if got := tally.Count(hex); got != count {
					t.Errorf("Count(%s) = %v, want %v", hex, got, count)
				}
			}
		})
	}
}

func TestAddColourValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "hex", value: "#3366CC", want: "#3366cc"},
		{name: "rgb", value: "rgb(51, 102, 204)", want: "#3366cc"},
		{name: "hsl", value: "hsl(0, 100%, 50%)", want: "#ff0000"},
		{name: "short hex ignored", value: "#36c"},
		{name: "keyword ignored", value: "red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := NewTally()
			AddColourValue(tt.value, tally, 8)
			if tt.want == "" {
				if tally.Len() != 0 {
					t.Errorf("tally has %d colours, want none", tally.Len())
				}
				return
			}
			if got := tally.Count(tt.want); got != 8 {
				t.Errorf("Count(%s) = %v, want 8", tt.want, got)
			}
		})
	}
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		h, s, l float64
		want    string
	}{
		{0, 100, 50, "#ff0000"},
		{120, 100, 50, "#00ff00"},
		{240, 100, 50, "#0000ff"},
		{0, 0, 100, "#ffffff"},
		{0, 0, 0, "#000000"},
		{360, 100, 50, "#ff0000"},
	}
	for _, tt := range tests {
		if got := HSLToRGB(tt.h, tt.s, tt.l).Hex(); got != tt.want {
			t.Errorf("HSLToRGB(%v, %v, %v) = %s, want %s", tt.h, tt.s, tt.l, got, tt.want)
		}
	}
}

func TestHSLOf(t *testing.T) {
	tests := []struct {
		rgb  RGB
		want [3]int
	}{
		{RGB{R: 255}, [3]int{0, 100, 50}},
		{RGB{G: 255}, [3]int{120, 100, 50}},
		{RGB{R: 128, G: 128, B: 128}, [3]int{0, 0, 50}},
		{RGB{R: 255, G: 255, B: 255}, [3]int{0, 0, 100}},
	}
	for _, tt := range tests {
		if got := HSLOf(tt.rgb); got != tt.want {
			t.Errorf("HSLOf(%v) = %v, want %v", tt.rgb, got, tt.want)
		}
	}
}

func TestParseHex(t *testing.T) {
	rgb, err := ParseHex("#1A2b3C")
	if err != nil {
		t.Fatalf("ParseHex() error = %v", err)
	}
	if rgb != (RGB{R: 0x1a, G: 0x2b, B: 0x3c}) {
		t.Errorf("ParseHex() = %+v", rgb)
	}
	if _, err := ParseHex("#12"); err == nil {
		t.Error("ParseHex(#12) succeeded, want error")
	}
}
