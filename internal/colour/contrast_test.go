package colour

import (
	"math"
	"testing"
)

func TestContrastRatio(t *testing.T) {
	got := ContrastRatio(RGB{}, RGB{R: 255, G: 255, B: 255})
	if math.Abs(got-21) > 0.01 {
		t.Errorf("ContrastRatio(black, white) = %f, want 21", got)
	}
	if got := ContrastRatio(RGB{R: 10}, RGB{R: 10}); got != 1 {
		t.Errorf("ContrastRatio(same) = %f, want 1", got)
	}
}

func TestAnalyse(t *testing.T) {
	tests := []struct {
		name string
		rec  ColorRecord
		want string
	}{
		{name: "black", rec: NewColorRecord(0, 0, 0, 1), want: WCAGLevelAAA},
		{name: "mid grey", rec: NewColorRecord(119, 119, 119, 1), want: WCAGLevelAA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Analyse(tt.rec).WCAGLevel; got != tt.want {
				t.Errorf("WCAGLevel = %s, want %s", got, tt.want)
			}
		})
	}
}
