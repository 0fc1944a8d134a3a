package colour

import "testing"

// rgbaBuffer builds a buffer of n identical pixels.
func rgbaBuffer(n int, r, g, b, a uint8) []byte {
	buf := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		buf = append(buf, r, g, b, a)
	}
	return buf
}

func TestSamplePixels(t *testing.T) {
	tests := []struct {
		name     string
		buf      []byte
		stride   int
		alphaMin int
		want     int
	}{
		{
			name:     "every pixel",
			buf:      rgbaBuffer(10, 1, 2, 3, 255),
			stride:   1,
			alphaMin: 128,
			want:     10,
		},
		{
			name:     "stride skips pixels",
			buf:      rgbaBuffer(10, 1, 2, 3, 255),
			stride:   4,
			alphaMin: 128,
			want:     3, // pixels 0, 4, 8
		},
		{
			name:     "alpha equal to threshold is skipped",
			buf:      rgbaBuffer(10, 1, 2, 3, 128),
			stride:   1,
			alphaMin: 128,
			want:     0,
		},
		{
			name:     "zero stride treated as one",
			buf:      rgbaBuffer(5, 1, 2, 3, 200),
			stride:   0,
			alphaMin: 128,
			want:     5,
		},
		{
			name:     "empty buffer",
			buf:      nil,
			stride:   16,
			alphaMin: 128,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SamplePixels(tt.buf, tt.stride, tt.alphaMin)
			if got == nil {
				t.Fatal("SamplePixels() returned nil, want empty slice")
			}
			if len(got) != tt.want {
				t.Errorf("SamplePixels() returned %d samples, want %d", len(got), tt.want)
			}
		})
	}
}

// TestSamplePixelsNeverKeepsTransparent checks that mixed-alpha buffers only yield opaque pixels.
func TestSamplePixelsNeverKeepsTransparent(t *testing.T) {
	var buf []byte
	for i := 0; i < 64; i++ {
		alpha := uint8(i * 4)
		// Encode the alpha in the red channel so the sample can be traced back.
		buf = append(buf, alpha, 0, 0, alpha)
	}

	for _, stride := range []int{1, 2, 3, 16} {
		for _, s := range SamplePixels(buf, stride, 128) {
			if s.R <= 128 {
				t.Errorf("stride %d: sampled pixel with alpha %d", stride, s.R)
			}
		}
	}
}
