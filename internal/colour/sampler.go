package colour

const (
	// DefaultSampleStep is the pixel stride used by the offloaded extractor.
	DefaultSampleStep = 16

	// DefaultAlphaThreshold is the alpha a pixel must exceed to be sampled.
	DefaultAlphaThreshold = 128
)

// Sample is an opaque RGB pixel taken from a buffer.
type Sample struct {
	R, G, B uint8
}

// SamplePixels walks an RGBA buffer visiting every stride-th pixel and keeps
// the ones whose alpha is above alphaMin. A stride below 1 is treated as 1.
// The result is empty, never nil-with-error, when no pixel qualifies.
func SamplePixels(buf []byte, stride, alphaMin int) []Sample {
	if stride < 1 {
		stride = 1
	}
	step := 4 * stride
	samples := make([]Sample, 0, len(buf)/step+1)
	for i := 0; i+3 < len(buf); i += step {
		if int(buf[i+3]) > alphaMin {
			samples = append(samples, Sample{R: buf[i], G: buf[i+1], B: buf[i+2]})
		}
	}
	return samples
}
