package extraction

import (
	"context"
	"sync"
	"testing"

	"github.com/jmylchreest/palettesniffer/internal/colour"
	"github.com/jmylchreest/palettesniffer/internal/image"
)

// fixedClusterer puts every sample but one in a red cluster and the last in a
// blue one, recording the k it was asked for.
type fixedClusterer struct {
	mu sync.Mutex
	ks []int
}

func (f *fixedClusterer) Cluster(samples []colour.Sample, k int) []colour.Cluster {
	f.mu.Lock()
	f.ks = append(f.ks, k)
	f.mu.Unlock()
	return []colour.Cluster{
		{Centroid: [3]float64{255, 0, 0}, Size: len(samples) - 1},
		{Centroid: [3]float64{0, 0, 255}, Size: 1},
	}
}

func (f *fixedClusterer) lastK() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ks[len(f.ks)-1]
}

func TestAnalyzerSynchronousOnly(t *testing.T) {
	a := NewAnalyzer(nil, seededClusterer, DefaultOptions(), nil)
	px := &image.Pixels{Buf: solidBuffer(8, 8, 0, 255, 0), Width: 8, Height: 8}

	p, err := a.ExtractImage(context.Background(), px)
	if err != nil {
		t.Fatalf("ExtractImage() error = %v", err)
	}
	if len(p.Dominant) != 1 || p.Dominant[0].Hex != "#00ff00" {
		t.Errorf("Dominant = %+v, want #00ff00", p.Dominant)
	}
	if len(p.All) != 1 {
		t.Errorf("All = %+v, want one record", p.All)
	}
}

func TestAnalyzerUsesChannel(t *testing.T) {
	var calls int
	var mu sync.Mutex
	ch := NewChannel(ChannelOptions{Workers: 1, Compute: func(req Request) ([]colour.ColorRecord, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return DefaultCompute(seededClusterer)(req)
	}})
	defer ch.Close()

	a := NewAnalyzer(ch, seededClusterer, DefaultOptions(), nil)
	px := &image.Pixels{Buf: solidBuffer(4, 4, 10, 20, 30), Width: 4, Height: 4}

	p, err := a.ExtractImage(context.Background(), px)
	if err != nil {
		t.Fatalf("ExtractImage() error = %v", err)
	}
	if p.Dominant[0].Hex != "#0a141e" {
		t.Errorf("Dominant[0] = %s, want #0a141e", p.Dominant[0].Hex)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("worker calls = %d, want 1", calls)
	}
}

func TestAnalyzerFallback(t *testing.T) {
	// 800 pixels at stride 4 give 200 samples: the single blue sample has
	// frequency 0.005, above the primary floor and below the simplified one.
	px := &image.Pixels{Buf: solidBuffer(40, 20, 255, 0, 0), Width: 40, Height: 20}

	tests := []struct {
		name      string
		extract   func(*Analyzer) (*colour.Palette, error)
		wantK     int
		wantCount int
	}{
		{
			name: "image uses primary path",
			extract: func(a *Analyzer) (*colour.Palette, error) {
				return a.ExtractImage(context.Background(), px)
			},
			wantK:     32,
			wantCount: 2,
		},
		{
			name: "blob uses simplified path",
			extract: func(a *Analyzer) (*colour.Palette, error) {
				return a.ExtractBlob(context.Background(), px)
			},
			wantK:     8,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fixedClusterer{}
			// No compute function, so the worker can never be built.
			ch := NewChannel(ChannelOptions{Workers: 1})
			a := NewAnalyzer(ch, func() colour.Clusterer { return fc }, DefaultOptions(), nil)

			p, err := tt.extract(a)
			if err != nil {
				t.Fatalf("extract error = %v", err)
			}
			if got := fc.lastK(); got != tt.wantK {
				t.Errorf("k = %d, want %d", got, tt.wantK)
			}
			if len(p.All) != tt.wantCount {
				t.Errorf("len(All) = %d, want %d", len(p.All), tt.wantCount)
			}
			if p.Dominant[0].Hex != "#ff0000" {
				t.Errorf("Dominant[0] = %s, want #ff0000", p.Dominant[0].Hex)
			}
		})
	}
}

func TestAnalyzerCancelledContext(t *testing.T) {
	ch := NewChannel(ChannelOptions{Workers: 1, Compute: DefaultCompute(seededClusterer)})
	defer ch.Close()
	a := NewAnalyzer(ch, seededClusterer, DefaultOptions(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ExtractImage(ctx, &image.Pixels{Buf: solidBuffer(2, 2, 0, 0, 0), Width: 2, Height: 2})
	if err == nil {
		t.Fatal("ExtractImage() with cancelled context succeeded")
	}
}

func TestAnalyzerNilPixels(t *testing.T) {
	a := NewAnalyzer(nil, nil, DefaultOptions(), nil)
	if _, err := a.ExtractImage(context.Background(), nil); err == nil {
		t.Error("ExtractImage(nil) succeeded")
	}
}
