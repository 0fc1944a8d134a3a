package extraction

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

func solidBuffer(w, h int, r, g, b uint8) []byte {
	buf := make([]byte, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = r, g, b, 255
	}
	return buf
}

func seededClusterer() colour.Clusterer {
	return colour.NewKMeansClusterer(rand.New(rand.NewSource(1)))
}

// tagCompute returns a single record whose red channel is the request's K.
func tagCompute(req Request) ([]colour.ColorRecord, error) {
	return []colour.ColorRecord{colour.NewColorRecord(req.K, 0, 0, 1)}, nil
}

func TestChannelAnalyze(t *testing.T) {
	ch := NewChannel(ChannelOptions{Workers: 1, Compute: DefaultCompute(seededClusterer)})
	defer ch.Close()

	colors, err := ch.Analyze(context.Background(), Request{
		Width: 4, Height: 4, Buffer: solidBuffer(4, 4, 255, 0, 0),
		K: 4, AlphaThreshold: 128, SampleStep: 1,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(colors) != 1 || colors[0].Hex != "#ff0000" {
		t.Fatalf("Analyze() = %+v, want single #ff0000", colors)
	}
	if colors[0].Frequency != 1 {
		t.Errorf("frequency = %v, want 1", colors[0].Frequency)
	}
	if n := ch.Pending(); n != 0 {
		t.Errorf("Pending() = %d, want 0", n)
	}
}

func TestChannelOutOfOrderResponses(t *testing.T) {
	gates := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	started := make(chan int, 2)

	ch := NewChannel(ChannelOptions{Workers: 2, Compute: func(req Request) ([]colour.ColorRecord, error) {
		started <- req.K
		<-gates[req.K]
		return tagCompute(req)
	}})
	defer ch.Close()

	type outcome struct {
		k      int
		colors []colour.ColorRecord
		err    error
	}
	results := make(chan outcome, 2)
	for _, k := range []int{1, 2} {
		go func(k int) {
			colors, err := ch.Analyze(context.Background(), Request{K: k})
			results <- outcome{k, colors, err}
		}(k)
	}
	<-started
	<-started

	// Finish the second request first.
	close(gates[2])
	first := <-results
	close(gates[1])
	second := <-results

	for _, o := range []outcome{first, second} {
		if o.err != nil {
			t.Fatalf("Analyze(K=%d) error = %v", o.k, o.err)
		}
		if len(o.colors) != 1 || o.colors[0].RGB[0] != o.k {
			t.Errorf("Analyze(K=%d) got %+v, want record tagged %d", o.k, o.colors, o.k)
		}
	}
	if first.k != 2 {
		t.Errorf("first completed request = %d, want 2", first.k)
	}
}

func TestChannelFatalErrorRejectsAllPending(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	defer close(release)

	ch := NewChannel(ChannelOptions{Workers: 2, Compute: func(req Request) ([]colour.ColorRecord, error) {
		switch req.K {
		case 1:
			started <- struct{}{}
			<-release
		case 2:
			panic("boom")
		}
		return tagCompute(req)
	}})
	defer ch.Close()

	var starts int
	var mu sync.Mutex
	start := ch.start
	ch.start = func(size int, compute ComputeFunc) (*worker, error) {
		mu.Lock()
		starts++
		mu.Unlock()
		return start(size, compute)
	}

	blocked := make(chan error, 1)
	go func() {
		_, err := ch.Analyze(context.Background(), Request{K: 1})
		blocked <- err
	}()
	<-started

	_, err := ch.Analyze(context.Background(), Request{K: 2})
	var chErr *ChannelError
	if !errors.As(err, &chErr) || !errors.Is(err, ErrWorkerCrashed) {
		t.Fatalf("panicking request error = %v, want ChannelError wrapping ErrWorkerCrashed", err)
	}

	select {
	case err := <-blocked:
		if !errors.Is(err, ErrWorkerCrashed) {
			t.Errorf("pending request error = %v, want ErrWorkerCrashed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pending request was not rejected")
	}
	if n := ch.Pending(); n != 0 {
		t.Errorf("Pending() = %d, want 0", n)
	}

	colors, err := ch.Analyze(context.Background(), Request{K: 3})
	if err != nil {
		t.Fatalf("Analyze() after crash error = %v", err)
	}
	if colors[0].RGB[0] != 3 {
		t.Errorf("Analyze() after crash = %+v", colors)
	}
	mu.Lock()
	defer mu.Unlock()
	if starts != 2 {
		t.Errorf("worker starts = %d, want 2", starts)
	}
}

func TestChannelStaleFailureKeepsNewWorkerRequests(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	ch := NewChannel(ChannelOptions{Workers: 1, Compute: func(req Request) ([]colour.ColorRecord, error) {
		if req.K == 2 {
			started <- struct{}{}
			<-release
		}
		return tagCompute(req)
	}})
	defer ch.Close()

	if _, err := ch.Analyze(context.Background(), Request{K: 1}); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	ch.mu.Lock()
	old := ch.w
	ch.mu.Unlock()
	ch.Close()

	done := make(chan error, 1)
	var colors []colour.ColorRecord
	go func() {
		var err error
		colors, err = ch.Analyze(context.Background(), Request{K: 2})
		done <- err
	}()
	<-started

	// A late fatal error from the retired worker.
	ch.fail(old, ErrWorkerCrashed)
	if n := ch.Pending(); n != 1 {
		t.Errorf("Pending() = %d after stale failure, want 1", n)
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("request on the new worker failed: %v", err)
		}
		if colors[0].RGB[0] != 2 {
			t.Errorf("Analyze() = %+v, want tag 2", colors)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("request on the new worker never completed")
	}
}

func TestChannelConstructionFailure(t *testing.T) {
	ch := NewChannel(ChannelOptions{Workers: 1})

	_, err := ch.Analyze(context.Background(), Request{K: 1})
	var chErr *ChannelError
	if !errors.As(err, &chErr) {
		t.Fatalf("Analyze() error = %v, want *ChannelError", err)
	}
	if chErr.Op != "construct" {
		t.Errorf("Op = %q, want construct", chErr.Op)
	}
	if n := ch.Pending(); n != 0 {
		t.Errorf("Pending() = %d, want 0", n)
	}
}

func TestChannelComputeError(t *testing.T) {
	ch := NewChannel(ChannelOptions{Workers: 1, Compute: DefaultCompute(seededClusterer)})
	defer ch.Close()

	tests := []struct {
		name string
		req  Request
	}{
		{"zero width", Request{Width: 0, Height: 2, Buffer: solidBuffer(0, 2, 0, 0, 0), K: 1}},
		{"short buffer", Request{Width: 2, Height: 2, Buffer: make([]byte, 3), K: 1}},
		{"zero k", Request{Width: 1, Height: 1, Buffer: solidBuffer(1, 1, 0, 0, 0), K: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ch.Analyze(context.Background(), tt.req)
			var chErr *ChannelError
			if !errors.As(err, &chErr) || chErr.Op != "compute" {
				t.Fatalf("Analyze() error = %v, want compute ChannelError", err)
			}
		})
	}
}

func TestChannelContextCancelAbandonsWait(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	defer close(release)

	ch := NewChannel(ChannelOptions{Workers: 1, Compute: func(req Request) ([]colour.ColorRecord, error) {
		started <- struct{}{}
		<-release
		return tagCompute(req)
	}})
	defer ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := ch.Analyze(ctx, Request{K: 1})
		done <- err
	}()
	<-started
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Analyze() error = %v, want context.Canceled", err)
	}
	if n := ch.Pending(); n != 0 {
		t.Errorf("Pending() = %d, want 0", n)
	}
}

func TestChannelCloseRejectsPending(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	defer close(release)

	ch := NewChannel(ChannelOptions{Workers: 1, Compute: func(req Request) ([]colour.ColorRecord, error) {
		started <- struct{}{}
		<-release
		return tagCompute(req)
	}})

	done := make(chan error, 1)
	go func() {
		_, err := ch.Analyze(context.Background(), Request{K: 1})
		done <- err
	}()
	<-started
	ch.Close()

	if err := <-done; !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("Analyze() error = %v, want ErrChannelClosed", err)
	}
}
