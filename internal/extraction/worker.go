package extraction

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

// ComputeFunc performs one extraction inside the worker.
type ComputeFunc func(Request) ([]colour.ColorRecord, error)

// worker is a pool of goroutines sharing one inbox and one outbox.
// A panic in any goroutine is fatal for the whole worker.
type worker struct {
	inbox  chan Request
	outbox chan Response
	fatal  chan error
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func startWorker(size int, compute ComputeFunc) (*worker, error) {
	if compute == nil {
		return nil, errors.New("no compute function")
	}
	size = max(size, 1)

	w := &worker{
		inbox:  make(chan Request),
		outbox: make(chan Response, size),
		fatal:  make(chan error, 1),
		done:   make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		w.wg.Add(1)
		go w.run(compute)
	}
	return w, nil
}

func (w *worker) run(compute ComputeFunc) {
	defer w.wg.Done()
	for {
		select {
		case req := <-w.inbox:
			resp, ok := w.handle(compute, req)
			if !ok {
				return
			}
			select {
			case w.outbox <- resp:
			case <-w.done:
				return
			}
		case <-w.done:
			return
		}
	}
}

// handle runs compute for one request. It reports false after a panic, which
// has already been raised on the fatal channel.
func (w *worker) handle(compute ComputeFunc, req Request) (resp Response, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			select {
			case w.fatal <- fmt.Errorf("%w: %v", ErrWorkerCrashed, r):
			default:
			}
			ok = false
		}
	}()

	colors, err := compute(req)
	if err != nil {
		return Response{ID: req.ID, OK: false, Error: err.Error()}, true
	}
	return Response{ID: req.ID, OK: true, Colors: colors}, true
}

// stop tears the worker down. Safe to call more than once.
func (w *worker) stop() {
	w.once.Do(func() { close(w.done) })
}

// DefaultCompute returns the standard worker computation: validate the
// request, sample, cluster and keep records above the primary floor.
func DefaultCompute(newClusterer func() colour.Clusterer) ComputeFunc {
	return func(req Request) ([]colour.ColorRecord, error) {
		if req.Width <= 0 || req.Height <= 0 {
			return nil, fmt.Errorf("invalid dimensions %dx%d", req.Width, req.Height)
		}
		if len(req.Buffer) != req.Width*req.Height*4 {
			return nil, fmt.Errorf("buffer length %d does not match %dx%d", len(req.Buffer), req.Width, req.Height)
		}
		if req.K < 1 {
			return nil, fmt.Errorf("k must be at least 1, got %d", req.K)
		}
		return colour.Extract(req.Buffer, colour.ExtractOptions{
			K:              req.K,
			AlphaThreshold: req.AlphaThreshold,
			SampleStep:     req.SampleStep,
			Floor:          colour.PrimaryFrequencyFloor,
		}, newClusterer()), nil
	}
}
