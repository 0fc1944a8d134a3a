package extraction

import (
	"context"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

// ChannelOptions configures a Channel.
type ChannelOptions struct {
	// Workers is the number of goroutines processing requests. Zero means GOMAXPROCS.
	Workers int

	// Compute performs one extraction. Required.
	Compute ComputeFunc

	// Logger receives channel lifecycle events. Nil disables logging.
	Logger hclog.Logger
}

// result is what a pending request is resolved with.
type result struct {
	resp Response
	err  error
}

// pendingReply is a request awaiting a response from the worker it was sent to.
type pendingReply struct {
	w     *worker
	reply chan result
}

// Channel correlates extraction requests with worker responses by ID.
// Responses can arrive in any order. A fatal worker error rejects every
// pending request at once and the next Analyze starts a fresh worker.
type Channel struct {
	opts   ChannelOptions
	logger hclog.Logger

	mu      sync.Mutex
	w       *worker
	nextID  uint64
	pending map[uint64]pendingReply

	// start builds a worker; replaced in tests.
	start func(size int, compute ComputeFunc) (*worker, error)
}

// NewChannel creates a Channel. No worker is started until the first Analyze.
func NewChannel(opts ChannelOptions) *Channel {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Channel{
		opts:    opts,
		logger:  logger,
		pending: make(map[uint64]pendingReply),
		start:   startWorker,
	}
}

// Analyze submits req and waits for its response. req.ID is assigned here and
// req.Buffer must not be used by the caller afterwards. Every failure is
// returned as a *ChannelError except cancellation of ctx.
func (c *Channel) Analyze(ctx context.Context, req Request) ([]colour.ColorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	w, err := c.ensureWorker()
	if err != nil {
		c.mu.Unlock()
		return nil, &ChannelError{Op: "construct", Err: err}
	}
	c.nextID++
	req.ID = c.nextID
	reply := make(chan result, 1)
	c.pending[req.ID] = pendingReply{w: w, reply: reply}
	c.mu.Unlock()

	select {
	case w.inbox <- req:
	case <-w.done:
		c.forget(req.ID)
		return nil, &ChannelError{Op: "send", ID: req.ID, Err: ErrChannelClosed}
	case <-ctx.Done():
		c.forget(req.ID)
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		if res.err != nil {
			return nil, &ChannelError{Op: "receive", ID: req.ID, Err: res.err}
		}
		if !res.resp.OK {
			return nil, &ChannelError{Op: "compute", ID: req.ID, Err: errorString(res.resp.Error)}
		}
		return res.resp.Colors, nil
	case <-ctx.Done():
		c.forget(req.ID)
		return nil, ctx.Err()
	}
}

// Pending returns the number of requests awaiting a response.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close stops the worker and rejects anything still pending.
func (c *Channel) Close() {
	c.mu.Lock()
	w := c.w
	c.mu.Unlock()
	if w != nil {
		c.fail(w, ErrChannelClosed)
	}
}

// ensureWorker returns the live worker, starting one if needed. Caller holds mu.
func (c *Channel) ensureWorker() (*worker, error) {
	if c.w != nil {
		return c.w, nil
	}
	w, err := c.start(c.opts.Workers, c.opts.Compute)
	if err != nil {
		return nil, err
	}
	c.w = w
	go c.dispatch(w)
	c.logger.Debug("started image worker", "goroutines", c.opts.Workers)
	return w, nil
}

// dispatch routes responses from w to their pending entries until w stops.
func (c *Channel) dispatch(w *worker) {
	for {
		select {
		case resp := <-w.outbox:
			c.mu.Lock()
			p, ok := c.pending[resp.ID]
			delete(c.pending, resp.ID)
			c.mu.Unlock()
			if ok {
				p.reply <- result{resp: resp}
			}
		case err := <-w.fatal:
			c.fail(w, err)
			return
		case <-w.done:
			return
		}
	}
}

// fail tears w down and rejects every request pending on w with err.
// Requests sent to a newer worker are left alone.
func (c *Channel) fail(w *worker, err error) {
	c.mu.Lock()
	if c.w == w {
		c.w = nil
	}
	var rejected []chan result
	for id, p := range c.pending {
		if p.w == w {
			rejected = append(rejected, p.reply)
			delete(c.pending, id)
		}
	}
	c.mu.Unlock()

	w.stop()
	if len(rejected) > 0 {
		c.logger.Warn("rejecting pending extraction requests", "count", len(rejected), "error", err)
	}
	for _, reply := range rejected {
		reply <- result{err: err}
	}
}

func (c *Channel) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

type errorString string

func (e errorString) Error() string {
	if e == "" {
		return "worker error"
	}
	return string(e)
}
