// Package extraction runs pixel sampling and clustering on a background
// worker, falling back to the caller's goroutine when the worker fails.
package extraction

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/palettesniffer/internal/colour"
)

// Request asks the worker to extract colours from a pixel buffer.
// Buffer belongs to the worker once the request is submitted.
type Request struct {
	ID             uint64 `json:"id"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Buffer         []byte `json:"-"`
	K              int    `json:"k"`
	AlphaThreshold int    `json:"alphaThreshold"`
	SampleStep     int    `json:"sampleStep"`
}

// Response correlates a result with its request by ID.
type Response struct {
	ID     uint64               `json:"id"`
	OK     bool                 `json:"ok"`
	Colors []colour.ColorRecord `json:"colors,omitempty"`
	Error  string               `json:"error,omitempty"`
}

var (
	// ErrChannelClosed is returned when the worker has been torn down.
	ErrChannelClosed = errors.New("channel closed")

	// ErrWorkerCrashed is the fatal error delivered to every pending request
	// when a worker goroutine panics.
	ErrWorkerCrashed = errors.New("image worker error")
)

// ChannelError is any failure of the offload channel. Callers recover from it
// by extracting synchronously.
type ChannelError struct {
	Op  string
	ID  uint64
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("extraction channel %s (request %d): %v", e.Op, e.ID, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }
