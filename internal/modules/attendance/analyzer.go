package attendance

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Frame is a camera frame. The producer hands ownership to the analyzer,
// which must Close it exactly once.
type Frame interface {
	Close() error
}

// Decoder extracts a QR payload from a frame. ok is false when the frame
// holds no code.
type Decoder interface {
	Decode(ctx context.Context, f Frame) (payload string, ok bool, err error)
}

// Analyzer consumes frames on a single worker and reports only the first
// payload of a scanning session.
type Analyzer struct {
	dec     Decoder
	log     *zap.Logger
	scanned atomic.Bool
}

func NewAnalyzer(dec Decoder, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{dec: dec, log: log.Named("analyzer")}
}

// Reset starts a new session.
func (a *Analyzer) Reset() { a.scanned.Store(false) }

// Run processes frames until ctx is done or frames is closed. onPayload is
// called from the worker goroutine. Frames still buffered when ctx is done
// are released without decoding.
func (a *Analyzer) Run(ctx context.Context, frames <-chan Frame, onPayload func(string)) {
	for {
		if ctx.Err() != nil {
			a.drain(frames)
			return
		}
		select {
		case <-ctx.Done():
			a.drain(frames)
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			a.handle(ctx, f, onPayload)
		}
	}
}

func (a *Analyzer) drain(frames <-chan Frame) {
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				return
			}
			a.release(f)
		default:
			return
		}
	}
}

func (a *Analyzer) release(f Frame) {
	if err := f.Close(); err != nil {
		a.log.Debug("release frame", zap.Error(err))
	}
}

func (a *Analyzer) handle(ctx context.Context, f Frame, onPayload func(string)) {
	defer a.release(f)

	if a.scanned.Load() {
		return
	}
	payload, ok, err := a.dec.Decode(ctx, f)
	if err != nil {
		a.log.Debug("decode frame", zap.Error(err))
		return
	}
	if !ok || payload == "" {
		return
	}
	if a.scanned.CompareAndSwap(false, true) {
		onPayload(payload)
	}
}
