package encoderpool

import (
	"context"
	"fmt"
	"sync"

	"pixelmill/internal/services"
)

// Codec encodes a payload into one target format. Implementations wrap
// external encoder processes or libraries; the pool treats them as opaque.
type Codec interface {
	// Name identifies the codec in diagnostics.
	Name() string
	// Extension is the target format key the codec produces, without dot.
	Extension() string
	// Encode re-encodes data using codec-specific options.
	Encode(ctx context.Context, data []byte, opts map[string]any) ([]byte, error)
}

// Pool bounds concurrent codec invocations and tracks shared ownership.
type Pool struct {
	slots  chan struct{}
	codecs map[string]Codec

	mu     sync.Mutex
	refs   int
	shared bool
	closed bool
}

// New constructs a pool with the given worker slot count and codec set.
// The creator holds the first reference.
func New(workers int, codecs ...Codec) (*Pool, error) {
	if workers < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "encoderpool", "new", fmt.Sprintf("worker count must be positive, got %d", workers), nil)
	}
	p := &Pool{
		slots:  make(chan struct{}, workers),
		codecs: make(map[string]Codec, len(codecs)),
		refs:   1,
	}
	for _, c := range codecs {
		if c == nil {
			return nil, services.Wrap(services.ErrConfiguration, "encoderpool", "new", "nil codec", nil)
		}
		p.codecs[c.Extension()] = c
	}
	return p, nil
}

// Workers reports the pool's concurrency cap.
func (p *Pool) Workers() int { return cap(p.slots) }

// MarkShared flags the pool as reused across backends. A shared pool is
// only torn down by an explicit Close from its owner, never by Release.
func (p *Pool) MarkShared() {
	p.mu.Lock()
	p.shared = true
	p.mu.Unlock()
}

// Shared reports whether the pool was marked as a reused resource.
func (p *Pool) Shared() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shared
}

// Retain adds a reference for another user of the pool.
func (p *Pool) Retain() {
	p.mu.Lock()
	p.refs++
	p.mu.Unlock()
}

// Release drops one reference. When the last reference is released and the
// pool was not marked shared, the pool closes.
func (p *Pool) Release() {
	p.mu.Lock()
	if p.refs > 0 {
		p.refs--
	}
	last := p.refs == 0 && !p.shared
	p.mu.Unlock()
	if last {
		p.Close()
	}
}

// Close tears the pool down. It is idempotent; encoding on a closed pool
// fails with a validation error.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Closed reports whether the pool has been torn down.
func (p *Pool) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Encode runs the codec registered for the target format, holding one
// worker slot for the duration of the call. An unregistered format is a
// configuration error.
func (p *Pool) Encode(ctx context.Context, format string, data []byte, opts map[string]any) ([]byte, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, services.Wrap(services.ErrValidation, "encoderpool", "encode", "pool is closed", nil)
	}
	codec, ok := p.codecs[format]
	p.mu.Unlock()
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "encoderpool", "encode", fmt.Sprintf("no codec registered for format %q", format), nil)
	}

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.slots }()

	return codec.Encode(ctx, data, opts)
}

// Has reports whether a codec is registered for the target format.
func (p *Pool) Has(format string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.codecs[format]
	return ok
}
