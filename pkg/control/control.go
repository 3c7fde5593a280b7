// Package control talks to the control system, dispatching each PV address
// to the shim registered for its protocol prefix.
package control

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"
)

// ErrUnsupportedProtocol is returned when no shim handles a PV's prefix.
var ErrUnsupportedProtocol = errors.New("control: unsupported protocol")

const defaultConcurrency = 4

// Layer routes Get/Put calls to shims by protocol, e.g. "ca://MOTOR:01"
// goes to the "ca" shim. Addresses without a prefix use the default shim,
// which is the first one registered.
type Layer struct {
	shims       map[string]Shim
	defaultShim string
	concurrency int
}

// NewLayer returns a Layer with no shims registered.
func NewLayer() *Layer {
	return &Layer{shims: make(map[string]Shim), concurrency: defaultConcurrency}
}

// Register adds a shim for a protocol prefix. The first registration
// becomes the default for bare addresses.
func (l *Layer) Register(protocol string, s Shim) {
	if len(l.shims) == 0 {
		l.defaultShim = protocol
	}
	l.shims[protocol] = s
}

// SetConcurrency bounds the number of parallel operations in GetMany and
// PutMany.
func (l *Layer) SetConcurrency(n int) {
	if n > 0 {
		l.concurrency = n
	}
}

// shimFor resolves the shim for an address and strips its protocol prefix.
func (l *Layer) shimFor(addr string) (Shim, string, error) {
	protocol, rest, found := strings.Cut(addr, "://")
	if !found {
		protocol, rest = l.defaultShim, addr
	}
	s, ok := l.shims[protocol]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedProtocol, addr)
	}
	return s, rest, nil
}

// Get reads one PV.
func (l *Layer) Get(ctx context.Context, addr string) (any, error) {
	s, pv, err := l.shimFor(addr)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, pv)
}

// Put writes one PV.
func (l *Layer) Put(ctx context.Context, addr string, value any) error {
	s, pv, err := l.shimFor(addr)
	if err != nil {
		return err
	}
	return s.Put(ctx, pv, value)
}

// GetMany reads all addresses concurrently and returns the values in input
// order. The first failure cancels the remaining reads.
func (l *Layer) GetMany(ctx context.Context, addrs []string) ([]any, error) {
	out := make([]any, len(addrs))
	p := pool.New().WithMaxGoroutines(l.concurrency).WithContext(ctx).WithCancelOnError()
	for i, addr := range addrs {
		p.Go(func(ctx context.Context) error {
			v, err := l.Get(ctx, addr)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PutMany writes values[i] to addrs[i] concurrently. The first failure
// cancels the remaining writes.
func (l *Layer) PutMany(ctx context.Context, addrs []string, values []any) error {
	if len(addrs) != len(values) {
		return fmt.Errorf("control: %d addresses for %d values", len(addrs), len(values))
	}
	p := pool.New().WithMaxGoroutines(l.concurrency).WithContext(ctx).WithCancelOnError()
	for i, addr := range addrs {
		p.Go(func(ctx context.Context) error {
			return l.Put(ctx, addr, values[i])
		})
	}
	return p.Wait()
}
