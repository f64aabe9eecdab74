// Package identity resolves who the caller is. Resolution starts once,
// runs in the background and always ends with a usable address: the
// connected signer's, or a random placeholder when there is none.
package identity

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tranvictor/shadowvote/util/account"
)

type SignerSource interface {
	Signer(ctx context.Context) (*account.Account, error)
}

type Resolver struct {
	done chan struct{}

	mu          sync.RWMutex
	address     string
	placeholder bool
}

// Resolve starts resolving the identity from source. A nil source
// resolves straight to a placeholder.
func Resolve(ctx context.Context, source SignerSource, l *zap.Logger) *Resolver {
	if l == nil {
		l = zap.NewNop()
	}
	r := &Resolver{done: make(chan struct{})}
	go r.resolve(ctx, source, l)
	return r
}

// Static returns an already resolved identity.
func Static(address string) *Resolver {
	r := &Resolver{done: make(chan struct{}), address: address}
	close(r.done)
	return r
}

func (r *Resolver) resolve(ctx context.Context, source SignerSource, l *zap.Logger) {
	defer close(r.done)
	var err error
	if source != nil {
		var acc *account.Account
		acc, err = source.Signer(ctx)
		if err == nil {
			r.set(acc.AddressHex(), false)
			return
		}
	}
	addr := account.RandomAddress()
	l.Warn("couldn't get signer address, using a placeholder identity",
		zap.String("placeholder", addr),
		zap.Error(err),
	)
	r.set(addr, true)
}

func (r *Resolver) set(address string, placeholder bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.address = address
	r.placeholder = placeholder
}

// Wait blocks until the identity is resolved or ctx is done.
func (r *Resolver) Wait(ctx context.Context) (string, error) {
	select {
	case <-r.done:
		addr, _ := r.Address()
		return addr, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Address returns the identity without blocking, ok is false while
// resolution is still running.
func (r *Resolver) Address() (address string, ok bool) {
	select {
	case <-r.done:
	default:
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.address, true
}

// IsPlaceholder reports whether the resolved identity was synthesized.
func (r *Resolver) IsPlaceholder() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.placeholder
}
