// Package background groups goroutines which share one cancellation.
package background

import (
	"context"
	"sync"
)

// Scope - group of goroutines (members) bound to common cancelable context.
type Scope struct {
	ctx       context.Context
	ctxCancel context.CancelFunc
	members   sync.WaitGroup
}

// NewScope - builds root scope.
// Returned cancel func cancels scope context and waits until all members are done.
func NewScope() (scope *Scope, cancel func()) {
	return WithParent(context.Background())
}

// WithParent - builds scope which also expires together with parent context.
func WithParent(parent context.Context) (scope *Scope, cancel func()) {
	ctx, cancelFunc := context.WithCancel(parent)
	s := &Scope{
		ctx:       ctx,
		ctxCancel: cancelFunc,
	}
	return s,
		func() {
			s.ctxCancel()
			s.members.Wait()
		}
}

// Context - returns scope context.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Expired - reports whether scope context is canceled.
func (s *Scope) Expired() bool {
	return s.ctx.Err() != nil
}

// Add - registers delta members. Based on sync.WaitGroup.
func (s *Scope) Add(delta int) {
	s.members.Add(delta)
}

// Done - notifies scope that member is done. Based on sync.WaitGroup.
func (s *Scope) Done() {
	s.members.Done()
}

// Go - runs fn as new scope member.
func (s *Scope) Go(fn func(ctx context.Context)) {
	s.members.Add(1)
	go func() {
		defer s.members.Done()
		fn(s.ctx)
	}()
}
