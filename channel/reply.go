package channel

import (
	"context"
	"sync"
)

// Reply is the deferred result of a dispatched call. It resolves exactly
// once; providers that complete synchronously hand back an already
// resolved reply.
type Reply struct {
	once     sync.Once
	done     chan struct{}
	mu       sync.Mutex
	resolved bool
	result   Result
	hooks    []func(Result)
}

// NewReply returns an unresolved reply.
func NewReply() *Reply {
	return &Reply{done: make(chan struct{})}
}

// Resolved returns a reply that already holds res.
func Resolved(res Result) *Reply {
	r := NewReply()
	r.Resolve(res)
	return r
}

// Succeed is shorthand for Resolved(Success(v)).
func Succeed(v any) *Reply { return Resolved(Success(v)) }

// Fail is shorthand for Resolved(Failure(err)).
func Fail(err *CallError) *Reply { return Resolved(Failure(err)) }

// Resolve stores res, runs the OnResolve hooks and then wakes waiters.
// Only the first call has any effect; it reports whether this call was
// the one that resolved.
func (r *Reply) Resolve(res Result) (ok bool) {
	r.once.Do(func() {
		r.mu.Lock()
		r.result = res
		r.resolved = true
		hooks := r.hooks
		r.hooks = nil
		r.mu.Unlock()

		for _, fn := range hooks {
			fn(res)
		}
		close(r.done)
		ok = true
	})
	return ok
}

// OnResolve registers fn to run with the result. If the reply is already
// resolved fn runs immediately on the caller's goroutine, otherwise on the
// goroutine that resolves it.
func (r *Reply) OnResolve(fn func(Result)) {
	r.mu.Lock()
	if r.resolved {
		res := r.result
		r.mu.Unlock()
		fn(res)
		return
	}
	r.hooks = append(r.hooks, fn)
	r.mu.Unlock()
}

// Done is closed once the reply is resolved.
func (r *Reply) Done() <-chan struct{} {
	return r.done
}

// Result returns the result without blocking.
func (r *Reply) Result() (Result, bool) {
	select {
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the reply resolves or ctx is done. Giving up on the
// wait does not cancel the underlying call.
func (r *Reply) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
		res, _ := r.Result()
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
