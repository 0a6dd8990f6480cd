// Package channel implements the method-channel registry: named channels,
// per-method argument schemas, the error taxonomy and deferred replies.
package channel

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// Error is the class for registry-level failures such as an unknown
// channel. These never travel as a Result.
var Error = errs.Class("channel")

// Observer is told about every resolved call.
type Observer interface {
	CallResolved(channel, method string, res Result, elapsed time.Duration)
}

// Registry maps channel names to handlers.
type Registry struct {
	log       *zap.Logger
	mu        sync.RWMutex
	handlers  map[string]Handler
	observers []Observer
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger, observers ...Observer) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:       log,
		handlers:  make(map[string]Handler),
		observers: observers,
	}
}

// Register binds h to name, replacing any previous handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	_, replaced := r.handlers[name]
	r.handlers[name] = h
	r.mu.Unlock()

	if replaced {
		r.log.Debug("channel handler replaced", zap.String("channel", name))
	}
}

// Channels lists registered channel names in sorted order.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler returns the handler bound to name.
func (r *Registry) Handler(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Dispatch delivers call to the channel's handler and returns its reply.
func (r *Registry) Dispatch(ctx context.Context, channel string, call Call) (*Reply, error) {
	h, ok := r.Handler(channel)
	if !ok {
		return nil, Error.New("unknown channel %q", channel)
	}

	start := time.Now()
	reply := h.HandleCall(ctx, call)
	if reply == nil {
		reply = Fail(Errorf(CodeInternal, "channel %s returned no reply for %s", channel, call.Method))
	}

	reply.OnResolve(func(res Result) {
		elapsed := time.Since(start)
		fields := []zap.Field{
			zap.String("channel", channel),
			zap.String("method", call.Method),
			zap.Stringer("outcome", res.Outcome),
			zap.Duration("elapsed", elapsed),
		}
		if res.Err != nil {
			fields = append(fields, zap.String("code", string(res.Err.Code)), zap.String("message", res.Err.Message))
		}
		r.log.Debug("call resolved", fields...)
		for _, o := range r.observers {
			o.CallResolved(channel, call.Method, res, elapsed)
		}
	})
	return reply, nil
}

// Invoke dispatches a call and waits for its result.
func (r *Registry) Invoke(ctx context.Context, channel, method string, args Args) (Result, error) {
	reply, err := r.Dispatch(ctx, channel, Call{Method: method, Args: args})
	if err != nil {
		return Result{}, err
	}
	return reply.Wait(ctx)
}
