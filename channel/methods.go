package channel

import (
	"context"
	"fmt"
	"sort"
)

// Method is one named operation of a channel.
type Method struct {
	Name   string
	Schema Schema
	// Failure classifies errors and panics that escape the provider
	// without a CallError of their own.
	Failure Code
	Handle  func(ctx context.Context, args Args) *Reply
}

// Handler receives every call delivered to a channel.
type Handler interface {
	HandleCall(ctx context.Context, call Call) *Reply
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, call Call) *Reply

func (f HandlerFunc) HandleCall(ctx context.Context, call Call) *Reply { return f(ctx, call) }

// MethodSet is a Handler routing calls over a fixed set of methods.
type MethodSet struct {
	methods map[string]Method
}

// NewMethodSet builds a handler for methods. A later method with the same
// name replaces an earlier one.
func NewMethodSet(methods ...Method) *MethodSet {
	set := &MethodSet{methods: make(map[string]Method, len(methods))}
	for _, m := range methods {
		set.methods[m.Name] = m
	}
	return set
}

// Names lists the declared methods in sorted order.
func (s *MethodSet) Names() []string {
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HandleCall validates the arguments and runs the method. Unknown method
// names resolve to NotImplemented.
func (s *MethodSet) HandleCall(ctx context.Context, call Call) *Reply {
	m, ok := s.methods[call.Method]
	if !ok {
		return Resolved(NotImplemented())
	}
	if err := m.Schema.Validate(call.Args); err != nil {
		return Fail(err)
	}
	return m.invoke(ctx, call.Args)
}

func (m Method) invoke(ctx context.Context, args Args) (reply *Reply) {
	failure := m.Failure
	if failure == "" {
		failure = CodeInternal
	}
	defer func() {
		if rec := recover(); rec != nil {
			reply = Fail(Errorf(failure, "%v", rec))
		}
	}()

	if m.Handle == nil {
		return Fail(Errorf(CodeInternal, "method %s has no handler", m.Name))
	}
	reply = m.Handle(ctx, args)
	if reply == nil {
		return Fail(Errorf(CodeInternal, "method %s returned no reply", m.Name))
	}
	return reply
}

// FromError resolves a reply from a provider error, classifying plain
// errors under code.
func FromError(err error, code Code) *Reply {
	if err == nil {
		return Succeed(nil)
	}
	return Fail(AsCallError(err, code))
}

// String implements fmt.Stringer for logging.
func (c Call) String() string {
	return fmt.Sprintf("%s(%d args)", c.Method, len(c.Args))
}
