// Package bridge carries channel calls between processes. The unix socket
// server serves native shells and the CLI; the websocket server serves UI
// runtimes. Both speak the same JSON envelope.
package bridge

import (
	"context"

	"github.com/zeebo/errs"

	"walletbridge/channel"
)

// Error is the class of transport errors.
var Error = errs.Class("bridge")

// Request types.
const (
	TypeCall     = "call"
	TypeChannels = "channels"
)

// Response types.
const (
	TypeSuccess        = "success"
	TypeError          = "error"
	TypeNotImplemented = "notImplemented"
)

// Codes produced by the transport itself rather than a provider.
const (
	CodeUnknownChannel channel.Code = "UNKNOWN_CHANNEL"
	CodeParseError     channel.Code = "PARSE_ERROR"
	CodeInvalidRequest channel.Code = "INVALID_REQUEST"
)

// Request is the wire format of a call.
type Request struct {
	ID        string       `json:"id,omitempty"`
	Type      string       `json:"type,omitempty"` // "call" (default) or "channels"
	Channel   string       `json:"channel,omitempty"`
	Method    string       `json:"method,omitempty"`
	Arguments channel.Args `json:"arguments,omitempty"`
}

// Response is the wire format of a call's outcome.
type Response struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type"`
	Result   any          `json:"result,omitempty"`
	Channels []string     `json:"channels,omitempty"`
	Code     channel.Code `json:"code,omitempty"`
	Message  string       `json:"message,omitempty"`
	Details  any          `json:"details,omitempty"`
}

// NewResponse encodes res as the response to request id.
func NewResponse(id string, res channel.Result) Response {
	switch res.Outcome {
	case channel.OutcomeNotImplemented:
		return Response{ID: id, Type: TypeNotImplemented}
	case channel.OutcomeError:
		resp := Response{ID: id, Type: TypeError, Code: channel.CodeInternal}
		if res.Err != nil {
			resp.Code = res.Err.Code
			resp.Message = res.Err.Message
			resp.Details = res.Err.Details
		}
		return resp
	default:
		return Response{ID: id, Type: TypeSuccess, Result: res.Value}
	}
}

func errorResponse(id string, code channel.Code, msg string) Response {
	return Response{ID: id, Type: TypeError, Code: code, Message: msg}
}

// CallResult decodes a call response back into a result.
func (r *Response) CallResult() channel.Result {
	switch r.Type {
	case TypeSuccess:
		return channel.Success(r.Result)
	case TypeNotImplemented:
		return channel.NotImplemented()
	default:
		return channel.Failure(&channel.CallError{Code: r.Code, Message: r.Message, Details: r.Details})
	}
}

// serve handles one request against reg. send is called exactly once,
// possibly on another goroutine once a deferred reply resolves.
func serve(ctx context.Context, reg *channel.Registry, req Request, send func(Response)) {
	switch req.Type {
	case "", TypeCall:
		reply, err := reg.Dispatch(ctx, req.Channel, channel.Call{Method: req.Method, Args: req.Arguments})
		if err != nil {
			send(errorResponse(req.ID, CodeUnknownChannel, err.Error()))
			return
		}
		reply.OnResolve(func(res channel.Result) {
			send(NewResponse(req.ID, res))
		})
	case TypeChannels:
		send(Response{ID: req.ID, Type: TypeChannels, Channels: reg.Channels()})
	default:
		send(errorResponse(req.ID, CodeInvalidRequest, "unknown request type: "+req.Type))
	}
}
