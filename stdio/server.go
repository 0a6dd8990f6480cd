// Package stdio exposes the bridge as a JSON-RPC 2.0 server over a pair of
// streams, for tools that speak JSON-RPC on stdin and stdout.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"walletbridge/bridge"
	"walletbridge/channel"
)

// Error is the class of stdio server errors.
var Error = errs.Class("stdio")

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeInternal       = -32603
	codeCallFailed     = -32000
)

// Caller performs channel calls. *bridge.Client implements it; Local
// adapts an in-process registry.
type Caller interface {
	Call(ctx context.Context, ch, method string, args channel.Args) (channel.Result, error)
	Channels(ctx context.Context) ([]string, error)
}

type local struct{ reg *channel.Registry }

// Local returns a Caller dispatching to reg directly.
func Local(reg *channel.Registry) Caller { return local{reg} }

func (l local) Call(ctx context.Context, ch, method string, args channel.Args) (channel.Result, error) {
	res, err := l.reg.Invoke(ctx, ch, method, args)
	if channel.Error.Has(err) {
		return channel.Failure(&channel.CallError{Code: bridge.CodeUnknownChannel, Message: err.Error()}), nil
	}
	return res, err
}

func (l local) Channels(context.Context) ([]string, error) { return l.reg.Channels(), nil }

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type callParams struct {
	Channel   string       `json:"channel"`
	Method    string       `json:"method"`
	Arguments channel.Args `json:"arguments"`
}

// Server answers JSON-RPC requests by forwarding them to a Caller.
type Server struct {
	caller  Caller
	log     *zap.Logger
	version string
}

// NewServer returns a server forwarding to caller.
func NewServer(caller Caller, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{caller: caller, log: log, version: version}
}

// Serve reads requests from in until EOF or ctx is done, writing responses
// to out. Requests are answered in order.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", zap.Error(err))
			_ = encoder.Encode(response{
				JSONRPC: "2.0",
				Error:   &rpcError{Code: codeParseError, Message: "parse error: " + err.Error()},
			})
			continue
		}

		resp := s.handle(ctx, &req)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return Error.New("write response: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Error.New("stdin read error: %v", err)
	}
	return nil
}

// handle answers req. Notifications, requests without an id, are
// carried out but never answered.
func (s *Server) handle(ctx context.Context, req *request) *response {
	resp := s.answer(ctx, req)
	if req.ID == nil {
		return nil
	}
	return resp
}

func (s *Server) answer(ctx context.Context, req *request) *response {
	reply := func(result any) *response {
		return &response{JSONRPC: "2.0", ID: req.ID, Result: result}
	}
	fail := func(code int, msg string, data any) *response {
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: code, Message: msg, Data: data}}
	}

	switch req.Method {
	case "initialize":
		return reply(map[string]any{
			"serverInfo": map[string]any{
				"name":    "walletbridge",
				"version": s.version,
			},
			"capabilities": map[string]any{
				"channels": true,
			},
		})

	case "notifications/initialized":
		return nil

	case "bridge/channels":
		channels, err := s.caller.Channels(ctx)
		if err != nil {
			s.log.Warn("list channels failed", zap.Error(err))
			return fail(codeInternal, err.Error(), nil)
		}
		return reply(map[string]any{"channels": channels})

	case "bridge/call":
		var params callParams
		if req.Params != nil {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return fail(codeInvalidParams, "invalid params: "+err.Error(), nil)
			}
		}
		if params.Channel == "" || params.Method == "" {
			return fail(codeInvalidParams, "invalid params: channel and method are required", nil)
		}

		res, err := s.caller.Call(ctx, params.Channel, params.Method, params.Arguments)
		if err != nil {
			s.log.Warn("call failed", zap.String("channel", params.Channel), zap.String("method", params.Method), zap.Error(err))
			return fail(codeInternal, err.Error(), nil)
		}
		switch {
		case res.IsNotImplemented():
			return fail(codeMethodNotFound, "method not implemented: "+params.Channel+"/"+params.Method, nil)
		case res.IsError():
			data := map[string]any{"code": res.Code()}
			if res.Err.Details != nil {
				data["details"] = res.Err.Details
			}
			return fail(codeCallFailed, res.Err.Message, data)
		default:
			return reply(map[string]any{"value": res.Value})
		}

	default:
		return fail(codeMethodNotFound, "method not found: "+req.Method, nil)
	}
}
