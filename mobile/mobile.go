// Package mobile is the gomobile entry point. The native shell implements
// NativeHost, calls Start once, and forwards every channel call to Invoke.
// Results come back as JSON envelopes through a ResultHandler.
package mobile

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
	_ "golang.org/x/mobile/bind"

	"walletbridge/bridge"
	"walletbridge/channel"
	"walletbridge/config"
	"walletbridge/wallet"
)

// ResultHandler receives the JSON response of one call. It may be called
// on any thread.
type ResultHandler interface {
	OnResult(responseJSON string)
}

type runtime struct {
	reg *channel.Registry
	log *zap.Logger
}

var (
	mu      sync.Mutex
	current *runtime
)

// Start builds the channel registry on top of host. configJSON overrides
// the defaults and may be empty. Calling Start again replaces the previous
// registry.
func Start(host NativeHost, configJSON string) error {
	cfg, err := config.FromJSON(configJSON, os.TempDir())
	if err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	reg := channel.NewRegistry(log.Named("channel"))
	wallet.New(adapt(host), cfg.Wallet, log).Register(reg)

	mu.Lock()
	prev := current
	current = &runtime{reg: reg, log: log}
	mu.Unlock()

	if prev != nil {
		_ = prev.log.Sync()
	}
	log.Info("bridge started", zap.String("icon_mode", host.IconMode()), zap.Strings("channels", reg.Channels()))
	return nil
}

// Stop drops the registry. Later calls fail until Start is called again.
func Stop() {
	mu.Lock()
	prev := current
	current = nil
	mu.Unlock()
	if prev != nil {
		_ = prev.log.Sync()
	}
}

// Channels returns the registered channel names as a JSON array.
func Channels() string {
	mu.Lock()
	rt := current
	mu.Unlock()
	if rt == nil {
		return "[]"
	}
	data, _ := json.Marshal(rt.reg.Channels())
	return string(data)
}

// Invoke calls method on ch with the JSON-object arguments argsJSON.
// handler receives exactly one response.
func Invoke(ch, method, argsJSON string, handler ResultHandler) {
	deliver := func(resp bridge.Response) {
		data, err := json.Marshal(resp)
		if err != nil {
			data, _ = json.Marshal(bridge.Response{Type: bridge.TypeError, Code: channel.CodeInternal, Message: err.Error()})
		}
		handler.OnResult(string(data))
	}

	mu.Lock()
	rt := current
	mu.Unlock()
	if rt == nil {
		deliver(bridge.Response{Type: bridge.TypeError, Code: bridge.CodeInvalidRequest, Message: "bridge not started"})
		return
	}

	var args channel.Args
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			deliver(bridge.Response{Type: bridge.TypeError, Code: bridge.CodeParseError, Message: "parse error: " + err.Error()})
			return
		}
	}

	reply, err := rt.reg.Dispatch(context.Background(), ch, channel.Call{Method: method, Args: args})
	if err != nil {
		deliver(bridge.Response{Type: bridge.TypeError, Code: bridge.CodeUnknownChannel, Message: err.Error()})
		return
	}
	reply.OnResolve(func(res channel.Result) {
		deliver(bridge.NewResponse("", res))
	})
}
