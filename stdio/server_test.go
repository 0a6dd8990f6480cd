package stdio_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"walletbridge/channel"
	"walletbridge/stdio"
)

func registry(t *testing.T) *channel.Registry {
	reg := channel.NewRegistry(zaptest.NewLogger(t))
	reg.Register("orbot_launcher", channel.NewMethodSet(
		channel.NoArgs("launchOrbot", channel.CodeLaunchError, func(context.Context) *channel.Reply {
			return channel.Fail(channel.Errorf(channel.CodeLaunchError, "no store available"))
		}),
	))
	reg.Register("orbot_check", channel.NewMethodSet(
		channel.NoArgs("isOrbotInstalled", "", func(context.Context) *channel.Reply {
			return channel.Succeed(true)
		}),
	))
	return reg
}

type rpcResponse struct {
	ID     any            `json:"id"`
	Result map[string]any `json:"result"`
	Error  *struct {
		Code    int            `json:"code"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	} `json:"error"`
}

func run(t *testing.T, lines ...string) []rpcResponse {
	t.Helper()
	srv := stdio.NewServer(stdio.Local(registry(t)), "test", zaptest.NewLogger(t))

	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"), &out))

	var responses []rpcResponse
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp rpcResponse
		require.NoError(t, dec.Decode(&resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestServe(t *testing.T) {
	responses := run(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"bridge/channels"}`,
		`{"jsonrpc":"2.0","id":3,"method":"bridge/call","params":{"channel":"orbot_check","method":"isOrbotInstalled"}}`,
		`{"jsonrpc":"2.0","id":4,"method":"bridge/call","params":{"channel":"orbot_launcher","method":"launchOrbot"}}`,
		`{"jsonrpc":"2.0","id":5,"method":"bridge/call","params":{"channel":"orbot_check","method":"uninstall"}}`,
		`{"jsonrpc":"2.0","id":6,"method":"bridge/call","params":{"channel":"camera","method":"snap"}}`,
		`{"jsonrpc":"2.0","id":7,"method":"bridge/call","params":{"channel":"orbot_check"}}`,
		`not json`,
	)
	require.Len(t, responses, 8)

	assert.Equal(t, "walletbridge", responses[0].Result["serverInfo"].(map[string]any)["name"])
	assert.Equal(t, []any{"orbot_check", "orbot_launcher"}, responses[1].Result["channels"])
	assert.Equal(t, true, responses[2].Result["value"])

	require.NotNil(t, responses[3].Error)
	assert.Equal(t, -32000, responses[3].Error.Code)
	assert.Equal(t, "no store available", responses[3].Error.Message)
	assert.Equal(t, "LAUNCH_ERROR", responses[3].Error.Data["code"])

	require.NotNil(t, responses[4].Error)
	assert.Equal(t, -32601, responses[4].Error.Code)

	require.NotNil(t, responses[5].Error)
	assert.Equal(t, "UNKNOWN_CHANNEL", responses[5].Error.Data["code"])

	require.NotNil(t, responses[6].Error)
	assert.Equal(t, -32602, responses[6].Error.Code)

	require.NotNil(t, responses[7].Error)
	assert.Equal(t, -32700, responses[7].Error.Code)
}

func TestNotificationsAreNotAnswered(t *testing.T) {
	var calls atomic.Int32
	reg := registry(t)
	reg.Register("app-settings", channel.NewMethodSet(
		channel.NoArgs("openAppSettings", "", func(context.Context) *channel.Reply {
			calls.Add(1)
			return channel.Succeed(nil)
		}),
	))
	srv := stdio.NewServer(stdio.Local(reg), "test", zaptest.NewLogger(t))

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"bridge/channels"}`,
		`{"jsonrpc":"2.0","method":"bridge/call","params":{"channel":"app-settings","method":"openAppSettings"}}`,
		`{"jsonrpc":"2.0","method":"bridge/call","params":{}}`,
		`{"jsonrpc":"2.0","method":"shutdown"}`,
		`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(in), &out))
	assert.Empty(t, out.String())
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseErrorCarriesNullID(t *testing.T) {
	srv := stdio.NewServer(stdio.Local(registry(t)), "test", zaptest.NewLogger(t))

	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader("{broken\n"), &out))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &raw))
	id, ok := raw["id"]
	require.True(t, ok, "response must carry an id member")
	assert.Equal(t, "null", string(id))
	assert.Contains(t, string(raw["error"]), "-32700")
}
