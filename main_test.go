package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletbridge/channel"
)

func TestParseArgs(t *testing.T) {
	args, err := parseArgs([]string{
		"app_event_icon_change=yes",
		"icon_name=birthday",
		"count=3",
		"off=N",
		`raw:={"a":[1,2]}`,
		"url=https://example.com/?a=b",
	})
	require.NoError(t, err)
	assert.Equal(t, channel.Args{
		"app_event_icon_change": true,
		"icon_name":             "birthday",
		"count":                 3,
		"off":                   false,
		"raw":                   map[string]any{"a": []any{1.0, 2.0}},
		"url":                   "https://example.com/?a=b",
	}, args)

	_, err = parseArgs([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseArgs([]string{"bad:={"})
	assert.Error(t, err)

	args, err = parseArgs(nil)
	require.NoError(t, err)
	assert.Nil(t, args)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config-dir", t.TempDir(), "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCommandsAgainstSimulatedDevice(t *testing.T) {
	t.Setenv("WALLETBRIDGE_SIM_PATH", filepath.Join(t.TempDir(), "device.toml"))

	out, err := run(t, "call", "--local", "orbot_check", "isOrbotInstalled")
	require.NoError(t, err)
	assert.Equal(t, "false", strings.TrimSpace(out))

	_, err = run(t, "device", "install", "org.torproject.android")
	require.NoError(t, err)

	out, err = run(t, "call", "--local", "orbot_check", "isOrbotInstalled")
	require.NoError(t, err)
	assert.Equal(t, "true", strings.TrimSpace(out))

	_, err = run(t, "call", "--local", "onl.coconut.wallet/app-event-icon", "changeAppEventIcon", "app_event_icon_change=y")
	require.NoError(t, err)

	out, err = run(t, "call", "--local", "onl.coconut.wallet/app-event-icon", "getCurrentIconName")
	require.NoError(t, err)
	assert.Equal(t, `"birthday"`, strings.TrimSpace(out))

	_, err = run(t, "call", "--local", "onl.coconut.wallet/app-event-icon", "changeAppEventIcon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT")

	out, err = run(t, "device", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"onl.coconut.wallet.MainActivityEventIcon" = true`)

	out, err = run(t, "channels", "--local")
	require.NoError(t, err)
	assert.Contains(t, out, "orbot_launcher")
}

func TestCommandRejectsUnknownHost(t *testing.T) {
	_, err := run(t, "--host", "toaster", "channels", "--local")
	require.Error(t, err)
}
