package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletbridge/capability/proxy"
	"walletbridge/config"
)

func newViper(dir string) *viper.Viper {
	v := viper.New()
	config.SetDefaults(v, dir)
	return v
}

func TestDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Decode(newViper(dir))
	require.NoError(t, err)

	assert.Equal(t, config.HostSim, cfg.Host)
	assert.Equal(t, filepath.Join(dir, "bridge.sock"), cfg.Socket)
	assert.Equal(t, "birthday", cfg.Wallet.Icons.Default)
	assert.Equal(t, "onl.coconut.wallet.MainActivity", cfg.Wallet.Icons.Main)
	assert.Equal(t, map[string]string{"birthday": "onl.coconut.wallet.MainActivityEventIcon"}, cfg.Wallet.Icons.Variants)
	assert.Equal(t, proxy.OrbotAppID, cfg.Wallet.Proxy.AppID)
	assert.Equal(t, proxy.DefaultStoreURLs, cfg.Wallet.Proxy.StoreURLs)
	assert.Equal(t, "android", cfg.Sim.Flavour)
	assert.Equal(t, dir, cfg.Desktop.SettingsDir)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
host = "desktop"

[web]
addr = "127.0.0.1:9999"

[wallet.proxy]
app_id = "org.example.proxy"

[[desktop.apps]]
id = "org.example.proxy"
command = "proxyd"
args = ["--foreground"]
`), 0600))

	v := newViper(dir)
	require.NoError(t, config.ReadFile(v, dir))
	cfg, err := config.Decode(v)
	require.NoError(t, err)

	assert.Equal(t, config.HostDesktop, cfg.Host)
	assert.Equal(t, "127.0.0.1:9999", cfg.Web.Addr)
	assert.Equal(t, "org.example.proxy", cfg.Wallet.Proxy.AppID)
	assert.Equal(t, proxy.DefaultStoreURLs, cfg.Wallet.Proxy.StoreURLs)
	require.Len(t, cfg.Desktop.Apps, 1)
	assert.Equal(t, "proxyd", cfg.Desktop.Apps[0].Command)
	assert.Equal(t, []string{"--foreground"}, cfg.Desktop.Apps[0].Args)
}

func TestMissingConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.ReadFile(newViper(dir), dir))
}

func TestEnvAndFlags(t *testing.T) {
	t.Setenv("WALLETBRIDGE_SIM_FLAVOUR", "ios")
	t.Setenv("WALLETBRIDGE_HOST", "desktop")

	v := config.New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "")
	require.NoError(t, config.BindFlags(v, flags, map[string]string{"host": "host"}))

	cfg, err := config.Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "ios", cfg.Sim.Flavour)
	assert.Equal(t, config.HostDesktop, cfg.Host)

	require.NoError(t, flags.Parse([]string{"--host", "sim"}))
	cfg, err = config.Decode(v)
	require.NoError(t, err)
	assert.Equal(t, config.HostSim, cfg.Host)

	assert.Error(t, config.BindFlags(v, flags, map[string]string{"nope": "nope"}))
}

func TestInvalidHost(t *testing.T) {
	v := newViper(t.TempDir())
	v.Set("host", "toaster")
	_, err := config.Decode(v)
	require.Error(t, err)
	assert.True(t, config.Error.Has(err))
}

func TestFromJSON(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.FromJSON(`{"wallet": {"icons": {"variants": {"xmas": "onl.coconut.wallet.MainActivityXmasIcon"}}}}`, dir)
	require.NoError(t, err)
	assert.Equal(t, "onl.coconut.wallet.MainActivityXmasIcon", cfg.Wallet.Icons.Variants["xmas"])
	assert.Equal(t, "birthday", cfg.Wallet.Icons.Default)

	cfg, err = config.FromJSON("", dir)
	require.NoError(t, err)
	assert.Equal(t, config.HostSim, cfg.Host)

	_, err = config.FromJSON("{", dir)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := config.NewLogger(config.Log{Development: true, Level: "debug"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1))

	_, err = config.NewLogger(config.Log{Level: "loud"})
	assert.Error(t, err)
}
