// Package config loads walletbridge settings from defaults, an optional
// config.toml in the user config directory, WALLETBRIDGE_* environment
// variables and command-line flags, in increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"

	"walletbridge/bridge"
	"walletbridge/platform/desktop"
	"walletbridge/wallet"
)

// Error is the class of configuration errors.
var Error = errs.Class("config")

// EnvPrefix prefixes environment overrides, e.g. WALLETBRIDGE_HOST.
const EnvPrefix = "WALLETBRIDGE"

// Host kinds.
const (
	HostSim     = "sim"
	HostDesktop = "desktop"
)

// Log configures the zap logger.
type Log struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Sim configures the simulated device.
type Sim struct {
	Path    string `mapstructure:"path"`
	Flavour string `mapstructure:"flavour"`
}

// Config is the complete walletbridge configuration.
type Config struct {
	Log     Log              `mapstructure:"log"`
	Host    string           `mapstructure:"host"`
	Socket  string           `mapstructure:"socket"`
	Web     bridge.WebConfig `mapstructure:"web"`
	Wallet  wallet.Config    `mapstructure:"wallet"`
	Sim     Sim              `mapstructure:"sim"`
	Desktop desktop.Config   `mapstructure:"desktop"`
}

// Dir returns the platform config directory for walletbridge.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.UserHomeDir()
	}
	return filepath.Join(dir, "walletbridge")
}

// New returns a viper instance carrying the defaults and environment
// bindings.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v, Dir())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every default value, rooting paths at dir.
func SetDefaults(v *viper.Viper, dir string) {
	w := wallet.DefaultConfig()

	v.SetDefault("log.development", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("host", HostSim)
	v.SetDefault("socket", filepath.Join(dir, "bridge.sock"))
	v.SetDefault("web.addr", "127.0.0.1:8765")
	v.SetDefault("web.origins", []string{})

	v.SetDefault("wallet.icons.default", w.Icons.Default)
	v.SetDefault("wallet.icons.main", w.Icons.Main)
	v.SetDefault("wallet.icons.variants", w.Icons.Variants)
	v.SetDefault("wallet.proxy.app_id", w.Proxy.AppID)
	v.SetDefault("wallet.proxy.store_urls", w.Proxy.StoreURLs)

	v.SetDefault("sim.path", filepath.Join(dir, "device.toml"))
	v.SetDefault("sim.flavour", "android")

	v.SetDefault("desktop.app_id", "onl.coconut.wallet")
	v.SetDefault("desktop.settings_dir", dir)
	v.SetDefault("desktop.log_dir", filepath.Join(dir, "logs"))
}

// ReadFile merges dir/config.toml into v when the file exists.
func ReadFile(v *viper.Viper, dir string) error {
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return Error.Wrap(err)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Error.New("read %s: %v", path, err)
	}
	return nil
}

// BindFlags lets set flags override the matching keys. Flag names use
// dashes where keys use underscores.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			return Error.New("unknown flag %q", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return Error.Wrap(err)
		}
	}
	return nil
}

// Decode unmarshals the merged settings of v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, Error.Wrap(err)
	}
	switch cfg.Host {
	case HostSim, HostDesktop:
	default:
		return Config{}, Error.New("unknown host %q (want %s or %s)", cfg.Host, HostSim, HostDesktop)
	}
	return cfg, nil
}

// Load reads the config file from the user config directory and decodes
// the result.
func Load() (*viper.Viper, Config, error) {
	v := New()
	if err := ReadFile(v, Dir()); err != nil {
		return nil, Config{}, err
	}
	cfg, err := Decode(v)
	return v, cfg, err
}

// FromJSON decodes a JSON document over the defaults. An empty document
// yields the defaults.
func FromJSON(doc string, dir string) (Config, error) {
	v := viper.New()
	SetDefaults(v, dir)
	if strings.TrimSpace(doc) != "" {
		v.SetConfigType("json")
		if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
			return Config{}, Error.New("parse config: %v", err)
		}
	}
	return Decode(v)
}
