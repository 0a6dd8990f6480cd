// Package wallet assembles the capability providers into the channels the
// wallet UI calls.
package wallet

import (
	"context"

	"go.uber.org/zap"

	"walletbridge/capability/icon"
	"walletbridge/capability/proxy"
	"walletbridge/capability/settings"
	"walletbridge/capability/version"
	"walletbridge/channel"
	"walletbridge/platform"
)

// Channel names.
const (
	OSChannel            = "onl.coconut.wallet/os"
	IconChannel          = "onl.coconut.wallet/app-event-icon"
	SettingsChannel      = "app-settings"
	OrbotCheckChannel    = "orbot_check"
	OrbotLauncherChannel = "orbot_launcher"
)

// Config carries the application-level declarations the providers need.
type Config struct {
	Icons icon.Catalog `mapstructure:"icons"`
	Proxy proxy.Config `mapstructure:"proxy"`
}

// DefaultConfig returns the declarations the wallet ships with.
func DefaultConfig() Config {
	return Config{
		Icons: icon.Catalog{
			Default: icon.DefaultVariant,
			Main:    "onl.coconut.wallet.MainActivity",
			Variants: map[string]string{
				icon.DefaultVariant: "onl.coconut.wallet.MainActivityEventIcon",
			},
		},
		Proxy: proxy.Config{
			AppID:     proxy.OrbotAppID,
			StoreURLs: proxy.DefaultStoreURLs,
		},
	}
}

// Providers groups the capability providers behind the channels.
type Providers struct {
	Version  *version.Provider
	Icons    icon.Switcher
	Catalog  icon.Catalog
	Settings *settings.Provider
	Proxy    *proxy.Provider
}

// New builds providers for host. The icon strategy follows the host's
// optional capabilities.
func New(host platform.Host, cfg Config, log *zap.Logger) *Providers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Providers{
		Version:  version.New(host),
		Icons:    icon.Select(host, cfg.Icons, log.Named("icon")),
		Catalog:  cfg.Icons,
		Settings: settings.New(host, host, log.Named("settings")),
		Proxy:    proxy.New(host, host, cfg.Proxy, log.Named("proxy")),
	}
}

type iconChange struct {
	Enable bool    `arg:"app_event_icon_change"`
	Name   *string `arg:"icon_name"`
}

// Handlers returns the method set of every channel.
func (p *Providers) Handlers() map[string]channel.Handler {
	return map[string]channel.Handler{
		OSChannel: channel.NewMethodSet(
			channel.NoArgs("getPlatformVersion", "", func(context.Context) *channel.Reply {
				return channel.Succeed(p.Version.PlatformVersion())
			}),
			channel.NoArgs("getSdkVersion", "", func(context.Context) *channel.Reply {
				return channel.Succeed(p.Version.SDKLevel())
			}),
		),
		IconChannel: channel.NewMethodSet(
			channel.Bind("changeAppEventIcon", channel.Schema{
				channel.Required("app_event_icon_change", channel.Bool),
				channel.Optional("icon_name", channel.String),
			}, channel.CodeIconChangeFailed, func(ctx context.Context, args iconChange) *channel.Reply {
				return p.Icons.SetVariant(ctx, p.Catalog.Pick(args.Enable, args.Name))
			}),
			channel.NoArgs("getCurrentIconName", channel.CodeGetIconFailed, func(ctx context.Context) *channel.Reply {
				name, err := p.Icons.CurrentVariant(ctx)
				if err != nil {
					return channel.FromError(err, channel.CodeGetIconFailed)
				}
				if name == icon.Baseline {
					return channel.Succeed(nil)
				}
				return channel.Succeed(name)
			}),
		),
		SettingsChannel: channel.NewMethodSet(
			channel.NoArgs("openAppSettings", "", p.Settings.OpenAppSettings),
		),
		OrbotCheckChannel: channel.NewMethodSet(
			channel.NoArgs("isOrbotInstalled", "", func(ctx context.Context) *channel.Reply {
				return channel.Succeed(p.Proxy.IsInstalled(ctx))
			}),
		),
		OrbotLauncherChannel: channel.NewMethodSet(
			channel.NoArgs("launchOrbot", channel.CodeLaunchError, p.Proxy.LaunchOrInstall),
		),
	}
}

// Register installs every channel on reg.
func (p *Providers) Register(reg *channel.Registry) {
	for name, h := range p.Handlers() {
		reg.Register(name, h)
	}
}
