// Package proxy detects and launches the Orbot proxy application.
package proxy

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"walletbridge/channel"
	"walletbridge/platform"
)

// OrbotAppID is the store identifier of Orbot.
const OrbotAppID = "org.torproject.android"

// DefaultStoreURLs are tried in order to show a store listing. %s is
// replaced by the app id.
var DefaultStoreURLs = []string{
	"market://details?id=%s",
	"https://play.google.com/store/apps/details?id=%s",
}

// Config names the proxy app and how to reach its store listing.
type Config struct {
	AppID     string   `mapstructure:"app_id"`
	StoreURLs []string `mapstructure:"store_urls"`
}

// Provider implements the proxy-app capability.
type Provider struct {
	apps     platform.AppRegistry
	launcher platform.Launcher
	cfg      Config
	log      *zap.Logger
}

// New returns a provider. Empty config fields fall back to Orbot's
// defaults.
func New(apps platform.AppRegistry, launcher platform.Launcher, cfg Config, log *zap.Logger) *Provider {
	if cfg.AppID == "" {
		cfg.AppID = OrbotAppID
	}
	if len(cfg.StoreURLs) == 0 {
		cfg.StoreURLs = DefaultStoreURLs
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{apps: apps, launcher: launcher, cfg: cfg, log: log}
}

// AppID returns the proxy app identifier.
func (p *Provider) AppID() string { return p.cfg.AppID }

// IsInstalled reports whether the proxy app is present. Registry failures
// count as "not installed".
func (p *Provider) IsInstalled(context.Context) bool {
	ok, err := p.apps.IsInstalled(p.cfg.AppID)
	if err != nil {
		p.log.Warn("app registry lookup failed", zap.String("app", p.cfg.AppID), zap.Error(err))
		return false
	}
	return ok
}

// LaunchOrInstall foregrounds the proxy app and resolves true, or opens
// its store listing and resolves false.
func (p *Provider) LaunchOrInstall(ctx context.Context) *channel.Reply {
	if p.IsInstalled(ctx) {
		if err := p.launcher.LaunchApp(p.cfg.AppID); err != nil {
			p.log.Warn("launch failed", zap.String("app", p.cfg.AppID), zap.Error(err))
			return channel.Fail(channel.AsCallError(err, channel.CodeLaunchError))
		}
		p.log.Info("proxy app launched", zap.String("app", p.cfg.AppID))
		return channel.Succeed(true)
	}

	var last error
	for _, tmpl := range p.cfg.StoreURLs {
		url := storeURL(tmpl, p.cfg.AppID)
		if err := p.launcher.OpenURL(url); err != nil {
			p.log.Debug("store url rejected", zap.String("url", url), zap.Error(err))
			last = err
			continue
		}
		p.log.Info("store listing opened", zap.String("url", url))
		return channel.Succeed(false)
	}
	if last == nil {
		last = fmt.Errorf("no store listing configured for %s", p.cfg.AppID)
	}
	return channel.Fail(channel.AsCallError(last, channel.CodeLaunchError))
}

func storeURL(tmpl, appID string) string {
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, appID)
	}
	return tmpl
}
