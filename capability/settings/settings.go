// Package settings hands off to the OS settings page of the application.
package settings

import (
	"context"

	"go.uber.org/zap"

	"walletbridge/channel"
	"walletbridge/platform"
)

// Provider opens the application's settings screen.
type Provider struct {
	device   platform.Device
	launcher platform.Launcher
	log      *zap.Logger
}

// New returns a settings provider.
func New(device platform.Device, launcher platform.Launcher, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{device: device, launcher: launcher, log: log}
}

// OpenAppSettings issues the navigation request and succeeds once it has
// been issued. The settings screen's lifecycle is not observed.
func (p *Provider) OpenAppSettings(context.Context) *channel.Reply {
	appID := p.device.AppID()
	if err := p.launcher.OpenAppSettings(appID); err != nil {
		p.log.Warn("settings navigation failed", zap.String("app", appID), zap.Error(err))
	}
	return channel.Succeed(nil)
}
