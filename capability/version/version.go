// Package version reports static host facts.
package version

import "walletbridge/platform"

// Provider reads version constants from the device.
type Provider struct {
	device platform.Device
}

// New returns a provider backed by device.
func New(device platform.Device) *Provider {
	return &Provider{device: device}
}

// PlatformVersion returns the OS release string.
func (p *Provider) PlatformVersion() string {
	return p.device.OSVersion()
}

// SDKLevel returns the platform API level.
func (p *Provider) SDKLevel() int {
	return p.device.SDKLevel()
}
