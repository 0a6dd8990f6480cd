package mobile

import (
	"errors"

	"walletbridge/platform"
)

// Icon modes reported by NativeHost.IconMode.
const (
	IconModeNative = "native"
	IconModeAlias  = "alias"
	IconModeNone   = "none"
)

// NativeHost is implemented by the Kotlin or Swift shell. Methods that the
// platform lacks may return zero values; IconMode decides which icon
// methods are used.
type NativeHost interface {
	OSVersion() string
	SDKLevel() int
	AppID() string

	IsInstalled(appID string) (bool, error)
	LaunchApp(appID string) error
	OpenURL(url string) error
	OpenAppSettings(appID string) error

	// IconMode is one of "native", "alias" or "none".
	IconMode() string

	SupportsAlternateIcons() bool
	// SetAlternateIconName must eventually call done.Complete exactly once.
	SetAlternateIconName(name string, done *IconCompletion)
	AlternateIconName() (string, error)

	SetComponentEnabled(component string, enabled bool) error
	ComponentEnabled(component string) (bool, error)
}

// IconCompletion is handed to the shell with an icon change request.
type IconCompletion struct {
	done func(error)
}

// Complete reports the outcome of the icon change. An empty errMessage
// means success.
func (c *IconCompletion) Complete(errMessage string) {
	if errMessage == "" {
		c.done(nil)
		return
	}
	c.done(errors.New(errMessage))
}

type nativeHost struct{ NativeHost }

func (h nativeHost) SetAlternateIconName(name string, done func(error)) {
	h.NativeHost.SetAlternateIconName(name, &IconCompletion{done: done})
}

type aliasHost struct{ host NativeHost }

func (h aliasHost) OSVersion() string                      { return h.host.OSVersion() }
func (h aliasHost) SDKLevel() int                          { return h.host.SDKLevel() }
func (h aliasHost) AppID() string                          { return h.host.AppID() }
func (h aliasHost) IsInstalled(appID string) (bool, error) { return h.host.IsInstalled(appID) }
func (h aliasHost) LaunchApp(appID string) error           { return h.host.LaunchApp(appID) }
func (h aliasHost) OpenURL(url string) error               { return h.host.OpenURL(url) }
func (h aliasHost) OpenAppSettings(appID string) error     { return h.host.OpenAppSettings(appID) }

func (h aliasHost) SetComponentEnabled(component string, enabled bool) error {
	return h.host.SetComponentEnabled(component, enabled)
}

func (h aliasHost) ComponentEnabled(component string) (bool, error) {
	return h.host.ComponentEnabled(component)
}

type plainHost struct{ host NativeHost }

func (h plainHost) OSVersion() string                      { return h.host.OSVersion() }
func (h plainHost) SDKLevel() int                          { return h.host.SDKLevel() }
func (h plainHost) AppID() string                          { return h.host.AppID() }
func (h plainHost) IsInstalled(appID string) (bool, error) { return h.host.IsInstalled(appID) }
func (h plainHost) LaunchApp(appID string) error           { return h.host.LaunchApp(appID) }
func (h plainHost) OpenURL(url string) error               { return h.host.OpenURL(url) }
func (h plainHost) OpenAppSettings(appID string) error     { return h.host.OpenAppSettings(appID) }

// adapt exposes exactly the platform interfaces matching the host's icon
// mode.
func adapt(host NativeHost) platform.Host {
	switch host.IconMode() {
	case IconModeNative:
		return nativeHost{host}
	case IconModeAlias:
		return aliasHost{host}
	default:
		return plainHost{host}
	}
}
