// Package platform declares the operations a host operating system
// provides to the bridge. Native shells, the simulator and the desktop host
// implement these; capability providers only ever see the interfaces.
package platform

// Device reports static facts about the host.
type Device interface {
	// OSVersion is the user-visible OS release, e.g. "14" or "17.4".
	OSVersion() string
	// SDKLevel is the platform API level, 0 where it has no meaning.
	SDKLevel() int
	// AppID is this application's identifier on the platform.
	AppID() string
}

// AppRegistry answers questions about installed applications.
type AppRegistry interface {
	IsInstalled(appID string) (bool, error)
}

// Launcher issues navigation requests to the OS.
type Launcher interface {
	// LaunchApp brings the application with appID to the foreground.
	LaunchApp(appID string) error
	// OpenURL hands url to the OS (store listings, custom schemes).
	OpenURL(url string) error
	// OpenAppSettings shows the OS settings page of appID.
	OpenAppSettings(appID string) error
}

// Host is the mandatory surface every platform provides.
type Host interface {
	Device
	AppRegistry
	Launcher
}

// AlternateIcons is implemented by hosts with a native alternate-icon
// primitive.
type AlternateIcons interface {
	SupportsAlternateIcons() bool
	// SetAlternateIconName switches to name ("" for the primary icon) and
	// calls done once the OS has applied or rejected the change. done may
	// run on any goroutine.
	SetAlternateIconName(name string, done func(err error))
	// AlternateIconName returns the active alternate icon, "" for primary.
	AlternateIconName() (string, error)
}

// ComponentRegistry is implemented by hosts that express launcher
// identities as components that can be enabled or disabled.
type ComponentRegistry interface {
	SetComponentEnabled(component string, enabled bool) error
	ComponentEnabled(component string) (bool, error)
}
