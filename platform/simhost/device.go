// Package simhost is an in-process simulated phone. It implements the
// platform interfaces against a State that can be persisted to TOML, so the
// bridge can be served and exercised without a native shell.
package simhost

import (
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"walletbridge/platform"
)

// Error is the class of simulated device errors.
var Error = errs.Class("simhost")

// Device is a simulated phone. It is safe for concurrent use.
type Device struct {
	log  *zap.Logger
	path string

	mu    sync.Mutex
	state State

	// icon changes complete in request order
	iconMu     sync.Mutex
	iconTurn   *sync.Cond
	iconNext   uint64
	iconServed uint64
}

// New returns a device holding st in memory only.
func New(st State, log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	if st.Flavour == "" {
		st.Flavour = Android
	}
	d := &Device{log: log, state: st.clone()}
	d.iconTurn = sync.NewCond(&d.iconMu)
	return d
}

// Open loads the device persisted at path, starting from fallback when the
// file does not exist yet. Every mutation is written back to path.
func Open(path string, fallback State, log *zap.Logger) (*Device, error) {
	st, err := Load(path, fallback)
	if err != nil {
		return nil, err
	}
	d := New(st, log)
	d.path = path
	return d, nil
}

// State returns a snapshot of the device.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.clone()
}

// Host returns the device viewed through the platform interfaces of its
// flavour.
func (d *Device) Host() platform.Host {
	if d.State().Flavour == IOS {
		return iosHost{d}
	}
	return androidHost{d}
}

// update applies fn under the lock and persists the result.
func (d *Device) update(fn func(st *State) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := fn(&d.state); err != nil {
		return err
	}
	if d.path == "" {
		return nil
	}
	return Save(d.path, d.state)
}

// Install adds appID to the installed applications.
func (d *Device) Install(appID string) error {
	return d.update(func(st *State) error {
		if !slices.Contains(st.Installed, appID) {
			st.Installed = append(st.Installed, appID)
		}
		return nil
	})
}

// Uninstall removes appID from the installed applications.
func (d *Device) Uninstall(appID string) error {
	return d.update(func(st *State) error {
		st.Installed = slices.DeleteFunc(st.Installed, func(id string) bool { return id == appID })
		return nil
	})
}

// SetURLSchemes replaces the URL schemes the device can open.
func (d *Device) SetURLSchemes(schemes ...string) error {
	return d.update(func(st *State) error {
		st.URLSchemes = append([]string(nil), schemes...)
		return nil
	})
}

// SetAlternateIconSupport toggles the alternate-icon capability flag.
func (d *Device) SetAlternateIconSupport(supported bool) error {
	return d.update(func(st *State) error {
		st.SupportsAlternateIcons = supported
		return nil
	})
}

// Reset clears the navigation journal.
func (d *Device) Reset() error {
	return d.update(func(st *State) error {
		st.Journal = Journal{}
		return nil
	})
}

func (d *Device) OSVersion() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.OSVersion
}

func (d *Device) SDKLevel() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.SDKLevel
}

func (d *Device) AppID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.AppID
}

func (d *Device) IsInstalled(appID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Contains(d.state.Installed, appID), nil
}

func (d *Device) LaunchApp(appID string) error {
	return d.update(func(st *State) error {
		if !slices.Contains(st.Installed, appID) {
			return Error.New("no launch intent for %s", appID)
		}
		st.Journal.Launched = append(st.Journal.Launched, appID)
		d.log.Debug("app launched", zap.String("app", appID))
		return nil
	})
}

func (d *Device) OpenURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return Error.Wrap(err)
	}
	return d.update(func(st *State) error {
		if !slices.Contains(st.URLSchemes, u.Scheme) {
			return Error.New("no handler for %s", raw)
		}
		st.Journal.URLs = append(st.Journal.URLs, raw)
		d.log.Debug("url opened", zap.String("url", raw))
		return nil
	})
}

func (d *Device) OpenAppSettings(appID string) error {
	return d.update(func(st *State) error {
		st.Journal.Settings = append(st.Journal.Settings, appID)
		return nil
	})
}

// androidHost exposes launcher components.
type androidHost struct{ *Device }

func (h androidHost) SetComponentEnabled(component string, enabled bool) error {
	return h.update(func(st *State) error {
		if _, ok := st.Components[component]; !ok {
			return Error.New("component %s not declared in manifest", component)
		}
		st.Components[component] = enabled
		return nil
	})
}

func (h androidHost) ComponentEnabled(component string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	enabled, ok := h.state.Components[component]
	if !ok {
		return false, Error.New("component %s not declared in manifest", component)
	}
	return enabled, nil
}

// iosHost exposes the alternate-icon primitive.
type iosHost struct{ *Device }

func (h iosHost) SupportsAlternateIcons() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.SupportsAlternateIcons
}

func (h iosHost) SetAlternateIconName(name string, done func(error)) {
	h.mu.Lock()
	latency := time.Duration(h.state.IconLatencyMS) * time.Millisecond
	h.mu.Unlock()

	h.iconMu.Lock()
	ticket := h.iconNext
	h.iconNext++
	h.iconMu.Unlock()

	apply := func() {
		h.iconMu.Lock()
		for h.iconServed != ticket {
			h.iconTurn.Wait()
		}
		h.iconMu.Unlock()

		err := h.update(func(st *State) error {
			if !st.SupportsAlternateIcons {
				return Error.New("alternate icons are not supported")
			}
			if name != "" && !slices.Contains(st.AlternateIcons, name) {
				return Error.New("icon %s is not bundled", name)
			}
			st.AlternateIcon = name
			return nil
		})

		h.iconMu.Lock()
		h.iconServed++
		h.iconTurn.Broadcast()
		h.iconMu.Unlock()
		done(err)
	}
	if latency <= 0 {
		apply()
		return
	}
	time.AfterFunc(latency, apply)
}

func (h iosHost) AlternateIconName() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.AlternateIcon, nil
}
