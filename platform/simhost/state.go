package simhost

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Flavour selects which family of platform primitives the device offers.
type Flavour string

const (
	// Android devices switch icons through launcher components.
	Android Flavour = "android"
	// IOS devices switch icons through the alternate-icon primitive.
	IOS Flavour = "ios"
)

// Journal records the navigation requests the device received.
type Journal struct {
	Launched []string `toml:"launched"`
	URLs     []string `toml:"urls"`
	Settings []string `toml:"settings"`
}

// State is the persisted form of a simulated device.
type State struct {
	Flavour   Flavour `toml:"flavour"`
	OSVersion string  `toml:"os_version"`
	SDKLevel  int     `toml:"sdk_level"`
	AppID     string  `toml:"app_id"`

	Installed []string `toml:"installed"`
	// URLSchemes the device has a handler for. An empty list means no
	// store or browser is available.
	URLSchemes []string `toml:"url_schemes"`

	// Components maps launcher components to their enablement (android).
	Components map[string]bool `toml:"components"`

	// AlternateIcons lists the icon names bundled with the app (ios).
	AlternateIcons         []string `toml:"alternate_icons"`
	SupportsAlternateIcons bool     `toml:"supports_alternate_icons"`
	AlternateIcon          string   `toml:"alternate_icon"`
	IconLatencyMS          int      `toml:"icon_latency_ms"`

	Journal Journal `toml:"journal"`
}

// DefaultState returns a freshly installed wallet on the given flavour.
func DefaultState(flavour Flavour) State {
	st := State{
		Flavour:    flavour,
		AppID:      "onl.coconut.wallet",
		URLSchemes: []string{"market", "https"},
	}
	switch flavour {
	case IOS:
		st.OSVersion = "17.4"
		st.URLSchemes = []string{"https"}
		st.AlternateIcons = []string{"birthday"}
		st.SupportsAlternateIcons = true
	default:
		st.Flavour = Android
		st.OSVersion = "14"
		st.SDKLevel = 34
		st.Components = map[string]bool{
			"onl.coconut.wallet.MainActivity":          true,
			"onl.coconut.wallet.MainActivityEventIcon": false,
		}
	}
	return st
}

// Load reads a state file. A missing file yields fallback.
func Load(path string, fallback State) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fallback, nil
		}
		return State{}, Error.Wrap(err)
	}
	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return State{}, Error.New("parse %s: %v", path, err)
	}
	if st.Flavour == "" {
		st.Flavour = fallback.Flavour
	}
	return st, nil
}

// Save writes st to path, creating the directory if needed.
func Save(path string, st State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return Error.Wrap(err)
	}
	sort.Strings(st.Installed)

	var buf bytes.Buffer
	buf.WriteString("# Simulated wallet device\n\n")
	if err := toml.NewEncoder(&buf).Encode(st); err != nil {
		return Error.Wrap(err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(os.Rename(tmp, path))
}

func (st State) clone() State {
	out := st
	out.Installed = append([]string(nil), st.Installed...)
	out.URLSchemes = append([]string(nil), st.URLSchemes...)
	out.AlternateIcons = append([]string(nil), st.AlternateIcons...)
	if st.Components != nil {
		out.Components = make(map[string]bool, len(st.Components))
		for k, v := range st.Components {
			out.Components[k] = v
		}
	}
	out.Journal = Journal{
		Launched: append([]string(nil), st.Journal.Launched...),
		URLs:     append([]string(nil), st.Journal.URLs...),
		Settings: append([]string(nil), st.Journal.Settings...),
	}
	return out
}
