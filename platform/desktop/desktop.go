// Package desktop runs the bridge against a workstation. Applications are
// local executables, URLs go to the OS opener and app settings open the
// bridge's config directory. There is no icon mechanism.
package desktop

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// Error is the class of desktop host errors.
var Error = errs.Class("desktop")

// App describes how an application id maps to a local program.
type App struct {
	ID         string            `mapstructure:"id"`
	Command    string            `mapstructure:"command"`
	Args       []string          `mapstructure:"args"`
	Env        map[string]string `mapstructure:"env"`
	WorkingDir string            `mapstructure:"working_dir"`
}

// Config configures the desktop host.
type Config struct {
	AppID string `mapstructure:"app_id"`
	// Apps maps application ids to programs. Ids without an entry are
	// looked up on PATH by name.
	Apps []App `mapstructure:"apps"`
	// SettingsDir is opened by OpenAppSettings.
	SettingsDir string `mapstructure:"settings_dir"`
	// LogDir receives one log file per launched application.
	LogDir string `mapstructure:"log_dir"`
}

// Host implements platform.Host on a desktop OS.
type Host struct {
	cfg   Config
	log   *zap.Logger
	procs *processes
	open  func(target string) error
}

// New returns a desktop host. Call Close to stop launched applications.
func New(cfg Config, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.LogDir == "" {
		cfg.LogDir = os.TempDir()
	}
	return &Host{
		cfg:   cfg,
		log:   log,
		procs: newProcesses(cfg.LogDir, log),
		open:  openWithOS,
	}
}

func (h *Host) OSVersion() string { return runtime.GOOS + "/" + runtime.GOARCH }

func (h *Host) SDKLevel() int { return 0 }

func (h *Host) AppID() string { return h.cfg.AppID }

func (h *Host) app(appID string) App {
	for _, app := range h.cfg.Apps {
		if app.ID == appID {
			return app
		}
	}
	return App{ID: appID, Command: appID}
}

// IsInstalled reports whether the program behind appID can be found.
func (h *Host) IsInstalled(appID string) (bool, error) {
	if _, err := exec.LookPath(h.app(appID).Command); err != nil {
		return false, nil
	}
	return true, nil
}

// LaunchApp starts the program behind appID unless it is already running.
func (h *Host) LaunchApp(appID string) error {
	return h.procs.start(appID, h.app(appID))
}

// Running reports whether a launched application is still alive.
func (h *Host) Running(appID string) bool {
	return h.procs.alive(appID)
}

func (h *Host) OpenURL(url string) error {
	if err := h.open(url); err != nil {
		return Error.New("open %s: %v", url, err)
	}
	return nil
}

// OpenAppSettings opens the settings directory in the file manager.
func (h *Host) OpenAppSettings(string) error {
	if h.cfg.SettingsDir == "" {
		return Error.New("no settings directory configured")
	}
	if err := os.MkdirAll(h.cfg.SettingsDir, 0755); err != nil {
		return Error.Wrap(err)
	}
	return h.OpenURL(h.cfg.SettingsDir)
}

// Close stops every application launched by the host.
func (h *Host) Close() error {
	h.procs.stopAll()
	return nil
}

func openWithOS(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
