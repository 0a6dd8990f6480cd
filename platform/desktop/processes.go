package desktop

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// processes tracks launched application processes by app id.
type processes struct {
	log    *zap.Logger
	logDir string

	mu      sync.Mutex
	running map[string]*exec.Cmd
}

func newProcesses(logDir string, log *zap.Logger) *processes {
	return &processes{
		log:     log,
		logDir:  logDir,
		running: make(map[string]*exec.Cmd),
	}
}

// start spawns app through the user's shell so their profile is available.
// Stdout and stderr go to a log file.
func (p *processes) start(id string, app App) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.aliveLocked(id) {
		return nil
	}
	if err := os.MkdirAll(p.logDir, 0755); err != nil {
		return Error.Wrap(err)
	}

	cmd := buildCommand(app)
	logPath := filepath.Join(p.logDir, filepath.Base(id)+".log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return Error.New("create log file: %v", err)
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return Error.New("start %s: %v", id, err)
	}
	p.running[id] = cmd
	p.log.Info("app started", zap.String("app", id), zap.Int("pid", cmd.Process.Pid), zap.String("log", logPath))

	go func() {
		_ = cmd.Wait()
		logFile.Close()
	}()
	return nil
}

func (p *processes) stop(id string) {
	p.mu.Lock()
	cmd, ok := p.running[id]
	delete(p.running, id)
	p.mu.Unlock()

	if ok {
		killProcessGroup(cmd)
		p.log.Info("app stopped", zap.String("app", id))
	}
}

func (p *processes) alive(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aliveLocked(id)
}

func (p *processes) aliveLocked(id string) bool {
	cmd, ok := p.running[id]
	if !ok {
		return false
	}
	if cmd.Process == nil || !processAlive(cmd.Process.Pid) {
		delete(p.running, id)
		return false
	}
	return true
}

func (p *processes) stopAll() {
	p.mu.Lock()
	ids := make([]string, 0, len(p.running))
	for id := range p.running {
		ids = append(ids, id)
	}
	p.mu.Unlock()

	for _, id := range ids {
		p.stop(id)
	}
}
