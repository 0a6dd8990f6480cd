//go:build !windows

package desktop

import (
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// killProcessGroup sends SIGTERM to the process group and waits up to one
// second before falling back to SIGKILL.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid

	_ = syscall.Kill(-pid, syscall.SIGTERM)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

func buildCommand(app App) *exec.Cmd {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	full := "exec " + shellQuote(app.Command)
	for _, arg := range app.Args {
		full += " " + shellQuote(arg)
	}

	cmd := exec.Command(shell, "-l", "-c", full)
	// Own process group, so stopping reaches the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Dir = app.WorkingDir
	if len(app.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range app.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	return cmd
}

func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
