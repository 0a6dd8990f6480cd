//go:build windows

package desktop

import (
	"os"
	"os/exec"
	"strings"
	"syscall"
)

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func shellQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func buildCommand(app App) *exec.Cmd {
	full := shellQuote(app.Command)
	for _, arg := range app.Args {
		full += " " + shellQuote(arg)
	}

	cmd := exec.Command("cmd.exe", "/c", full)
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
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
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
