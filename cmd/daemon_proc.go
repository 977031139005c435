package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// childEnv marks the re-executed process of `daemon --detach`.
const childEnv = "LEDGERCAST_DAEMON_CHILD"

// daemonInfo is written next to the PID file so status can find the API
// without re-reading config.
type daemonInfo struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	Schedule  string    `json:"schedule"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
}

// pidFile owns the daemon's PID file and its JSON sidecar.
type pidFile string

func (p pidFile) infoPath() string {
	return string(p) + ".json"
}

// claim fails when a live daemon owns the file and clears stale leftovers.
func (p pidFile) claim() error {
	pid, err := p.pid()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return os.MkdirAll(filepath.Dir(string(p)), 0o750)
	case err != nil:
		return err
	case alive(pid):
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	p.clear()
	return nil
}

func (p pidFile) pid() (int, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", p)
	}
	return pid, nil
}

func (p pidFile) write(info daemonInfo) error {
	if err := os.WriteFile(string(p), []byte(strconv.Itoa(info.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.infoPath(), append(data, '\n'), 0o600)
}

func (p pidFile) info() (daemonInfo, error) {
	var info daemonInfo
	data, err := os.ReadFile(p.infoPath())
	if err != nil {
		return info, err
	}
	err = json.Unmarshal(data, &info)
	return info, err
}

func (p pidFile) clear() {
	_ = os.Remove(string(p))
	_ = os.Remove(p.infoPath())
}

// alive reports whether pid names a running process we could signal.
func alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// terminate sends SIGTERM and polls until the process exits or ctx ends.
func terminate(ctx context.Context, pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	for alive(pid) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
		case <-tick.C:
		}
	}
	return nil
}

// spawnDetached re-executes the current binary without --detach, with
// output appended to logPath.
func spawnDetached(logPath string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return 0, fmt.Errorf("create daemon log directory: %w", err)
	}
	logf, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return 0, fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, withoutDetach(os.Args[1:])...)
	child.Stdout = logf
	child.Stderr = logf
	child.Env = append(os.Environ(), childEnv+"=1")
	if err := child.Start(); err != nil {
		return 0, fmt.Errorf("start detached daemon: %w", err)
	}
	return child.Process.Pid, nil
}

func withoutDetach(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
