// Package lifecycle guards the single running trading loop with a pid file.
package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrAlreadyRunning is returned by Acquire when a live process holds the pid file.
var ErrAlreadyRunning = errors.New("trader already running")

// PIDFile records the pid of the running loop.
type PIDFile struct {
	Path string
}

// New returns a PIDFile at path. Nothing is written until Acquire.
func New(path string) *PIDFile { return &PIDFile{Path: path} }

// Read returns the recorded pid, or 0 when no file exists.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file %s: %w", p.Path, err)
	}
	return pid, nil
}

// Acquire writes the current pid. A stale file left by a dead process is replaced.
func (p *PIDFile) Acquire() error {
	pid, err := p.Read()
	if err != nil {
		return err
	}
	if pid != 0 && pid != os.Getpid() && alive(pid) {
		return fmt.Errorf("%w: pid %d (%s)", ErrAlreadyRunning, pid, p.Path)
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create pid dir: %w", err)
	}
	return os.WriteFile(p.Path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// Release removes the file if it still holds our pid.
func (p *PIDFile) Release() error {
	pid, err := p.Read()
	if err != nil || pid != os.Getpid() {
		return err
	}
	return os.Remove(p.Path)
}

// TerminateRunning sends SIGTERM to the recorded process and waits up to
// timeout for it to exit. It returns the pid signalled, or 0 if none was running.
func (p *PIDFile) TerminateRunning(timeout time.Duration) (int, error) {
	return p.Signal(syscall.SIGTERM, timeout)
}

// Signal delivers sig to the recorded process and waits up to timeout for it
// to exit. It returns the pid signalled, or 0 if none was running.
func (p *PIDFile) Signal(sig syscall.Signal, timeout time.Duration) (int, error) {
	pid, err := p.Read()
	if err != nil || pid == 0 || pid == os.Getpid() || !alive(pid) {
		return 0, err
	}
	if err := syscall.Kill(pid, sig); err != nil {
		return pid, fmt.Errorf("signal pid %d: %w", pid, err)
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !alive(pid) {
			return pid, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return pid, fmt.Errorf("pid %d still running after %s", pid, timeout)
}

func alive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
