// Package pidfile records the PID of a running listener so scripts can find
// and signal it.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned by Write when the file names another live process
var ErrAlreadyRunning = errors.New("another instance is running")

// Pidfile represents a PID file
type Pidfile struct {
	path string
}

// New creates a new PID file instance
func New(path string) *Pidfile {
	return &Pidfile{path: path}
}

// Write stores the current PID. An existing file is replaced unless it names
// a different process that is still alive.
func (p *Pidfile) Write() error {
	if pid, err := p.Read(); err == nil && pid != os.Getpid() && processAlive(pid) {
		return fmt.Errorf("%w (pid %d, %s)", ErrAlreadyRunning, pid, p.path)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create pidfile directory: %w", err)
	}

	content := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(p.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write pidfile: %w", err)
	}
	return nil
}

// Read reads the PID from the PID file
func (p *Pidfile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read pidfile: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in pidfile %s", p.path)
	}
	return pid, nil
}

// Remove removes the PID file if it still names this process
func (p *Pidfile) Remove() error {
	if pid, err := p.Read(); err == nil && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pidfile: %w", err)
	}
	return nil
}

// Path returns the PID file path
func (p *Pidfile) Path() string {
	return p.path
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
