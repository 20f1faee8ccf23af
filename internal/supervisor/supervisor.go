// Package supervisor runs the child command with credential endpoint
// variables in its environment and relays termination signals to it.
package supervisor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/majorcontext/assumer/internal/log"
)

// Config describes the child to run.
type Config struct {
	Command string
	Args    []string
	// Port and Token identify the credential endpoint.
	Port  uint16
	Token string
	// BaseEnv is the environment before injection. Nil means os.Environ().
	BaseEnv []string

	// Stdio defaults to the supervisor's own.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ExitStatus describes how the child ended.
type ExitStatus struct {
	// Code is the exit code, or 128+signal when the child was killed.
	Code int
	// Signal is set when the child was terminated by a signal.
	Signal syscall.Signal
}

// Signaled reports whether the child was terminated by a signal.
func (s ExitStatus) Signaled() bool { return s.Signal != 0 }

// Supervisor owns one child process.
type Supervisor struct {
	cfg Config
	cmd *exec.Cmd

	done    chan struct{}
	waitErr error
}

// New returns a Supervisor for cfg. Nothing is started.
func New(cfg Config) *Supervisor {
	return &Supervisor{cfg: cfg}
}

// Start spawns the child. A spawn failure (command not found, permission
// denied) is returned as is; there is no retry.
func (s *Supervisor) Start() error {
	if s.cmd != nil {
		return errors.New("supervisor already started")
	}

	base := s.cfg.BaseEnv
	if base == nil {
		base = os.Environ()
	}

	cmd := exec.Command(s.cfg.Command, s.cfg.Args...)
	cmd.Env = Env(base, s.cfg.Port, s.cfg.Token)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if s.cfg.Stdin != nil {
		cmd.Stdin = s.cfg.Stdin
	}
	if s.cfg.Stdout != nil {
		cmd.Stdout = s.cfg.Stdout
	}
	if s.cfg.Stderr != nil {
		cmd.Stderr = s.cfg.Stderr
	}

	log.Debug("spawning child process", "command", s.cfg.Command, "args", s.cfg.Args)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", s.cfg.Command, err)
	}
	log.Debug("child process started", "pid", cmd.Process.Pid)

	s.cmd = cmd
	s.done = make(chan struct{})
	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()
	return nil
}

// Pid returns the child's process id, or 0 before Start.
func (s *Supervisor) Pid() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Wait blocks until the child exits. Every signal received on signals while
// the child is running is delivered to it; delivery failures are logged and
// waiting continues. signals must stay open while the child runs: a closed
// channel means its producer is gone, which panics.
func (s *Supervisor) Wait(signals <-chan os.Signal) (ExitStatus, error) {
	if s.cmd == nil {
		return ExitStatus{}, errors.New("supervisor not started")
	}

	for {
		select {
		case <-s.done:
			return s.status()
		case sig, ok := <-signals:
			// The child may already be reaped, and its pid reused.
			if s.exited() {
				return s.status()
			}
			if !ok {
				panic("supervisor: signal channel closed while child is running")
			}
			pid := s.Pid()
			log.Debug("forwarding signal to child", "signal", sig, "pid", pid)
			if err := deliver(s.cmd.Process, sig); err != nil {
				log.Error("failed to signal child process", "signal", sig, "pid", pid, "error", err)
			}
		}
	}
}

func (s *Supervisor) exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Supervisor) status() (ExitStatus, error) {
	st := ExitStatus{Code: s.cmd.ProcessState.ExitCode()}
	if ws, ok := s.cmd.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		st.Signal = ws.Signal()
		st.Code = 128 + int(st.Signal)
	}
	log.Debug("child process exited", "pid", s.Pid(), "code", st.Code, "signal", st.Signal)

	var exitErr *exec.ExitError
	if s.waitErr != nil && !errors.As(s.waitErr, &exitErr) {
		return st, fmt.Errorf("waiting for %s: %w", s.cfg.Command, s.waitErr)
	}
	return st, nil
}
