// Package assumer coordinates a run: it binds the credential endpoint, starts
// the child with the endpoint in its environment, serves credentials, and
// ends the run when either the child exits or the server fails.
package assumer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"

	"github.com/majorcontext/assumer/internal/config"
	"github.com/majorcontext/assumer/internal/credserver"
	"github.com/majorcontext/assumer/internal/log"
	"github.com/majorcontext/assumer/internal/stscreds"
	"github.com/majorcontext/assumer/internal/supervisor"
	"github.com/majorcontext/assumer/internal/token"
)

// ErrServerExited is returned when the credential server stops before the
// child. The server is meant to run until the child exits, so this is a bug
// or a broken listener.
var ErrServerExited = errors.New("credential server exited unexpectedly")

// Deps are the collaborators of a run. Zero values select the real ones.
type Deps struct {
	// Provider issues credentials. Nil builds an STS client from cfg.
	Provider stscreds.Provider
	// Signals carries termination requests for the child. It must stay open
	// while the child runs.
	Signals <-chan os.Signal
	// Ready receives the bound address once. It needs room for one value;
	// a channel that is already full is a programming error and panics.
	Ready chan<- netip.AddrPort
	// OnState observes state transitions.
	OnState func(State)

	// Listen defaults to net.Listen.
	Listen func(network, address string) (net.Listener, error)
	// BaseEnv is the child's environment before injection. Nil means os.Environ().
	BaseEnv []string
	// Stdio of the child; nil inherits the current process's.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Outcome describes how a run ended.
type Outcome struct {
	Reason   Reason
	Addr     netip.AddrPort
	ChildPID int
	// Exit is set when Reason is ReasonChildExited.
	Exit supervisor.ExitStatus
}

type childResult struct {
	status supervisor.ExitStatus
	err    error
}

// Run executes one run of cfg. It returns once the child has exited or the
// credential server has failed. cfg must already be validated.
func Run(ctx context.Context, cfg *config.RunConfig, deps Deps) (Outcome, error) {
	setState := func(s State) {
		log.Debug("state transition", "state", s.String())
		if deps.OnState != nil {
			deps.OnState(s)
		}
	}
	setState(StateInitializing)

	provider := deps.Provider
	if provider == nil {
		c, err := stscreds.New(ctx, stscreds.Options{
			Region:          cfg.Region,
			Endpoint:        cfg.STSEndpoint,
			SessionDuration: cfg.SessionDuration,
			ExternalID:      cfg.ExternalID,
		})
		if err != nil {
			return Outcome{}, err
		}
		log.Debug("sts client configured", "region", c.Region(), "endpoint", cfg.STSEndpoint)
		provider = c
	}

	listen := deps.Listen
	if listen == nil {
		listen = net.Listen
	}
	ln, err := listen("tcp", cfg.HTTPListen)
	if err != nil {
		return Outcome{}, fmt.Errorf("binding credential endpoint: %w", err)
	}
	addr, err := boundAddr(ln)
	if err != nil {
		ln.Close()
		return Outcome{}, err
	}
	out := Outcome{Addr: addr}
	setState(StateBound)

	tok := token.Resolve(cfg.AuthToken)
	srv := credserver.NewServer(credserver.NewHandler(credserver.State{
		Provider:    provider,
		Token:       tok,
		RoleARN:     cfg.RoleARN,
		SessionName: cfg.RoleSessionName,
	}))

	sup := supervisor.New(supervisor.Config{
		Command: cfg.Command,
		Args:    cfg.Args,
		Port:    addr.Port(),
		Token:   tok,
		BaseEnv: deps.BaseEnv,
		Stdin:   deps.Stdin,
		Stdout:  deps.Stdout,
		Stderr:  deps.Stderr,
	})
	if err := sup.Start(); err != nil {
		ln.Close()
		return out, err
	}
	out.ChildPID = sup.Pid()

	childDone := make(chan childResult, 1)
	go func() {
		st, err := sup.Wait(deps.Signals)
		childDone <- childResult{st, err}
	}()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(ln)
	}()

	publish(deps.Ready, addr)
	setState(StateRunning)

	select {
	case r := <-childDone:
		setState(StateShuttingDown)
		srv.Close()
		out.Reason = ReasonChildExited
		out.Exit = r.status
		setState(StateTerminated)
		return out, r.err

	case err := <-serveDone:
		setState(StateShuttingDown)
		// The child is left to the OS; the coordinator does not wait for it.
		log.Error("credential server exited", "error", err, "child_pid", out.ChildPID)
		out.Reason = ReasonServerFailed
		setState(StateTerminated)
		return out, fmt.Errorf("%w: %v", ErrServerExited, err)
	}
}

func boundAddr(ln net.Listener) (netip.AddrPort, error) {
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		return tcp.AddrPort(), nil
	}
	ap, err := netip.ParseAddrPort(ln.Addr().String())
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("bound address %s: %w", ln.Addr(), err)
	}
	return ap, nil
}

func publish(ready chan<- netip.AddrPort, addr netip.AddrPort) {
	if ready == nil {
		return
	}
	select {
	case ready <- addr:
	default:
		panic("assumer: readiness channel already used")
	}
}
