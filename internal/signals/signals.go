// Package signals turns OS signal delivery into termination requests for
// the supervised child.
package signals

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/majorcontext/assumer/internal/log"
	"github.com/moby/sys/signal"
)

// DefaultNames are the signals forwarded when none are configured.
var DefaultNames = []string{"TERM", "INT", "QUIT"}

// Parse converts names such as "TERM", "SIGINT" or "15" to signals.
func Parse(names []string) ([]os.Signal, error) {
	sigs := make([]os.Signal, 0, len(names))
	for _, name := range names {
		s, err := signal.ParseSignal(name)
		if err != nil {
			return nil, fmt.Errorf("forward signal %q: %w", name, err)
		}
		if s == syscall.SIGKILL || s == syscall.SIGSTOP {
			return nil, fmt.Errorf("forward signal %q: cannot be caught", name)
		}
		sigs = append(sigs, s)
	}
	return sigs, nil
}

// Forward subscribes to sigs and returns a channel that receives SIGTERM
// each time one of them arrives. The channel holds one pending request;
// further signals wait until it is consumed. The channel is never closed:
// when ctx is done the subscription stops and the channel goes quiet.
func Forward(ctx context.Context, sigs []os.Signal) <-chan os.Signal {
	in := make(chan os.Signal, 1)
	ossignal.Notify(in, sigs...)
	return relay(ctx, in, func() { ossignal.Stop(in) })
}

func relay(ctx context.Context, in <-chan os.Signal, stop func()) <-chan os.Signal {
	out := make(chan os.Signal, 1)
	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-in:
				log.Info("received signal, terminating child", "signal", sig)
				select {
				case out <- syscall.SIGTERM:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
