//go:build unix

package signals

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	sigs, err := Parse([]string{"TERM", "SIGINT", "quit", "1"})
	require.NoError(t, err)
	assert.Equal(t, []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP}, sigs)

	sigs, err = Parse(DefaultNames)
	require.NoError(t, err)
	assert.Len(t, sigs, 3)
}

func TestParse_Invalid(t *testing.T) {
	for _, name := range []string{"NOPE", "KILL", "SIGSTOP", ""} {
		_, err := Parse([]string{name})
		assert.Error(t, err, "Parse(%q)", name)
	}
}

func receive(t *testing.T, ch <-chan os.Signal) os.Signal {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("no signal relayed")
		return nil
	}
}

func TestRelay_TranslatesToTerm(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan os.Signal, 1)
	out := relay(ctx, in, func() {})

	for _, s := range []os.Signal{syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM} {
		in <- s
		assert.Equal(t, syscall.SIGTERM, receive(t, out), "relay of %v", s)
	}
}

func TestRelay_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	out := relay(ctx, make(chan os.Signal), func() { close(stopped) })
	cancel()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}

	select {
	case s := <-out:
		t.Fatalf("unexpected signal %v after cancel", s)
	default:
	}
}

func TestForward_RealSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := Forward(ctx, []os.Signal{syscall.SIGUSR1})
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))

	assert.Equal(t, syscall.SIGTERM, receive(t, out))
}
