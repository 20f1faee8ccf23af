//go:build unix

package supervisor

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// kill is replaced in tests to observe delivery.
var kill = unix.Kill

func deliver(p *os.Process, sig os.Signal) error {
	if s, ok := sig.(syscall.Signal); ok {
		return kill(p.Pid, s)
	}
	return p.Signal(sig)
}
