//go:build !unix

package supervisor

import "os"

// Only os.Kill can be delivered to another process here.
func deliver(p *os.Process, sig os.Signal) error {
	return p.Kill()
}
