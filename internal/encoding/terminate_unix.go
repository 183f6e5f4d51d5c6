//go:build unix

package encoding

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// terminate asks the encoder to stop and kills it if it is still running
// after grace.
func terminate(p *os.Process, grace time.Duration, exited <-chan struct{}) {
	if p == nil {
		return
	}
	_ = unix.Kill(p.Pid, unix.SIGTERM)
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-exited:
	case <-timer.C:
		_ = p.Kill()
	}
}
