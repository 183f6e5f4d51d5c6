//go:build !unix

package encoding

import (
	"os"
	"time"
)

func terminate(p *os.Process, _ time.Duration, _ <-chan struct{}) {
	if p != nil {
		_ = p.Kill()
	}
}
