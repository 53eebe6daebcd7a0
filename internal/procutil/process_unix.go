//go:build !windows

package procutil

import (
	"os"
	"syscall"
)

// GracefulTerminate sends SIGTERM so an external tool can clean up its
// intermediate build files before exiting.
func GracefulTerminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
