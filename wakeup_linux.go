//go:build linux

package chanmon

import (
	"golang.org/x/sys/unix"
)

// createWakePipe creates the non-blocking, close-on-exec interrupt pipe.
// Returns the read end and the write end.
//
// A pipe rather than an eventfd: every registration must be accounted for
// as exactly one byte.
func createWakePipe() (int, int, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return -1, -1, err
	}
	return fds[0], fds[1], nil
}
