package chanmon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

// assertSelectorClosed checks the kqueue descriptor was released.
func assertSelectorClosed(t *testing.T, s *selector) {
	t.Helper()
	_, err := unix.Kevent(s.kq, nil, make([]unix.Kevent_t, 1), &unix.Timespec{})
	assert.ErrorIs(t, err, unix.EBADF)
}
