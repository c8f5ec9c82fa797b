package chanmon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

// assertSelectorClosed checks the epoll descriptor was released.
func assertSelectorClosed(t *testing.T, s *selector) {
	t.Helper()
	_, err := unix.EpollWait(s.epfd, make([]unix.EpollEvent, 1), 0)
	assert.ErrorIs(t, err, unix.EBADF)
}
