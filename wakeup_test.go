//go:build linux || darwin

package chanmon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWakePipe_NonBlocking(t *testing.T) {
	r, w := newTestWakePipe(t)

	var buf [4]byte
	_, err := readFD(r, buf[:])
	require.Error(t, err)
	assert.True(t, isRetryable(err))

	// fill the pipe; the write end must not block either
	chunk := make([]byte, 4096)
	for {
		_, err = writeFD(w, chunk)
		if err != nil {
			break
		}
	}
	assert.True(t, isRetryable(err))
}

func TestInterruptBackoff(t *testing.T) {
	for attempt := 0; attempt < interruptSpinAttempts+12; attempt++ {
		interruptBackoff(attempt)
	}
}
