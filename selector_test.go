//go:build linux || darwin

package chanmon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSelector(t *testing.T) *selector {
	t.Helper()
	s, err := newSelector(16)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.close() })
	return s
}

func newTestWakePipe(t *testing.T) (int, int) {
	t.Helper()
	r, w, err := createWakePipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = closeFD(r)
		_ = closeFD(w)
	})
	return r, w
}

func TestSelector_ReadWriteEvents(t *testing.T) {
	s := newTestSelector(t)
	r, w := newTestWakePipe(t)

	require.NoError(t, s.update(r, 0, OpRead))
	require.NoError(t, s.update(w, 0, OpWrite))

	// write end is always writable, read end is not yet readable
	n, err := s.wait(100)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	fd, readable, writable, failed := s.event(0)
	assert.Equal(t, w, fd)
	assert.False(t, readable)
	assert.True(t, writable)
	assert.False(t, failed)

	require.NoError(t, s.update(w, OpWrite, 0))
	_, err = writeFD(w, []byte{1})
	require.NoError(t, err)

	n, err = s.wait(100)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	fd, readable, _, _ = s.event(0)
	assert.Equal(t, r, fd)
	assert.True(t, readable)

	// level triggered: still readable until drained
	n, err = s.wait(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var buf [8]byte
	_, err = readFD(r, buf[:])
	require.NoError(t, err)
	n, err = s.wait(0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSelector_EmptyInterestRemoves(t *testing.T) {
	s := newTestSelector(t)
	r, w := newTestWakePipe(t)

	require.NoError(t, s.update(r, 0, OpRead))
	_, err := writeFD(w, []byte{1})
	require.NoError(t, err)

	require.NoError(t, s.update(r, OpRead, 0))
	n, err := s.wait(0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// removing twice, and re-adding, are both tolerated
	require.NoError(t, s.update(r, OpRead, 0))
	require.NoError(t, s.update(r, 0, OpRead))
	n, err = s.wait(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSelector_HangupReportsFailed(t *testing.T) {
	s := newTestSelector(t)
	r, w, err := createWakePipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFD(r) })

	require.NoError(t, s.update(r, 0, OpRead))
	require.NoError(t, closeFD(w))

	n, err := s.wait(100)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 1)
	fd, readable, _, failed := s.event(0)
	assert.Equal(t, r, fd)
	assert.True(t, readable || failed)
	assert.Equal(t, OpRead, readyOps(OpRead, readable, false, failed))
}
