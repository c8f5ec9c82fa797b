package chanmon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_SetInterestOffLoop(t *testing.T) {
	m := newTestMonitor(t)
	r, _ := newPipe(t)

	key, err := m.Register(r, OpRead, func(*Key) {})
	require.NoError(t, err)

	assert.ErrorIs(t, key.SetInterest(0), ErrNotLoopGoroutine)
	assert.Equal(t, OpRead, key.Interest())
	assert.Same(t, m, key.Monitor())
	assert.GreaterOrEqual(t, key.Fd(), 0)
}

func TestKey_SetInterestOnLoop(t *testing.T) {
	m := newTestMonitor(t)
	r, w := newPipe(t)

	_, err := w.Write([]byte("x"))
	require.NoError(t, err)

	results := make(chan error, 4)
	_, err = m.Register(r, OpRead, func(k *Key) {
		results <- k.SetInterest(Ops(1 << 20))
		results <- k.SetInterest(OpRead | OpWrite)
		results <- k.SetInterest(0)
		k.Cancel()
		results <- k.SetInterest(OpRead)
	})
	require.NoError(t, err)

	assert.ErrorIs(t, recvTimeout(t, results), ErrInvalidArgument)
	assert.NoError(t, recvTimeout(t, results))
	assert.NoError(t, recvTimeout(t, results))
	assert.ErrorIs(t, recvTimeout(t, results), ErrKeyCancelled)
}

func TestKey_IsValidAfterChannelClosed(t *testing.T) {
	m := newTestMonitor(t)
	r, _ := newPipe(t)

	key, err := m.Register(r, OpRead, func(*Key) {})
	require.NoError(t, err)
	assert.True(t, key.IsValid())

	require.NoError(t, r.Close())
	assert.False(t, key.IsValid())
}

// TestKey_StaleKeyReplaced closes a registered channel, then registers a new
// one that may reuse the same descriptor number.
func TestKey_StaleKeyReplaced(t *testing.T) {
	m := newTestMonitor(t)
	r1, _ := newPipe(t)

	k1, err := m.Register(r1, OpRead, func(*Key) {})
	require.NoError(t, err)
	require.NoError(t, r1.Close())

	r2, w2 := newPipe(t)
	k2, err := m.Register(r2, OpRead, func(*Key) {})
	require.NoError(t, err)
	assert.NotSame(t, k1, k2)
	assert.True(t, k2.IsValid())
	assert.False(t, k1.IsValid())

	_, err = w2.Write([]byte("x"))
	require.NoError(t, err)
	key, err := m.Wait(r2, OpRead)
	require.NoError(t, err)
	assert.Same(t, k2, key)
}

func TestKey_CancelInternalIgnored(t *testing.T) {
	m := newTestMonitor(t)
	m.wakeKey.Cancel()
	assert.False(t, m.wakeKey.cancelled.Load())

	r, _ := newPipe(t)
	_, err := m.Register(r, OpRead, func(*Key) {})
	assert.NoError(t, err)
}

func TestKey_RegisterInterruptPipeRejected(t *testing.T) {
	m := newTestMonitor(t)
	_, err := m.Register(m.wakeKey.channel, OpRead, func(*Key) {})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOps_String(t *testing.T) {
	for _, tc := range []struct {
		ops  Ops
		want string
	}{
		{0, "none"},
		{OpRead, "read"},
		{OpWrite, "write"},
		{OpRead | OpWrite, "read|write"},
		{OpConnect | OpAccept, "connect|accept"},
		{Ops(1 << 10), "unknown"},
	} {
		assert.Equal(t, tc.want, tc.ops.String())
	}
}

func TestReadyOps(t *testing.T) {
	for _, tc := range []struct {
		name                       string
		interest                   Ops
		readable, writable, failed bool
		want                       Ops
	}{
		{"readable", OpRead | OpWrite, true, false, false, OpRead},
		{"writable", OpRead | OpWrite, false, true, false, OpWrite},
		{"both", OpRead | OpWrite, true, true, false, OpRead | OpWrite},
		{"accept", OpAccept, true, false, false, OpAccept},
		{"connect", OpConnect, false, true, false, OpConnect},
		{"not interested", OpWrite, true, false, false, 0},
		{"failed", OpRead | OpConnect, false, false, true, OpRead | OpConnect},
		{"failed no interest", 0, false, false, true, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, readyOps(tc.interest, tc.readable, tc.writable, tc.failed))
		})
	}
}

func TestErrors(t *testing.T) {
	err := closedChannelError(errors.New("use of closed file"))
	assert.ErrorIs(t, err, ErrChannelClosed)
	assert.Contains(t, err.Error(), "use of closed file")

	err = invalidArgument("bad %d", 7)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "bad 7")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Stopping", StateStopping.String())
	assert.Equal(t, "Stopped", StateStopped.String())
	assert.Equal(t, "Unknown", State(42).String())

	var s monitorState
	assert.True(t, s.IsRunning())
	assert.False(t, s.TryTransition(StateStopping, StateStopped))
	assert.True(t, s.TryTransition(StateRunning, StateStopping))
	assert.False(t, s.TryTransition(StateRunning, StateStopping))
	assert.Equal(t, StateStopping, s.Load())
}

func TestResolveMonitorOptions(t *testing.T) {
	cfg, err := resolveMonitorOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMaxEvents, cfg.maxEvents)
	assert.Len(t, cfg.waitErrorLogRates, 2)
	assert.Nil(t, cfg.logger)

	cfg, err = resolveMonitorOptions([]Option{nil, WithMaxEvents(8)})
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.maxEvents)

	_, err = resolveMonitorOptions([]Option{WithMaxEvents(-1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
