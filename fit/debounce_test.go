package fit_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/fitbox/fit"
)

func TestDebouncerLastTriggerWins(t *testing.T) {
	var calls atomic.Int32
	d := fit.NewDebouncer(30*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(10 * time.Millisecond)
	}
	assert.True(t, d.Pending())
	assert.Zero(t, calls.Load())

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, d.Pending())
}

func TestDebouncerStop(t *testing.T) {
	var calls atomic.Int32
	d := fit.NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })
	d.Trigger()
	d.Stop()
	d.Trigger()

	assert.False(t, d.Pending())
	assert.Never(t, func() bool { return calls.Load() > 0 }, 80*time.Millisecond, 10*time.Millisecond)
}

func TestDebouncerZeroDelayStillDefers(t *testing.T) {
	var calls atomic.Int32
	d := fit.NewDebouncer(0, func() { calls.Add(1) })
	d.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
}
