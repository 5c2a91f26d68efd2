package fit_test

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/fitbox/fit"
)

func startSession(t *testing.T, target *textTarget, container *box, sig *signals, opts ...fit.Option) *fit.Session {
	t.Helper()
	base := []fit.Option{
		fit.WithSignals(sig),
		fit.WithSizeRange(8, 100),
		fit.WithStrategy(fit.InPlace{}),
		fit.WithDebounce(20 * time.Millisecond),
	}
	s, err := fit.FitFontToContainer(target, container, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(s.Disconnect)
	return s
}

func TestFitFontToContainerRejectsMissingElements(t *testing.T) {
	_, err := fit.FitFontToContainer(nil, &box{})
	require.ErrorIs(t, err, fit.ErrNilTarget)

	_, err = fit.FitFontToContainer(newTextTarget("x"), nil)
	require.ErrorIs(t, err, fit.ErrNilContainer)
}

func TestFitFontToContainerValidatesOptions(t *testing.T) {
	cases := []fit.Option{
		fit.WithSizeRange(0, 10),
		fit.WithSizeRange(20, 10),
		fit.WithDebounce(-time.Second),
	}
	for _, opt := range cases {
		_, err := fit.FitFontToContainer(newTextTarget("x"), &box{}, fit.WithSignals(&signals{}), opt)
		require.ErrorIs(t, err, fit.ErrInvalidOptions)
	}
}

func TestDefaultOptions(t *testing.T) {
	o := fit.DefaultOptions()
	assert.Equal(t, 8, o.MinSize)
	assert.Equal(t, 512, o.MaxSize)
	assert.True(t, o.ObserveContainerResize)
	assert.True(t, o.ObserveContentMutation)
	assert.True(t, o.RefitOnFontLoad)
	assert.Equal(t, 100*time.Millisecond, o.Debounce)
	assert.NoError(t, o.Validate())
}

func TestInitialRefitWaitsForLayout(t *testing.T) {
	target := newTextTarget("Hello")
	sig := &signals{}
	s := startSession(t, target, &box{size: fit.Size{Width: 200, Height: 50}}, sig)

	assert.Zero(t, s.LastSize(), "no synchronous refit at construction")
	assert.Zero(t, target.SetCount())

	sig.layout()
	assert.Equal(t, 41, s.LastSize())
	assert.Equal(t, 41, target.FontSize())
	assert.Equal(t, "41", target.Attr(fit.AttrSize))
}

func TestRefitIsIdempotent(t *testing.T) {
	target := newTextTarget("Hello")
	s := startSession(t, target, &box{size: fit.Size{Width: 200, Height: 50}}, &signals{})

	require.NoError(t, s.Refit())
	first := target.FontSize()
	require.NoError(t, s.Refit())
	assert.Equal(t, first, target.FontSize())
	assert.Equal(t, strconv.Itoa(first), target.Attr(fit.AttrSize))
}

func TestRefitZeroAreaAppliesMin(t *testing.T) {
	target := newTextTarget("Hello")
	s := startSession(t, target, &box{}, &signals{}, fit.WithSizeRange(12, 100))
	require.NoError(t, s.Refit())
	assert.Equal(t, 12, target.FontSize())
	assert.Equal(t, "12", target.Attr(fit.AttrSize))
}

func TestDebounceCoalescesBurst(t *testing.T) {
	target := newTextTarget("Hello")
	sig := &signals{}
	var applied atomic.Int32
	var appliedAt atomic.Int64
	startSession(t, target, &box{size: fit.Size{Width: 200, Height: 50}}, sig,
		fit.WithDebounce(40*time.Millisecond),
		fit.WithOnApplied(func(int) {
			applied.Add(1)
			appliedAt.Store(time.Now().UnixNano())
		}),
	)

	var last time.Time
	for i := 0; i < 8; i++ {
		sig.fireMutation()
		last = time.Now()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return applied.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return applied.Load() > 1 }, 150*time.Millisecond, 10*time.Millisecond)
	assert.GreaterOrEqual(t, appliedAt.Load(), last.UnixNano())
}

func TestTriggerDuringRefitIsDropped(t *testing.T) {
	target := newTextTarget("Hello")
	s := startSession(t, target, &box{size: fit.Size{Width: 200, Height: 50}}, &signals{})

	gate := make(chan struct{})
	entered := make(chan struct{})
	target.mu.Lock()
	target.gate, target.entered = gate, entered
	target.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Refit())
	}()
	<-entered

	before := target.SetCount()
	require.NoError(t, s.Refit())
	assert.Equal(t, before, target.SetCount(), "second cycle must not measure")

	close(gate)
	wg.Wait()

	target.mu.Lock()
	maxIn := target.maxIn
	target.mu.Unlock()
	assert.Equal(t, 1, maxIn)
	assert.Equal(t, 41, s.LastSize())
}

func TestRefitErrorClearsBusyFlag(t *testing.T) {
	target := newTextTarget("Hello")
	target.failAt = 20
	s := startSession(t, target, &box{size: fit.Size{Width: 200, Height: 50}}, &signals{})

	require.Error(t, s.Refit())
	assert.Empty(t, target.Attr(fit.AttrSize), "failed cycle records nothing")
	assert.Zero(t, s.LastSize())

	target.mu.Lock()
	target.failAt = 0
	target.mu.Unlock()
	require.NoError(t, s.Refit())
	assert.Equal(t, 41, s.LastSize())
}

func TestResizeTriggersRefit(t *testing.T) {
	target := newTextTarget("Hello")
	container := &box{size: fit.Size{Width: 200, Height: 50}}
	sig := &signals{}
	s := startSession(t, target, container, sig)
	sig.layout()
	require.Equal(t, 41, s.LastSize())

	container.Resize(100, 50)
	sig.fireResize()
	require.Eventually(t, func() bool { return s.LastSize() == 33 }, time.Second, 5*time.Millisecond)
}

func TestGlobalResizeFallback(t *testing.T) {
	target := newTextTarget("Hello")
	container := &box{size: fit.Size{Width: 200, Height: 50}}
	sig := &signals{noResize: true}
	s := startSession(t, target, container, sig)

	sig.mu.Lock()
	require.Len(t, sig.global, 1)
	require.Empty(t, sig.resize)
	sig.mu.Unlock()

	container.Resize(100, 50)
	sig.fireGlobal()
	require.Eventually(t, func() bool { return s.LastSize() == 33 }, time.Second, 5*time.Millisecond)
}

func TestContentMutationTriggersRefit(t *testing.T) {
	target := newTextTarget("Hello")
	sig := &signals{}
	s := startSession(t, target, &box{size: fit.Size{Width: 200, Height: 50}}, sig)

	target.SetText("Hello, world")
	sig.fireMutation()
	require.Eventually(t, func() bool { return s.LastSize() == 27 }, time.Second, 5*time.Millisecond)
}

func TestObserversCanBeTurnedOff(t *testing.T) {
	sig := &signals{fonts: make(chan struct{})}
	startSession(t, newTextTarget("Hello"), &box{}, sig,
		fit.WithContainerResize(false),
		fit.WithContentMutation(false),
		fit.WithFontLoadRefit(false),
	)
	sig.mu.Lock()
	defer sig.mu.Unlock()
	assert.Empty(t, sig.resize)
	assert.Empty(t, sig.mutation)
	assert.Empty(t, sig.global)
}

func TestFontsReadyRefitsOnce(t *testing.T) {
	target := newTextTarget("Hello")
	sig := &signals{fonts: make(chan struct{})}
	var applied atomic.Int32
	startSession(t, target, &box{size: fit.Size{Width: 200, Height: 50}}, sig,
		fit.WithOnApplied(func(int) { applied.Add(1) }),
	)

	assert.Never(t, func() bool { return applied.Load() > 0 }, 60*time.Millisecond, 10*time.Millisecond)
	close(sig.fonts)
	require.Eventually(t, func() bool { return applied.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return applied.Load() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, "41", target.Attr(fit.AttrSize))
}

func TestDisconnectStopsRefits(t *testing.T) {
	target := newTextTarget("Hello")
	container := &box{size: fit.Size{Width: 200, Height: 50}}
	sig := &signals{}
	s := startSession(t, target, container, sig)
	sig.layout()
	sets := target.SetCount()

	s.Disconnect()
	s.Disconnect()
	assert.True(t, s.Closed())
	assert.Equal(t, 2, sig.cancels(), "resize and mutation subscriptions released once")

	container.Resize(50, 50)
	sig.fireResize()
	sig.fireMutation()
	assert.Never(t, func() bool { return target.SetCount() != sets }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestDisconnectCancelsPendingRefit(t *testing.T) {
	target := newTextTarget("Hello")
	sig := &signals{}
	s := startSession(t, target, &box{size: fit.Size{Width: 200, Height: 50}}, sig,
		fit.WithDebounce(30*time.Millisecond),
	)
	sig.fireMutation()
	s.Disconnect()
	sig.layout()

	assert.Never(t, func() bool { return target.SetCount() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestDefaultStrategyUsesSurfaceHost(t *testing.T) {
	type hostSignals struct {
		*signals
		*host
	}
	h := &host{}
	sig := hostSignals{signals: &signals{}, host: h}
	target := newTextTarget("Hello")
	s, err := fit.FitFontToContainer(target, &box{size: fit.Size{Width: 200, Height: 50}},
		fit.WithSignals(sig), fit.WithSizeRange(8, 100))
	require.NoError(t, err)
	defer s.Disconnect()

	require.NoError(t, s.Refit())
	assert.Equal(t, 1, h.created)
	assert.Zero(t, h.Live())
	assert.Equal(t, 1, target.SetCount(), "clone strategy only sets the final size")
	assert.Equal(t, 41, target.FontSize())
}

func TestNopSignals(t *testing.T) {
	target := newTextTarget("Hello")
	var applied atomic.Int32
	s, err := fit.FitFontToContainer(target, &box{size: fit.Size{Width: 200, Height: 50}},
		fit.WithSizeRange(8, 100),
		fit.WithOnApplied(func(int) { applied.Add(1) }),
	)
	require.NoError(t, err)
	defer s.Disconnect()

	require.Eventually(t, func() bool { return applied.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 41, s.LastSize())
}
