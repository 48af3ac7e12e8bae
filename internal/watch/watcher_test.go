package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
	published   []uuid.UUID
	err         error
}

func (r *recorder) Invalidate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, id)
	return r.err
}

func (r *recorder) DiscountAvailable(_ context.Context, id uuid.UUID, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, id)
	return r.err
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invalidated), len(r.published)
}

// manualTicks hands every countdown its own channel and remembers them.
type manualTicks struct {
	mu    sync.Mutex
	chans []chan time.Time
}

func (m *manualTicks) ticker() (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan time.Time)
	m.chans = append(m.chans, ch)
	return ch, func() {}
}

func (m *manualTicks) last(t *testing.T) chan time.Time {
	var ch chan time.Time
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if len(m.chans) == 0 {
			return false
		}
		ch = m.chans[len(m.chans)-1]
		return true
	}, time.Second, 5*time.Millisecond)
	return ch
}

var target = time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

func newTestWatcher(t *testing.T, r *recorder) (*Watcher, *manualTicks) {
	t.Helper()
	ticks := &manualTicks{}
	w := New(r, r, WithTicker(ticks.ticker), WithHookTimeout(time.Second))
	t.Cleanup(w.Close)
	return w, ticks
}

func receive(t *testing.T, ch <-chan Frame) Frame {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return Frame{}
	}
}

func TestWatcher_StreamsFramesUntilArrival(t *testing.T) {
	r := &recorder{}
	w, ticks := newTestWatcher(t, r)
	id := uuid.New()

	frames, unsubscribe := w.Subscribe(id)
	defer unsubscribe()

	w.Watch(id, target)
	ch := ticks.last(t)

	ch <- target.Add(-61 * time.Second)
	assert.Equal(t, Frame{Countdown: "1m 1s"}, receive(t, frames))

	ch <- target.Add(-time.Second)
	assert.Equal(t, Frame{Countdown: "1s"}, receive(t, frames))

	ch <- target
	assert.Equal(t, Frame{Arrived: true}, receive(t, frames))

	inv, pub := r.counts()
	assert.Equal(t, 1, inv)
	assert.Equal(t, 1, pub)

	require.Eventually(t, func() bool {
		_, ok := w.Target(id)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestWatcher_HookErrorsDoNotStopArrival(t *testing.T) {
	r := &recorder{err: errors.New("broker down")}
	w, ticks := newTestWatcher(t, r)
	id := uuid.New()

	frames, unsubscribe := w.Subscribe(id)
	defer unsubscribe()

	w.Watch(id, target)
	ticks.last(t) <- target.Add(time.Minute)

	assert.True(t, receive(t, frames).Arrived)
}

func TestWatcher_SameTargetIsNoop(t *testing.T) {
	w, ticks := newTestWatcher(t, &recorder{})
	id := uuid.New()

	w.Watch(id, target)
	w.Watch(id, target)
	ticks.last(t)

	ticks.mu.Lock()
	assert.Len(t, ticks.chans, 1)
	ticks.mu.Unlock()
}

func TestWatcher_NewTargetReplacesCountdown(t *testing.T) {
	w, ticks := newTestWatcher(t, &recorder{})
	id := uuid.New()
	later := target.Add(24 * time.Hour)

	w.Watch(id, target)
	ticks.last(t)
	w.Watch(id, later)

	got, ok := w.Target(id)
	require.True(t, ok)
	assert.Equal(t, later, got)

	require.Eventually(t, func() bool {
		ticks.mu.Lock()
		defer ticks.mu.Unlock()
		return len(ticks.chans) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestWatcher_Unwatch(t *testing.T) {
	r := &recorder{}
	w, ticks := newTestWatcher(t, r)
	id := uuid.New()

	w.Watch(id, target)
	ticks.last(t)
	w.Unwatch(id)

	_, ok := w.Target(id)
	assert.False(t, ok)
	inv, pub := r.counts()
	assert.Zero(t, inv)
	assert.Zero(t, pub)
}

func TestWatcher_CurrentFrame(t *testing.T) {
	w, ticks := newTestWatcher(t, &recorder{})
	id := uuid.New()

	_, ok := w.Current(id)
	assert.False(t, ok)

	frames, unsubscribe := w.Subscribe(id)
	defer unsubscribe()
	w.Watch(id, target)
	ticks.last(t) <- target.Add(-2 * time.Hour)
	receive(t, frames)

	f, ok := w.Current(id)
	require.True(t, ok)
	assert.Equal(t, "2h 0m 0s", f.Countdown)
}

func TestWatcher_UnsubscribeClosesChannel(t *testing.T) {
	w, _ := newTestWatcher(t, &recorder{})
	frames, unsubscribe := w.Subscribe(uuid.New())

	unsubscribe()
	unsubscribe()
	_, open := <-frames
	assert.False(t, open)
}

func TestWatcher_CloseStopsEverything(t *testing.T) {
	w := New(nil, nil, WithTicker((&manualTicks{}).ticker))
	for i := 0; i < 3; i++ {
		w.Watch(uuid.New(), target)
	}

	done := make(chan struct{})
	go func() {
		w.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}

	// watching after Close is ignored
	id := uuid.New()
	w.Watch(id, target)
	_, ok := w.Target(id)
	assert.False(t, ok)
}

func TestWatcher_ZeroTargetIgnored(t *testing.T) {
	w, _ := newTestWatcher(t, &recorder{})
	id := uuid.New()
	w.Watch(id, time.Time{})
	_, ok := w.Target(id)
	assert.False(t, ok)
}
