// Package watch runs one countdown presenter per discount on the server and
// fans its frames out to subscribers. When a countdown reaches its target the
// cached snapshot is dropped and an availability event is published, so
// clients refetch instead of reloading.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/perks/internal/countdown"
)

type Invalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type Notifier interface {
	DiscountAvailable(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Frame is one countdown update as streamed to clients. NoETA and Reason are
// only set on the single frame sent for a discount with no upcoming window.
type Frame struct {
	Countdown string `json:"countdown"`
	Arrived   bool   `json:"arrived"`
	NoETA     bool   `json:"no_eta,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type TickerFunc func() (<-chan time.Time, func())

type Option func(*Watcher)

func WithTicker(fn TickerFunc) Option {
	return func(w *Watcher) { w.newTicker = fn }
}

// WithHookTimeout bounds the cache and broker calls made on arrival.
func WithHookTimeout(d time.Duration) Option {
	return func(w *Watcher) { w.hookTimeout = d }
}

type entry struct {
	presenter *countdown.Presenter
	cancel    context.CancelFunc
}

type subscriber struct {
	ch   chan Frame
	once sync.Once
}

type Watcher struct {
	invalidate  Invalidator
	notify      Notifier
	newTicker   TickerFunc
	hookTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	entries map[uuid.UUID]*entry

	// presenter callbacks only ever take subMu
	subMu sync.Mutex
	subs  map[uuid.UUID]map[*subscriber]struct{}
}

func New(inv Invalidator, n Notifier, opts ...Option) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		invalidate:  inv,
		notify:      n,
		newTicker:   countdown.NewSecondTicker,
		hookTimeout: 5 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		entries:     make(map[uuid.UUID]*entry),
		subs:        make(map[uuid.UUID]map[*subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch counts down to target for id. Watching the same target again is a
// no-op; a different target replaces the running countdown.
func (w *Watcher) Watch(id uuid.UUID, target time.Time) {
	if target.IsZero() || w.ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if e, ok := w.entries[id]; ok {
		if e.presenter.Target().Equal(target) {
			return
		}
		e.cancel()
		delete(w.entries, id)
	}

	ctx, cancel := context.WithCancel(w.ctx)
	p := countdown.New(target,
		countdown.OnUpdate(func(text string) {
			w.broadcast(id, Frame{Countdown: text})
		}),
		countdown.OnArrive(func(now time.Time) {
			w.arrive(id, now)
		}),
	)
	e := &entry{presenter: p, cancel: cancel}
	w.entries[id] = e

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()

		ticks, stop := w.newTicker()
		defer stop()
		p.Run(ctx, ticks)

		w.mu.Lock()
		if w.entries[id] == e {
			delete(w.entries, id)
		}
		w.mu.Unlock()
	}()
}

func (w *Watcher) Unwatch(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entries[id]; ok {
		e.cancel()
		delete(w.entries, id)
	}
}

// Target reports the instant id is counting down to, if any.
func (w *Watcher) Target(id uuid.UUID) (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[id]
	if !ok {
		return time.Time{}, false
	}
	return e.presenter.Target(), true
}

// Current is the latest frame for id, used to greet a new subscriber.
func (w *Watcher) Current(id uuid.UUID) (Frame, bool) {
	w.mu.Lock()
	e, ok := w.entries[id]
	w.mu.Unlock()
	if !ok {
		return Frame{}, false
	}
	return Frame{Countdown: e.presenter.Text(), Arrived: e.presenter.State() == countdown.Arrived}, true
}

// Subscribe returns a channel of frames for id and a func that closes it.
// Frames are dropped for a subscriber whose buffer is full.
func (w *Watcher) Subscribe(id uuid.UUID) (<-chan Frame, func()) {
	s := &subscriber{ch: make(chan Frame, 8)}

	w.subMu.Lock()
	set, ok := w.subs[id]
	if !ok {
		set = make(map[*subscriber]struct{})
		w.subs[id] = set
	}
	set[s] = struct{}{}
	w.subMu.Unlock()

	return s.ch, func() {
		w.subMu.Lock()
		defer w.subMu.Unlock()
		if set, ok := w.subs[id]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(w.subs, id)
			}
		}
		s.once.Do(func() { close(s.ch) })
	}
}

func (w *Watcher) broadcast(id uuid.UUID, f Frame) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for s := range w.subs[id] {
		select {
		case s.ch <- f:
		default:
			log.Debug().Str("discount_id", id.String()).Msg("dropping countdown frame for slow subscriber")
		}
	}
}

func (w *Watcher) arrive(id uuid.UUID, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), w.hookTimeout)
	defer cancel()

	if w.invalidate != nil {
		if err := w.invalidate.Invalidate(ctx, id); err != nil {
			log.Error().Err(err).Str("discount_id", id.String()).Msg("failed to invalidate discount on arrival")
		}
	}
	if w.notify != nil {
		if err := w.notify.DiscountAvailable(ctx, id, now); err != nil {
			log.Error().Err(err).Str("discount_id", id.String()).Msg("failed to publish discount availability")
		}
	}
	w.broadcast(id, Frame{Arrived: true})
	log.Info().Str("discount_id", id.String()).Time("at", now).Msg("discount window opened")
}

// Close stops every countdown and waits for them to exit.
func (w *Watcher) Close() {
	w.cancel()
	w.wg.Wait()
}
