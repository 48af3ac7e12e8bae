package countdown

import (
	"context"
	"sync"
	"time"
)

type State int

const (
	// NoTarget is a presenter built without a projected instant. It renders
	// nothing and never ticks.
	NoTarget State = iota
	Waiting
	Arrived
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Arrived:
		return "arrived"
	}
	return "no_target"
}

type Option func(*Presenter)

// OnUpdate is called with the new text after every tick that leaves the
// presenter Waiting.
func OnUpdate(fn func(text string)) Option {
	return func(p *Presenter) { p.onUpdate = fn }
}

// OnArrive is called once, with the tick time, when the target is reached.
func OnArrive(fn func(now time.Time)) Option {
	return func(p *Presenter) { p.onArrive = fn }
}

// Presenter counts down to a single target instant. Tick is the only state
// transition; Run feeds it from a ticker until arrival or cancellation.
type Presenter struct {
	target   time.Time
	onUpdate func(string)
	onArrive func(time.Time)

	mu    sync.RWMutex
	state State
	text  string
}

func New(target time.Time, opts ...Option) *Presenter {
	p := &Presenter{target: target, state: NoTarget}
	if !target.IsZero() {
		p.state = Waiting
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Presenter) Target() time.Time { return p.target }

func (p *Presenter) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Text is the last rendered countdown, empty before the first tick, after
// arrival, and when there is no target.
func (p *Presenter) Text() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text
}

// Tick advances the presenter to now and returns the resulting state.
func (p *Presenter) Tick(now time.Time) State {
	p.mu.Lock()
	if p.state != Waiting {
		s := p.state
		p.mu.Unlock()
		return s
	}

	diff := p.target.Sub(now)
	if diff <= 0 {
		p.state = Arrived
		p.text = ""
		p.mu.Unlock()
		if p.onArrive != nil {
			p.onArrive(now)
		}
		return Arrived
	}

	p.text = Format(diff)
	text := p.text
	p.mu.Unlock()
	if p.onUpdate != nil {
		p.onUpdate(text)
	}
	return Waiting
}

// Run ticks on every value from ticks until the target arrives, ctx is done,
// or ticks is closed. It returns immediately for a presenter with no target.
func (p *Presenter) Run(ctx context.Context, ticks <-chan time.Time) State {
	if s := p.State(); s != Waiting {
		return s
	}
	for {
		select {
		case <-ctx.Done():
			return p.State()
		case now, ok := <-ticks:
			if !ok {
				return p.State()
			}
			if p.Tick(now) == Arrived {
				return Arrived
			}
		}
	}
}

// NewSecondTicker returns the production tick source and its stop func.
func NewSecondTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}
