// Package clock lets the evaluation path take "now" from an injected source.
// Only cmd/ wires the real clock; tests use NewFixed or NewFunc.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

type FuncClock func() time.Time

func (f FuncClock) Now() time.Time { return f() }

func NewReal() Clock { return RealClock{} }

func NewFixed(t time.Time) Clock { return FixedClock{T: t} }

func NewFunc(f func() time.Time) Clock { return FuncClock(f) }

var (
	_ Clock = RealClock{}
	_ Clock = FixedClock{}
	_ Clock = FuncClock(nil)
)
