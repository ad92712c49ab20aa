// Package anim provides observable scalar values that can jump or animate.
//
// Gesture and canvas controllers write their visual state (scale, rotation,
// translation, shadow) into an [Observable] instead of talking to a rendering
// library. A renderer subscribes or samples Value on every frame.
package anim

import (
	"sync"
	"time"
)

// Easing maps linear progress t ∈ [0,1] to eased progress.
type Easing func(t float64) float64

// Linear progresses at constant speed.
func Linear(t float64) float64 { return t }

// EaseOutCubic decelerates towards the target.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// Lerp interpolates between a and b at eased progress t.
type Lerp[T any] func(a, b T, t float64) T

// Clock returns the current time. Tests inject a fake clock.
type Clock func() time.Time

// Observable holds a value of type T that can be set or animated.
type Observable[T any] struct {
	mu     sync.Mutex
	lerp   Lerp[T]
	clock  Clock
	from   T
	to     T
	start  time.Time
	dur    time.Duration
	easing Easing
	subs   map[int]func(T)
	nextID int
}

// New returns an Observable holding v.
func New[T any](v T, lerp Lerp[T], clock Clock) *Observable[T] {
	if clock == nil {
		clock = time.Now
	}
	return &Observable[T]{
		lerp:   lerp,
		clock:  clock,
		from:   v,
		to:     v,
		easing: Linear,
		subs:   make(map[int]func(T)),
	}
}

// NewFloat returns a float64 Observable using linear interpolation.
func NewFloat(v float64, clock Clock) *Observable[float64] {
	return New(v, func(a, b, t float64) float64 { return a + (b-a)*t }, clock)
}

// Set jumps to v, cancelling any running animation.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	o.from, o.to, o.dur = v, v, 0
	subs := o.snapshot()
	o.mu.Unlock()
	notify(subs, v)
}

// AnimateTo starts an animation from the current value to v.
// A non-positive duration behaves like Set. A nil easing is linear.
func (o *Observable[T]) AnimateTo(v T, d time.Duration, easing Easing) {
	if d <= 0 {
		o.Set(v)
		return
	}
	if easing == nil {
		easing = Linear
	}
	o.mu.Lock()
	now := o.clock()
	o.from = o.valueAt(now)
	o.to = v
	o.start = now
	o.dur = d
	o.easing = easing
	subs := o.snapshot()
	o.mu.Unlock()
	notify(subs, v)
}

// Value returns the value at the current clock time.
func (o *Observable[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.valueAt(o.clock())
}

// Target returns the value the observable is heading to (or holds).
func (o *Observable[T]) Target() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.to
}

// Animating reports whether an animation is still in progress.
func (o *Observable[T]) Animating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dur > 0 && o.clock().Sub(o.start) < o.dur
}

// Finish jumps to the animation target.
func (o *Observable[T]) Finish() {
	o.Set(o.Target())
}

// Subscribe registers fn to be called with the new target on every Set or
// AnimateTo. The returned function removes the subscription.
func (o *Observable[T]) Subscribe(fn func(T)) (cancel func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

func (o *Observable[T]) valueAt(now time.Time) T {
	if o.dur <= 0 {
		return o.to
	}
	elapsed := now.Sub(o.start)
	if elapsed >= o.dur {
		return o.to
	}
	t := float64(elapsed) / float64(o.dur)
	return o.lerp(o.from, o.to, o.easing(max(0, t)))
}

func (o *Observable[T]) snapshot() []func(T) {
	if len(o.subs) == 0 {
		return nil
	}
	fns := make([]func(T), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notify[T any](fns []func(T), v T) {
	for _, fn := range fns {
		fn(v)
	}
}
