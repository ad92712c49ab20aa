package gesture

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/corkboard/pkg/anim"
	"github.com/matzehuels/corkboard/pkg/board"
)

// Host receives the effects of one item's gestures. The board session
// implements it on top of the virtual position map and the canvas.
type Host interface {
	// Position returns the committed position of an item.
	Position(id int64) (board.Position, bool)
	// Track shows the item at committed + delta without committing.
	Track(id int64, delta board.Vec)
	// Commit stores pos as the item's new position and returns the value
	// actually stored (after clamping to the canvas).
	Commit(id int64, pos board.Position) board.Position
	// Discard drops any tracked offset of the item.
	Discard(id int64)
	BringToFront(id int64)
	Open(id int64)
	// Scale returns the current canvas zoom.
	Scale() float64
	SetPanningEnabled(enabled bool)
}

// Feedback tunes the lift animation.
type Feedback struct {
	LiftScale    float64
	MaxLiftTilt  float64 // degrees; the lift tilt is uniform in ±MaxLiftTilt
	LiftShadow   float64
	RestShadow   float64
	LiftDuration time.Duration
	DropDuration time.Duration
}

// DefaultFeedback returns the standard lift animation.
func DefaultFeedback() Feedback {
	return Feedback{
		LiftScale:    1.08,
		MaxLiftTilt:  3,
		LiftShadow:   12,
		RestShadow:   2,
		LiftDuration: 120 * time.Millisecond,
		DropDuration: 180 * time.Millisecond,
	}
}

// Visual holds the animated presentation state of an item. Renderers read the
// current values; the controller drives them.
type Visual struct {
	Scale    *anim.Observable[float64]
	Rotation *anim.Observable[float64]
	Shadow   *anim.Observable[float64]
}

// OutcomeKind is the result of a finished gesture.
type OutcomeKind int

// Gesture outcomes.
const (
	OutcomeNone OutcomeKind = iota
	OutcomeTap
	OutcomeDrag
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeTap:
		return "tap"
	case OutcomeDrag:
		return "drag"
	}
	return "none"
}

// Outcome describes how a gesture ended. Position is set for drags and is
// the committed value.
type Outcome struct {
	Kind     OutcomeKind
	ItemID   int64
	Position board.Position
}

// Controller runs the recognizer for a single item. It is not safe for
// concurrent use; the owning session drives it from one goroutine.
type Controller struct {
	id       int64
	host     Host
	cfg      Config
	feedback Feedback
	clock    anim.Clock
	logger   *log.Logger
	session  Session
	initial  board.Position
	visual   Visual
}

// Options configures a Controller. Zero values select defaults.
type Options struct {
	Config   *Config
	Feedback *Feedback
	Clock    anim.Clock
	Logger   *log.Logger
}

// NewController returns a controller for item id.
func NewController(id int64, host Host, opts Options) *Controller {
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	fb := DefaultFeedback()
	if opts.Feedback != nil {
		fb = *opts.Feedback
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		id:       id,
		host:     host,
		cfg:      cfg,
		feedback: fb,
		clock:    clock,
		logger:   logger,
		visual: Visual{
			Scale:    anim.NewFloat(1, clock),
			Rotation: anim.NewFloat(0, clock),
			Shadow:   anim.NewFloat(fb.RestShadow, clock),
		},
	}
}

// ID returns the item id.
func (c *Controller) ID() int64 { return c.id }

// Visual returns the item's animated presentation state.
func (c *Controller) Visual() Visual { return c.visual }

// Session returns a copy of the current drag session.
func (c *Controller) Session() Session { return c.session }

// State returns the current recognizer state.
func (c *Controller) State() State { return c.session.State }

// Down starts a gesture. Pinned items resolve to a tap immediately.
func (c *Controller) Down(pinned bool) Outcome {
	if c.session.State == Armed || c.session.State == Dragging {
		return Outcome{}
	}
	if pos, ok := c.host.Position(c.id); ok {
		c.initial = pos
	}
	return c.step(Event{Kind: EventDown, At: c.clock(), ItemID: c.id, Pinned: pinned})
}

// Move reports a screen-space delta since the previous move.
func (c *Controller) Move(dx, dy float64) {
	c.step(Event{
		Kind:  EventMove,
		At:    c.clock(),
		Delta: board.Vec{X: dx, Y: dy},
		Scale: c.host.Scale(),
	})
}

// Up ends the gesture and classifies it.
func (c *Controller) Up() Outcome {
	return c.step(Event{Kind: EventUp, At: c.clock()})
}

// RequestTermination asks whether the host may take the touch away from this
// item. It returns false while a significant drag is in flight.
func (c *Controller) RequestTermination() bool {
	return AllowTermination(c.session)
}

// Terminate force-ends the gesture. It resolves exactly like a release so the
// item always reaches a consistent state.
func (c *Controller) Terminate() Outcome {
	return c.step(Event{Kind: EventTerminate, At: c.clock()})
}

func (c *Controller) step(ev Event) Outcome {
	prev := c.session.State
	next, effects := Step(c.session, ev, c.cfg)
	c.session = next

	out := Outcome{ItemID: c.id}
	for _, e := range effects {
		switch e.Kind {
		case EffectBringToFront:
			c.host.BringToFront(c.id)
		case EffectLockPan:
			c.host.SetPanningEnabled(false)
		case EffectUnlockPan:
			c.host.SetPanningEnabled(true)
		case EffectLift:
			c.lift()
		case EffectDrop:
			c.drop()
		case EffectTrack:
			c.host.Track(c.id, e.Delta)
		case EffectDiscard:
			c.host.Discard(c.id)
		case EffectCommit:
			out.Kind = OutcomeDrag
			out.Position = c.host.Commit(c.id, c.initial.Add(e.Delta))
		case EffectOpen:
			out.Kind = OutcomeTap
			c.host.Open(c.id)
		}
	}

	if next.State.Terminal() {
		c.logger.Debug("gesture finished",
			"item", c.id,
			"from", prev,
			"outcome", out.Kind,
			"displacement", next.Displacement())
		c.session = Session{}
	}
	return out
}

func (c *Controller) lift() {
	fb := c.feedback
	tilt := (rand.Float64()*2 - 1) * fb.MaxLiftTilt
	c.visual.Scale.AnimateTo(fb.LiftScale, fb.LiftDuration, anim.EaseOutCubic)
	c.visual.Rotation.AnimateTo(tilt, fb.LiftDuration, anim.EaseOutCubic)
	c.visual.Shadow.AnimateTo(fb.LiftShadow, fb.LiftDuration, anim.EaseOutCubic)
}

func (c *Controller) drop() {
	fb := c.feedback
	c.visual.Scale.AnimateTo(1, fb.DropDuration, anim.EaseOutCubic)
	c.visual.Rotation.AnimateTo(0, fb.DropDuration, anim.EaseOutCubic)
	c.visual.Shadow.AnimateTo(fb.RestShadow, fb.DropDuration, anim.EaseOutCubic)
}
