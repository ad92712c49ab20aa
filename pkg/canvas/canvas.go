// Package canvas controls the whole-board pan and zoom transform.
//
// The transform maps canvas coordinates to screen coordinates:
//
//	screen = canvas·Scale + (TranslateX, TranslateY)
//
// Scale is clamped to [MinScale, MaxScale]. When bounds are set, translation is
// clamped so the viewport never leaves the canvas. Pan and pinch gestures are
// ignored while panning is disabled; an item drag disables panning for its
// duration, which is the only coordination between item and canvas gestures.
package canvas

import (
	"time"

	"github.com/matzehuels/corkboard/pkg/anim"
	"github.com/matzehuels/corkboard/pkg/board"
)

// Transform is the canvas-to-screen transform.
type Transform struct {
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	Scale      float64 `json:"scale"`
}

// Identity is the untransformed canvas.
func Identity() Transform { return Transform{Scale: 1} }

// ToScreen maps a canvas position to screen coordinates.
func (t Transform) ToScreen(p board.Position) board.Vec {
	return board.Vec{X: p.Left*t.Scale + t.TranslateX, Y: p.Top*t.Scale + t.TranslateY}
}

// ToCanvas maps a screen point to a canvas position.
func (t Transform) ToCanvas(v board.Vec) board.Position {
	return board.Position{Left: (v.X - t.TranslateX) / t.Scale, Top: (v.Y - t.TranslateY) / t.Scale}
}

// ScrollOffset is how far the viewport has scrolled into the scaled canvas,
// in screen pixels.
type ScrollOffset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Config holds the zoom limits.
type Config struct {
	MinScale      float64       `toml:"min_scale"`
	MaxScale      float64       `toml:"max_scale"`
	ResetDuration time.Duration `toml:"reset_duration"`
}

// DefaultConfig returns scale limits [0.6, 1.2] and a 300 ms reset.
func DefaultConfig() Config {
	return Config{MinScale: 0.6, MaxScale: 1.2, ResetDuration: 300 * time.Millisecond}
}

// Controller owns the transform of one board. It is not safe for concurrent
// use.
type Controller struct {
	cfg Config

	tx, ty, scale *anim.Observable[float64]

	panEnabled bool
	panning    bool
	panStart   board.Vec

	pinching   bool
	lastScale  float64
	pinchFocus board.Vec
	pinchStart Transform

	dims     board.Dimensions
	viewport board.Size
	bounded  bool
}

// NewController returns a controller at the identity transform with panning
// enabled. A nil cfg selects [DefaultConfig].
func NewController(cfg *Config, clock anim.Clock) *Controller {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	return &Controller{
		cfg:        c,
		tx:         anim.NewFloat(0, clock),
		ty:         anim.NewFloat(0, clock),
		scale:      anim.NewFloat(1, clock),
		panEnabled: true,
		lastScale:  1,
	}
}

// SetBounds sets the canvas and viewport sizes used to clamp translation.
func (c *Controller) SetBounds(dims board.Dimensions, viewport board.Size) {
	c.dims, c.viewport, c.bounded = dims, viewport, true
	c.apply(c.Transform())
}

// SetPanningEnabled enables or disables pan and pinch gestures. Disabling
// cancels a gesture in progress, keeping the transform where it is.
func (c *Controller) SetPanningEnabled(enabled bool) {
	c.panEnabled = enabled
	if !enabled {
		c.panning = false
		if c.pinching {
			c.pinching = false
			c.lastScale = c.scale.Target()
		}
	}
}

// PanningEnabled reports whether canvas gestures are accepted.
func (c *Controller) PanningEnabled() bool { return c.panEnabled }

// Scale returns the current zoom.
func (c *Controller) Scale() float64 { return c.scale.Value() }

// Transform returns the current transform, including running animations.
func (c *Controller) Transform() Transform {
	return Transform{TranslateX: c.tx.Value(), TranslateY: c.ty.Value(), Scale: c.scale.Value()}
}

// ScrollOffset returns the negated translation.
func (c *Controller) ScrollOffset() ScrollOffset {
	t := c.Transform()
	return ScrollOffset{X: -t.TranslateX, Y: -t.TranslateY}
}

// Animating reports whether a reset animation is running.
func (c *Controller) Animating() bool {
	return c.scale.Animating() || c.tx.Animating() || c.ty.Animating()
}

// PanBegin starts a pan. It returns false when panning is disabled.
func (c *Controller) PanBegin() bool {
	if !c.panEnabled {
		return false
	}
	t := c.Transform()
	c.panning = true
	c.panStart = board.Vec{X: t.TranslateX, Y: t.TranslateY}
	return true
}

// PanMove moves the canvas by the total screen translation since PanBegin.
func (c *Controller) PanMove(dx, dy float64) {
	if !c.panning || !c.panEnabled {
		return
	}
	c.apply(Transform{
		TranslateX: c.panStart.X + dx,
		TranslateY: c.panStart.Y + dy,
		Scale:      c.scale.Value(),
	})
}

// PanEnd finishes a pan.
func (c *Controller) PanEnd() { c.panning = false }

// PanBy is a complete pan of (dx, dy) screen pixels, as from a keyboard.
func (c *Controller) PanBy(dx, dy float64) bool {
	if !c.PanBegin() {
		return false
	}
	c.PanMove(dx, dy)
	c.PanEnd()
	return true
}

// PinchBegin starts a pinch around a screen focus point. It returns false
// when panning is disabled.
func (c *Controller) PinchBegin(focus board.Vec) bool {
	if !c.panEnabled {
		return false
	}
	c.pinching = true
	c.pinchFocus = focus
	c.pinchStart = c.Transform()
	c.lastScale = c.pinchStart.Scale
	return true
}

// PinchMove applies the pinch factor relative to the scale at PinchBegin.
// The canvas point under the focus stays under the focus unless clamping
// moves it.
func (c *Controller) PinchMove(factor float64) {
	if !c.pinching || !c.panEnabled || factor <= 0 {
		return
	}
	s := c.clampScale(c.lastScale * factor)
	anchor := c.pinchStart.ToCanvas(c.pinchFocus)
	c.apply(Transform{
		TranslateX: c.pinchFocus.X - anchor.Left*s,
		TranslateY: c.pinchFocus.Y - anchor.Top*s,
		Scale:      s,
	})
}

// PinchEnd finishes a pinch and remembers the reached scale as the base for
// the next one.
func (c *Controller) PinchEnd() {
	if !c.pinching {
		return
	}
	c.pinching = false
	c.lastScale = c.scale.Value()
}

// PinchBy is a complete pinch, as from a keyboard.
func (c *Controller) PinchBy(factor float64, focus board.Vec) bool {
	if !c.PinchBegin(focus) {
		return false
	}
	c.PinchMove(factor)
	c.PinchEnd()
	return true
}

// DoubleTap animates back to the identity transform.
func (c *Controller) DoubleTap() bool {
	if !c.panEnabled {
		return false
	}
	c.panning, c.pinching = false, false
	c.lastScale = 1
	d := c.cfg.ResetDuration
	c.scale.AnimateTo(1, d, anim.EaseOutCubic)
	c.tx.AnimateTo(0, d, anim.EaseOutCubic)
	c.ty.AnimateTo(0, d, anim.EaseOutCubic)
	return true
}

// Reset jumps to the identity transform, as on remount.
func (c *Controller) Reset() {
	c.panning, c.pinching = false, false
	c.lastScale = 1
	c.scale.Set(1)
	c.tx.Set(0)
	c.ty.Set(0)
}

func (c *Controller) clampScale(s float64) float64 {
	return min(max(s, c.cfg.MinScale), c.cfg.MaxScale)
}

func (c *Controller) apply(t Transform) {
	t.Scale = c.clampScale(t.Scale)
	if c.bounded {
		t.TranslateX = clampAxis(t.TranslateX, c.dims.Width*t.Scale, c.viewport.Width)
		t.TranslateY = clampAxis(t.TranslateY, c.dims.Height*t.Scale, c.viewport.Height)
	}
	c.scale.Set(t.Scale)
	c.tx.Set(t.TranslateX)
	c.ty.Set(t.TranslateY)
}

// clampAxis keeps the viewport [0, view] inside the scaled canvas
// [t, t+content]. A canvas smaller than the viewport is pinned at 0.
func clampAxis(t, content, view float64) float64 {
	if content <= view {
		return 0
	}
	return min(max(t, view-content), 0)
}
