package board

import (
	"encoding/json"
	"math"
	"time"
)

// Position is an item's top-left corner in canvas pixels.
type Position struct {
	Top  float64 `json:"top" bson:"top"`
	Left float64 `json:"left" bson:"left"`
}

// Add returns p translated by v.
func (p Position) Add(v Vec) Position {
	return Position{Top: p.Top + v.Y, Left: p.Left + v.X}
}

// Distance returns the euclidean distance between p and q.
func (p Position) Distance(q Position) float64 {
	return math.Hypot(p.Left-q.Left, p.Top-q.Top)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.Top) && !math.IsInf(p.Top, 0) &&
		!math.IsNaN(p.Left) && !math.IsInf(p.Left, 0)
}

// Vec is a 2D displacement. X grows to the right, Y grows downward.
type Vec struct {
	X, Y float64
}

// Len returns the length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Add returns v + w.
func (v Vec) Add(w Vec) Vec { return Vec{X: v.X + w.X, Y: v.Y + w.Y} }

// Scale returns v multiplied by f.
func (v Vec) Scale(f float64) Vec { return Vec{X: v.X * f, Y: v.Y * f} }

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Area returns Width × Height.
func (s Size) Area() float64 { return s.Width * s.Height }

// Dimensions is the canvas size in pixels. It is never smaller than the viewport.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the largest valid position for an item of the given size.
// A component is zero when the item does not fit on that axis.
func (d Dimensions) Bounds(item Size) Position {
	return Position{
		Top:  max(0, d.Height-item.Height),
		Left: max(0, d.Width-item.Width),
	}
}

// Clamp returns p limited to [0, d − item] on both axes.
func (d Dimensions) Clamp(p Position, item Size) Position {
	b := d.Bounds(item)
	return Position{
		Top:  min(max(p.Top, 0), b.Top),
		Left: min(max(p.Left, 0), b.Left),
	}
}

// Contains reports whether p is a valid position for an item of the given size.
func (d Dimensions) Contains(p Position, item Size) bool {
	if !p.IsFinite() || p.Top < 0 || p.Left < 0 {
		return false
	}
	b := d.Bounds(item)
	return p.Top <= b.Top && p.Left <= b.Left
}

// Item is a movable note on the board.
//
// Payload is opaque to the engine (content, emoji, author). ZOrder is the paint
// priority for the current session only and is never persisted.
type Item struct {
	ID       int64           `json:"id" bson:"item_id"`
	Position Position        `json:"position" bson:"position"`
	Color    string          `json:"color,omitempty" bson:"color,omitempty"`
	Pinned   bool            `json:"pinned,omitempty" bson:"pinned,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty" bson:"payload,omitempty"`
	ZOrder   int             `json:"-" bson:"-"`
}

// PositionUpdate is one backend write of an item position.
type PositionUpdate struct {
	BoardID  string
	ItemID   int64
	Position Position
	Origin   string // "reconcile" or "drag"
	IssuedAt time.Time
}

// Update origins.
const (
	OriginReconcile = "reconcile"
	OriginDrag      = "drag"
)

// Writer accepts position updates for asynchronous persistence.
// Submit must not block the caller and gives no delivery guarantee.
type Writer interface {
	Submit(u PositionUpdate)
}

// WriterFunc adapts a function to the [Writer] interface.
type WriterFunc func(PositionUpdate)

// Submit calls f(u).
func (f WriterFunc) Submit(u PositionUpdate) { f(u) }

// DiscardWriter drops every update. Useful for tests and offline sessions.
var DiscardWriter Writer = WriterFunc(func(PositionUpdate) {})
