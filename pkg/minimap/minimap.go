// Package minimap computes the small circular overview of a board.
//
// Positions on the canvas are reduced to fractions in [0, 1] of the scaled
// canvas and mapped onto the square inscribed in a disk of the configured
// diameter, so every point stays inside the disk.
package minimap

import (
	"math"
	"time"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/canvas"
)

// Config controls the overview.
type Config struct {
	Diameter   float64       `toml:"diameter"`
	MaxMarkers int           `toml:"max_markers"`
	HideAfter  time.Duration `toml:"hide_after"`
}

// DefaultConfig returns a 120 px disk showing up to 60 markers, hidden 1.5 s
// after scrolling stops.
func DefaultConfig() Config {
	return Config{Diameter: 120, MaxMarkers: 60, HideAfter: 1500 * time.Millisecond}
}

// Point is a position inside the disk, relative to its bounding box.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is an item dot.
type Marker struct {
	ItemID int64  `json:"item_id"`
	Color  string `json:"color,omitempty"`
	Point
}

// View is a computed minimap.
type View struct {
	Diameter float64 `json:"diameter"`
	// Fraction is the clamped scroll fraction of the scaled canvas.
	Fraction  Point    `json:"fraction"`
	Indicator Point    `json:"indicator"`
	Markers   []Marker `json:"markers,omitempty"`
	// Dense is set when markers were suppressed because there are too many
	// items.
	Dense bool `json:"dense,omitempty"`
}

// Compute builds the minimap for the given scroll offset and zoom.
//
// The indicator sits at clamp(scroll / (dims·zoom), 0, 1) on each axis. Item
// markers use the same mapping of each item's position scaled by zoom.
func Compute(scroll canvas.ScrollOffset, dims board.Dimensions, zoom float64, items []board.Item, cfg Config) View {
	if zoom <= 0 {
		zoom = 1
	}
	frac := Point{
		X: fraction(scroll.X, dims.Width*zoom),
		Y: fraction(scroll.Y, dims.Height*zoom),
	}
	v := View{
		Diameter:  cfg.Diameter,
		Fraction:  frac,
		Indicator: ToDisk(frac, cfg.Diameter),
	}
	if len(items) > cfg.MaxMarkers {
		v.Dense = true
		return v
	}
	v.Markers = make([]Marker, 0, len(items))
	for _, it := range items {
		f := Point{
			X: fraction(it.Position.Left*zoom, dims.Width*zoom),
			Y: fraction(it.Position.Top*zoom, dims.Height*zoom),
		}
		v.Markers = append(v.Markers, Marker{
			ItemID: it.ID,
			Color:  it.Color,
			Point:  ToDisk(f, cfg.Diameter),
		})
	}
	return v
}

// ToDisk maps a fraction in [0, 1]² onto the square inscribed in a disk of
// the given diameter.
func ToDisk(f Point, diameter float64) Point {
	side := diameter / math.Sqrt2
	inset := (diameter - side) / 2
	return Point{X: inset + f.X*side, Y: inset + f.Y*side}
}

func fraction(v, total float64) float64 {
	if total <= 0 || math.IsNaN(v) {
		return 0
	}
	return min(max(v/total, 0), 1)
}

// Tracker decides when the minimap is visible: while the scroll offset keeps
// changing and for HideAfter once it stops.
type Tracker struct {
	hideAfter time.Duration
	last      canvas.ScrollOffset
	changedAt time.Time
	seen      bool
}

// NewTracker returns a hidden tracker.
func NewTracker(hideAfter time.Duration) *Tracker {
	return &Tracker{hideAfter: hideAfter}
}

// Observe records the current offset and reports whether it changed since
// the previous observation. The first observation only sets the baseline.
func (t *Tracker) Observe(off canvas.ScrollOffset, now time.Time) bool {
	if !t.seen {
		t.seen, t.last = true, off
		return false
	}
	if off == t.last {
		return false
	}
	t.last, t.changedAt = off, now
	return true
}

// Visible reports whether the minimap should be drawn at now.
func (t *Tracker) Visible(now time.Time) bool {
	if t.changedAt.IsZero() {
		return false
	}
	return now.Sub(t.changedAt) < t.hideAfter
}
