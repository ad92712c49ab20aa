package placement

import (
	"math/rand/v2"
	"time"

	"github.com/matzehuels/corkboard/pkg/board"
)

// Options configures position generation.
type Options struct {
	// Item is the footprint of one note in canvas pixels.
	Item board.Size

	// Jitter is the maximum random offset from a cell origin, as a fraction of
	// the footprint. Values are capped below 0.5 so a note never drifts into the
	// rounding basin of a neighboring cell.
	Jitter float64

	// DeadZone is the side of the square at the canvas origin that generated
	// positions must stay out of. Stored positions inside it count as unset.
	DeadZone float64
}

const maxJitter = 0.45

var defaultOpts = Options{
	Item:     board.Size{Width: 120, Height: 120},
	Jitter:   0.2,
	DeadZone: 10,
}

// DefaultOptions returns the default placement options.
func DefaultOptions() Options { return defaultOpts }

// Placer generates item positions.
type Placer struct {
	opts Options
	rng  *rand.Rand
}

// NewPlacer returns a Placer drawing from a PCG source seeded with seed.
// A zero seed is replaced by the current time. A nil opts uses the defaults.
func NewPlacer(seed uint64, opts *Options) *Placer {
	if opts == nil {
		opts = &defaultOpts
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	o := *opts
	o.Jitter = max(0, min(o.Jitter, maxJitter))
	return &Placer{
		opts: o,
		rng:  rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
	}
}

// Options returns the effective options.
func (p *Placer) Options() Options { return p.opts }

// Assign returns n positions on dims, one grid cell per item while cells last.
func (p *Placer) Assign(n int, dims board.Dimensions) []board.Position {
	return p.AssignAvoiding(n, dims, nil)
}

// AssignAvoiding is Assign with the cells holding taken positions removed from
// the candidate set first. Reconciliation uses it so regenerated notes do not
// land on notes whose stored positions were accepted.
func (p *Placer) AssignAvoiding(n int, dims board.Dimensions, taken []board.Position) []board.Position {
	if n <= 0 {
		return nil
	}
	grid := NewGrid(dims, p.opts.Item)

	occupied := make(map[int]bool, len(taken))
	for _, t := range taken {
		if c := grid.CellOf(t); c >= 0 {
			occupied[c] = true
		}
	}
	free := make([]int, 0, grid.Cells())
	for c := range grid.Cells() {
		if !occupied[c] {
			free = append(free, c)
		}
	}
	p.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	out := make([]board.Position, 0, n)
	for _, c := range free {
		if len(out) == n {
			break
		}
		out = append(out, p.settle(p.jitter(grid.Origin(c)), dims))
	}
	for len(out) < n {
		out = append(out, p.settle(p.uniform(dims), dims))
	}
	return out
}

func (p *Placer) jitter(origin board.Position) board.Position {
	jx := p.opts.Jitter * p.opts.Item.Width
	jy := p.opts.Jitter * p.opts.Item.Height
	return board.Position{
		Top:  origin.Top + (p.rng.Float64()*2-1)*jy,
		Left: origin.Left + (p.rng.Float64()*2-1)*jx,
	}
}

func (p *Placer) uniform(dims board.Dimensions) board.Position {
	b := dims.Bounds(p.opts.Item)
	return board.Position{
		Top:  p.rng.Float64() * b.Top,
		Left: p.rng.Float64() * b.Left,
	}
}

// settle clamps pos to the canvas and pushes it out of the origin dead zone.
func (p *Placer) settle(pos board.Position, dims board.Dimensions) board.Position {
	pos = dims.Clamp(pos, p.opts.Item)
	if !InDeadZone(pos, p.opts.DeadZone) {
		return pos
	}
	b := dims.Bounds(p.opts.Item)
	switch {
	case b.Left >= p.opts.DeadZone:
		pos.Left = p.opts.DeadZone
	case b.Top >= p.opts.DeadZone:
		pos.Top = p.opts.DeadZone
	}
	return pos
}

// InDeadZone reports whether pos sits in the square of side zone at the origin.
func InDeadZone(pos board.Position, zone float64) bool {
	return zone > 0 && pos.Top < zone && pos.Left < zone
}
