// Package session runs one board on one device.
//
// A [Session] owns everything an open board needs: the virtual position map,
// the stack manager, the canvas transform, the minimap tracker and one gesture
// controller per touched item. It loads items from a [store.ItemSource],
// reconciles their positions against the canvas and sends every position it
// changes to a [board.Writer] (normally the write-behind queue).
//
// # Threading
//
// A Session is not safe for concurrent use. Every method runs on the UI
// goroutine; only the writer does I/O in the background. The canvas panning
// flag is the only coordination between item drags and canvas gestures.
//
// # Usage
//
//	s, err := session.New("team", session.Options{
//	    Config: cfg,
//	    Source: st,
//	    Writer: queue,
//	    Open:   func(t session.Target) { ... },
//	})
//	if err := s.Load(ctx); err != nil {
//	    return err
//	}
//	s.Press(id)
//	s.Move(id, dx, dy)
//	s.Release(id)
package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/corkboard/pkg/anim"
	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/board/placement"
	"github.com/matzehuels/corkboard/pkg/canvas"
	"github.com/matzehuels/corkboard/pkg/config"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/gesture"
	"github.com/matzehuels/corkboard/pkg/minimap"
	"github.com/matzehuels/corkboard/pkg/observability"
	"github.com/matzehuels/corkboard/pkg/render"
	"github.com/matzehuels/corkboard/pkg/stack"
	"github.com/matzehuels/corkboard/pkg/store"
)

var (
	// ErrUnknownItem is returned for item ids that are not on the board.
	ErrUnknownItem = errors.New("unknown item")

	// ErrBusy is returned when another item's drag cannot be interrupted, or
	// when a resync is attempted during a drag.
	ErrBusy = errors.New("another gesture is in progress")
)

// TargetKind says what an open action refers to.
type TargetKind int

// Open targets.
const (
	TargetItem TargetKind = iota
	TargetStack
)

// Target is what the user opened. For stacks, Items holds all members in
// stack order; for items it holds the single item.
type Target struct {
	Kind  TargetKind
	Stack stack.Stack
	Items []board.Item
}

// OpenFunc receives taps. It runs on the UI goroutine and must not call back
// into the gesture that triggered it.
type OpenFunc func(Target)

// Options configures a Session.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	Source store.ItemSource
	// Writer receives reconciliation corrections and drag commits. Nil
	// discards them.
	Writer board.Writer
	Open   OpenFunc
	// State persists stacks between sessions. Nil keeps them in memory only.
	State  StateStore
	Clock  anim.Clock
	Logger *log.Logger
}

// Session is one open board.
type Session struct {
	id     string
	cfg    config.Config
	source store.ItemSource
	writer board.Writer
	open   OpenFunc
	state  StateStore
	clock  anim.Clock
	logger *log.Logger

	vmap       *board.VirtualMap
	stacks     *stack.Manager
	canvas     *canvas.Controller
	tracker    *minimap.Tracker
	reconciler *placement.Reconciler
	gestures   map[int64]*gesture.Controller

	// active is the item under a finger, valid while busy is set. Item ids
	// are arbitrary, so 0 is a real id and not a sentinel.
	active   int64
	busy     bool
	preview  []int64
	dims     board.Dimensions
	loaded   bool
	restored bool
	loadedAt time.Time
}

var _ gesture.Host = (*host)(nil)

// New returns an empty session for boardID. Call Load before use.
func New(boardID string, opts Options) (*Session, error) {
	if err := corkerrors.ValidateBoardID(boardID); err != nil {
		return nil, err
	}
	if opts.Source == nil {
		return nil, corkerrors.New(corkerrors.ErrCodeInvalidInput, "session needs an item source")
	}
	cfg := *config.Default()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("board", boardID)
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	writer := opts.Writer
	if writer == nil {
		writer = board.DiscardWriter
	}
	open := opts.Open
	if open == nil {
		open = func(Target) {}
	}

	s := &Session{
		id:       boardID,
		cfg:      cfg,
		source:   opts.Source,
		writer:   writer,
		open:     open,
		state:    opts.State,
		clock:    clock,
		logger:   logger,
		vmap:     board.NewVirtualMap(),
		canvas:   canvas.NewController(&cfg.Canvas, clock),
		tracker:  minimap.NewTracker(cfg.Minimap.HideAfter),
		gestures: make(map[int64]*gesture.Controller),
	}
	popts := cfg.Board.Placement()
	s.reconciler = placement.NewReconciler(placement.NewPlacer(cfg.Board.Seed, &popts), writer, logger)
	s.stacks = stack.NewManager(s.vmap, &cfg.Stack, logger)
	return s, nil
}

// ID returns the board id.
func (s *Session) ID() string { return s.id }

// Loaded reports whether at least one Load succeeded.
func (s *Session) Loaded() bool { return s.loaded }

// Load fetches all items, sizes the canvas for them, reconciles stored
// positions and replaces the session contents. Stacks keep the members that
// still exist. On the first successful load saved stacks are restored.
//
// On error the session keeps its previous contents.
func (s *Session) Load(ctx context.Context) error {
	start := s.clock()
	items, err := s.source.ListItems(ctx, s.id)
	if err != nil {
		observability.Board().OnLoad(ctx, s.id, 0, 0, s.clock().Sub(start), err)
		s.logger.Error("load failed", "err", err)
		return fmt.Errorf("load board %s: %w", s.id, err)
	}

	viewport := s.cfg.Board.Viewport()
	item := s.cfg.Board.Item()
	s.dims = board.ComputeDimensions(len(items), viewport, item, s.cfg.Board.Spread)
	s.vmap.SetBounds(s.dims, item)
	s.canvas.SetBounds(s.dims, viewport)

	res := s.reconciler.Reconcile(ctx, s.id, items, s.dims)
	s.vmap.Seed(s.paintOrder(res.Items))

	for _, ch := range s.stacks.Prune(s.vmap.IDs()) {
		s.reportChange(ctx, ch)
	}
	if s.busy && !s.vmap.Has(s.active) {
		s.gestures[s.active].Terminate()
		s.clearActive()
	}
	for id := range s.gestures {
		if !s.vmap.Has(id) {
			delete(s.gestures, id)
		}
	}
	if !s.restored {
		s.restoreStacks(ctx)
	}

	s.loaded = true
	s.loadedAt = s.clock()
	observability.Board().OnLoad(ctx, s.id, len(items), len(res.Corrections), s.loadedAt.Sub(start), nil)
	s.logger.Info("board loaded",
		"items", len(items),
		"corrected", len(res.Corrections),
		"stacks", s.stacks.Len(),
		"width", s.dims.Width,
		"height", s.dims.Height)
	return nil
}

// Resync re-reads the board. It returns ErrBusy while an item is being
// dragged so a stale read cannot overwrite the drag.
func (s *Session) Resync(ctx context.Context) error {
	if s.busy {
		s.logger.Debug("resync deferred", "item", s.active)
		return ErrBusy
	}
	return s.Load(ctx)
}

// ResyncDue reports whether the configured resync interval has passed since
// the last load. A zero interval disables periodic resyncs.
func (s *Session) ResyncDue(now time.Time) bool {
	iv := s.cfg.Board.ResyncInterval
	return iv > 0 && s.loaded && now.Sub(s.loadedAt) >= iv
}

// paintOrder keeps the z-order of items already on the board and appends new
// items by id.
func (s *Session) paintOrder(items []board.Item) []board.Item {
	z := func(id int64) int {
		if it, ok := s.vmap.Get(id); ok {
			return it.ZOrder
		}
		return 1 << 30
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b board.Item) int {
		if c := cmp.Compare(z(a.ID), z(b.ID)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Session) restoreStacks(ctx context.Context) {
	s.restored = true
	if s.state == nil {
		return
	}
	st, err := s.state.Get(ctx, s.id)
	if err != nil {
		s.logger.Warn("could not read saved stacks", "err", err)
		return
	}
	if st == nil {
		return
	}
	n := s.stacks.Restore(st.Stacks)
	s.logger.Debug("restored stacks", "saved", len(st.Stacks), "restored", n)
}

// SaveState writes the current stacks to the state store, if any.
func (s *Session) SaveState(ctx context.Context) error {
	if s.state == nil {
		return nil
	}
	now := s.clock()
	return s.state.Set(ctx, &State{
		Board:     s.id,
		Stacks:    s.stacks.Stacks(),
		SavedAt:   now,
		ExpiresAt: now.Add(DefaultStateTTL),
	})
}

// =============================================================================
// Read access
// =============================================================================

// Dimensions returns the canvas size.
func (s *Session) Dimensions() board.Dimensions { return s.dims }

// Config returns the configuration in use.
func (s *Session) Config() config.Config { return s.cfg }

// Items returns all items in paint order, with drag positions applied.
func (s *Session) Items() []board.Item { return s.vmap.Items() }

// Item returns one item, with its drag position applied.
func (s *Session) Item(id int64) (board.Item, bool) { return s.vmap.Get(id) }

// Stacks returns all stacks.
func (s *Session) Stacks() []stack.Stack { return s.stacks.Stacks() }

// StackOf returns the stack containing item id.
func (s *Session) StackOf(id int64) (stack.Stack, bool) { return s.stacks.StackOf(id) }

// StackCenter returns the center of a stack.
func (s *Session) StackCenter(stackID string) (board.Position, bool) {
	return s.stacks.Center(stackID)
}

// Rotation returns the resting tilt of an item: its stable stack tilt when
// stacked, zero otherwise.
func (s *Session) Rotation(id int64) float64 {
	if _, ok := s.stacks.StackOf(id); !ok {
		return 0
	}
	return stack.Rotation(id, s.cfg.Stack.MaxTilt)
}

// Canvas returns the canvas transform controller.
func (s *Session) Canvas() *canvas.Controller { return s.canvas }

// Visual returns the animated lift state of an item, or false when the item
// was never touched.
func (s *Session) Visual(id int64) (gesture.Visual, bool) {
	c, ok := s.gestures[id]
	if !ok {
		return gesture.Visual{}, false
	}
	return c.Visual(), true
}

// Active returns the item currently under a finger.
func (s *Session) Active() (int64, bool) { return s.active, s.busy }

// Preview returns the items within merge distance of the dragged item, nearest
// first. It is empty when nothing is being dragged.
func (s *Session) Preview() []int64 { return slices.Clone(s.preview) }

// Minimap computes the overview for the current transform and reports
// whether it should be visible at now.
func (s *Session) Minimap(now time.Time) (minimap.View, bool) {
	off := s.canvas.ScrollOffset()
	s.tracker.Observe(off, now)
	view := minimap.Compute(off, s.dims, s.canvas.Scale(), s.vmap.Items(), s.cfg.Minimap)
	return view, s.tracker.Visible(now)
}

// Snapshot captures the board for rendering.
func (s *Session) Snapshot() render.Snapshot {
	snap := render.Snapshot{
		Board:      s.id,
		Dimensions: s.dims,
		ItemSize:   s.cfg.Board.Item(),
		Items:      s.vmap.Items(),
		MaxTilt:    s.cfg.Stack.MaxTilt,
	}
	for _, st := range s.stacks.Stacks() {
		c, _ := s.stacks.Center(st.ID)
		snap.Stacks = append(snap.Stacks, render.NewStackLabel(st, c))
	}
	return snap
}

// Validate checks the stack partition against the items on the board.
func (s *Session) Validate() error {
	if err := s.stacks.Validate(); err != nil {
		return err
	}
	for _, st := range s.stacks.Stacks() {
		for _, id := range st.Members {
			if !s.vmap.Has(id) {
				return fmt.Errorf("stack %s references missing item %d", st.ID, id)
			}
		}
	}
	return nil
}

func (s *Session) reportChange(ctx context.Context, ch stack.Change) {
	if ch.Kind == stack.Unchanged {
		return
	}
	observability.Board().OnStackChange(ctx, s.id, ch.Kind.String())
}
