package session

import (
	"context"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/gesture"
	"github.com/matzehuels/corkboard/pkg/observability"
)

// Press starts a gesture on item id. Only one item gesture runs at a time: a
// press on another item first asks the running gesture to yield and is
// rejected with ErrBusy when it will not. Pinned items resolve to a tap
// immediately.
func (s *Session) Press(id int64) (gesture.Outcome, error) {
	it, ok := s.vmap.Get(id)
	if !ok {
		return gesture.Outcome{}, ErrUnknownItem
	}
	if s.busy && s.active != id {
		if !s.gestures[s.active].RequestTermination() {
			return gesture.Outcome{}, ErrBusy
		}
		s.Terminate(s.active)
	}

	out := s.controller(id).Down(it.Pinned)
	if out.Kind == gesture.OutcomeNone {
		s.active, s.busy = id, true
		return out, nil
	}
	s.finish(out)
	return out, nil
}

// Move reports a screen-space delta for item id. Moves for any item other
// than the active one are ignored.
func (s *Session) Move(id int64, dx, dy float64) {
	if !s.isActive(id) {
		return
	}
	s.gestures[id].Move(dx, dy)
}

// Release ends the gesture on item id and applies its outcome.
func (s *Session) Release(id int64) gesture.Outcome {
	if !s.isActive(id) {
		return gesture.Outcome{}
	}
	out := s.gestures[id].Up()
	s.finish(out)
	return out
}

// Terminate force-ends the gesture on item id. It resolves like a release.
func (s *Session) Terminate(id int64) gesture.Outcome {
	if !s.isActive(id) {
		return gesture.Outcome{}
	}
	out := s.gestures[id].Terminate()
	s.finish(out)
	return out
}

// finish runs after a gesture reached a terminal state. Stack membership
// changes only here, once the drop position is committed.
func (s *Session) finish(out gesture.Outcome) {
	s.clearActive()
	if out.Kind == gesture.OutcomeNone {
		return
	}
	ctx := context.Background()
	observability.Board().OnGesture(ctx, s.id, out.Kind.String())
	if out.Kind != gesture.OutcomeDrag {
		return
	}
	for _, ch := range s.stacks.Drop(out.ItemID) {
		s.reportChange(ctx, ch)
	}
}

// PanBegin starts a canvas pan. A pending item press yields to the pan when
// it is allowed to; a significant drag keeps the pan locked out.
func (s *Session) PanBegin() bool {
	if !s.yield() {
		return false
	}
	return s.canvas.PanBegin()
}

// PinchBegin starts a canvas pinch around focus, with the same arbitration as
// PanBegin.
func (s *Session) PinchBegin(focus board.Vec) bool {
	if !s.yield() {
		return false
	}
	return s.canvas.PinchBegin(focus)
}

func (s *Session) yield() bool {
	if !s.busy {
		return true
	}
	if !s.gestures[s.active].RequestTermination() {
		return false
	}
	s.Terminate(s.active)
	return true
}

func (s *Session) isActive(id int64) bool { return s.busy && s.active == id }

func (s *Session) clearActive() {
	s.active, s.busy = 0, false
	s.preview = nil
}

func (s *Session) controller(id int64) *gesture.Controller {
	c, ok := s.gestures[id]
	if !ok {
		c = gesture.NewController(id, (*host)(s), gesture.Options{
			Config: &s.cfg.Gesture,
			Clock:  s.clock,
			Logger: s.logger,
		})
		s.gestures[id] = c
	}
	return c
}

// host is the gesture.Host view of a Session.
type host Session

func (h *host) Position(id int64) (board.Position, bool) {
	return h.vmap.Committed(id)
}

func (h *host) Track(id int64, delta board.Vec) {
	_, near := h.vmap.TrackDelta(id, delta.X, delta.Y, h.cfg.Stack.MergeDistance)
	h.preview = near
}

// Commit clamps pos to the canvas, stores it and queues the backend write.
func (h *host) Commit(id int64, pos board.Position) board.Position {
	if !h.vmap.Set(id, pos) {
		return pos
	}
	committed, _ := h.vmap.Committed(id)
	h.writer.Submit(board.PositionUpdate{
		BoardID:  h.id,
		ItemID:   id,
		Position: committed,
		Origin:   board.OriginDrag,
		IssuedAt: h.clock(),
	})
	return committed
}

func (h *host) Discard(id int64)      { h.vmap.Discard(id) }
func (h *host) BringToFront(id int64) { h.vmap.BringToFront(id) }
func (h *host) Scale() float64        { return h.canvas.Scale() }

func (h *host) SetPanningEnabled(enabled bool) { h.canvas.SetPanningEnabled(enabled) }

// Open opens the item, or its stack when the item is stacked.
func (h *host) Open(id int64) {
	s := (*Session)(h)
	if st, ok := s.stacks.StackOf(id); ok {
		s.open(s.stackTarget(st))
		return
	}
	if it, ok := s.vmap.Get(id); ok {
		s.open(Target{Kind: TargetItem, Items: []board.Item{it}})
	}
}
