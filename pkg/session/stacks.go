package session

import (
	"context"
	"fmt"

	"github.com/matzehuels/corkboard/pkg/board"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/stack"
)

// OpenStack invokes the open action with all members of a stack.
func (s *Session) OpenStack(stackID string) error {
	st, ok := s.stacks.Get(stackID)
	if !ok {
		return fmt.Errorf("%w: %s", stack.ErrNotFound, stackID)
	}
	s.open(s.stackTarget(st))
	return nil
}

func (s *Session) stackTarget(st stack.Stack) Target {
	t := Target{Kind: TargetStack, Stack: st}
	for _, id := range st.Members {
		if it, ok := s.vmap.Get(id); ok {
			t.Items = append(t.Items, it)
		}
	}
	return t
}

// Rename names a stack. Names are at most 80 characters without control
// characters.
func (s *Session) Rename(stackID, name string) error {
	if err := corkerrors.ValidateStackName(name); err != nil {
		return err
	}
	return s.stacks.Rename(stackID, name)
}

// RenameWith prompts r for a stack name and applies it. The prompted name is
// validated like Rename.
func (s *Session) RenameWith(ctx context.Context, stackID string, r stack.Renamer) error {
	checked := stack.RenamerFunc(func(ctx context.Context, current string) (string, bool, error) {
		name, ok, err := r.PromptName(ctx, current)
		if err != nil || !ok {
			return name, ok, err
		}
		if err := corkerrors.ValidateStackName(name); err != nil {
			return "", false, err
		}
		return name, true, nil
	})
	return s.stacks.RenameWith(ctx, stackID, checked)
}

// MoveStack moves every member of a stack by delta canvas pixels and pins the
// stack center to the moved center. Each member position is clamped and
// queued for writing like a drag commit.
func (s *Session) MoveStack(stackID string, delta board.Vec) error {
	if s.busy {
		return ErrBusy
	}
	st, ok := s.stacks.Get(stackID)
	if !ok {
		return fmt.Errorf("%w: %s", stack.ErrNotFound, stackID)
	}
	center, _ := s.stacks.Center(stackID)

	h := (*host)(s)
	for _, id := range st.Members {
		if pos, ok := s.vmap.Committed(id); ok {
			h.Commit(id, pos.Add(delta))
		}
	}
	moved := s.dims.Clamp(center.Add(delta), s.cfg.Board.Item())
	return s.stacks.SetCenter(stackID, moved)
}

// Delete removes an item from the session, ending its gesture and stack
// membership. Deleting the item in the store is up to the caller.
func (s *Session) Delete(id int64) error {
	if !s.vmap.Has(id) {
		return ErrUnknownItem
	}
	for _, ch := range s.stacks.Remove(id) {
		s.reportChange(context.Background(), ch)
	}
	s.vmap.Remove(id)
	// With the item gone, ending its gesture commits nothing and opens
	// nothing; it only restores the canvas lock.
	if s.isActive(id) {
		s.gestures[id].Terminate()
		s.clearActive()
	}
	delete(s.gestures, id)
	s.logger.Debug("item deleted", "item", id)
	return nil
}
