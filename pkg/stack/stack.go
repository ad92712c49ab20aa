// Package stack groups board items dropped near each other into named stacks.
//
// A stack is an ordered list of item ids; the first member is the anchor.
// Membership is a partition: an item belongs to at most one stack, and a stack
// with fewer than two members does not exist. Membership changes only when a
// drag ends ([Manager.Drop]) or an item leaves the board ([Manager.Remove],
// [Manager.Prune]).
//
// The Manager is not safe for concurrent use. It is owned by a board session
// and driven from the session's goroutine.
package stack

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/corkboard/pkg/board"
)

// ErrNotFound is returned for unknown stack ids.
var ErrNotFound = errors.New("stack not found")

// Stack is a named group of items.
type Stack struct {
	ID      string          `json:"id"`
	Members []int64         `json:"members"`
	Name    string          `json:"name,omitempty"`
	Center  *board.Position `json:"center,omitempty"` // explicit override
}

// Anchor returns the first member.
func (s Stack) Anchor() int64 {
	if len(s.Members) == 0 {
		return 0
	}
	return s.Members[0]
}

// Has reports whether id is a member.
func (s Stack) Has(id int64) bool { return slices.Contains(s.Members, id) }

func (s Stack) clone() Stack {
	out := s
	out.Members = slices.Clone(s.Members)
	if s.Center != nil {
		c := *s.Center
		out.Center = &c
	}
	return out
}

// Config holds the grouping thresholds in canvas pixels.
type Config struct {
	MergeDistance  float64 `toml:"merge_distance"`
	DetachDistance float64 `toml:"detach_distance"`
	MaxTilt        float64 `toml:"max_tilt"` // degrees, for Rotation
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MergeDistance:  60,
		DetachDistance: 140,
		MaxTilt:        6,
	}
}

// Lookup resolves item positions. [board.VirtualMap] implements it.
type Lookup interface {
	Get(id int64) (board.Item, bool)
	IDs() []int64
}

// Renamer prompts the user for a stack name. ok is false when the user
// cancelled.
type Renamer interface {
	PromptName(ctx context.Context, current string) (name string, ok bool, err error)
}

// RenamerFunc adapts a function to [Renamer].
type RenamerFunc func(ctx context.Context, current string) (string, bool, error)

// PromptName calls f.
func (f RenamerFunc) PromptName(ctx context.Context, current string) (string, bool, error) {
	return f(ctx, current)
}

// ChangeKind describes what a drop did to stack membership.
type ChangeKind int

// Membership changes.
const (
	Unchanged ChangeKind = iota
	Created
	Joined
	Detached
	Dissolved
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Joined:
		return "joined"
	case Detached:
		return "detached"
	case Dissolved:
		return "dissolved"
	}
	return "unchanged"
}

// Change is a single membership change.
type Change struct {
	Kind    ChangeKind
	StackID string
	ItemID  int64
}

// Manager owns all stacks of one board.
type Manager struct {
	cfg    Config
	lookup Lookup
	logger *log.Logger
	newID  func() string

	stacks map[string]*Stack
	order  []string
	byItem map[int64]string
}

// NewManager returns an empty manager that reads positions from lookup.
// A nil cfg selects [DefaultConfig]; a nil logger uses log.Default().
func NewManager(lookup Lookup, cfg *Config, logger *log.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		cfg:    c,
		lookup: lookup,
		logger: logger,
		newID:  uuid.NewString,
		stacks: make(map[string]*Stack),
		byItem: make(map[int64]string),
	}
}

// Config returns the thresholds in use.
func (m *Manager) Config() Config { return m.cfg }

// Len returns the number of stacks.
func (m *Manager) Len() int { return len(m.stacks) }

// Get returns a copy of the stack with the given id.
func (m *Manager) Get(stackID string) (Stack, bool) {
	s, ok := m.stacks[stackID]
	if !ok {
		return Stack{}, false
	}
	return s.clone(), true
}

// StackOf returns the stack containing item id.
func (m *Manager) StackOf(id int64) (Stack, bool) {
	sid, ok := m.byItem[id]
	if !ok {
		return Stack{}, false
	}
	return m.Get(sid)
}

// Members returns the member ids of a stack, anchor first.
func (m *Manager) Members(stackID string) ([]int64, error) {
	s, ok := m.stacks[stackID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, stackID)
	}
	return slices.Clone(s.Members), nil
}

// Stacks returns copies of all stacks in creation order.
func (m *Manager) Stacks() []Stack {
	out := make([]Stack, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.stacks[id].clone())
	}
	return out
}

// Center returns the explicit center override of a stack, or the position of
// its anchor member.
func (m *Manager) Center(stackID string) (board.Position, bool) {
	s, ok := m.stacks[stackID]
	if !ok {
		return board.Position{}, false
	}
	return m.center(s)
}

// center computes the stack center ignoring the members in skip. When the
// anchor is skipped the next member stands in for it.
func (m *Manager) center(s *Stack, skip ...int64) (board.Position, bool) {
	if s.Center != nil {
		return *s.Center, true
	}
	for _, id := range s.Members {
		if slices.Contains(skip, id) {
			continue
		}
		if it, ok := m.lookup.Get(id); ok {
			return it.Position, true
		}
	}
	return board.Position{}, false
}

// SetCenter overrides the stack center, as when the whole group is moved.
func (m *Manager) SetCenter(stackID string, pos board.Position) error {
	s, ok := m.stacks[stackID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, stackID)
	}
	s.Center = &pos
	return nil
}

// Rename sets the stack's name.
func (m *Manager) Rename(stackID, name string) error {
	s, ok := m.stacks[stackID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, stackID)
	}
	s.Name = name
	return nil
}

// RenameWith asks r for a new name and applies it. A cancelled prompt leaves the
// stack unchanged and returns nil.
func (m *Manager) RenameWith(ctx context.Context, stackID string, r Renamer) error {
	s, ok := m.stacks[stackID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, stackID)
	}
	name, ok, err := r.PromptName(ctx, s.Name)
	if err != nil {
		return fmt.Errorf("prompt name: %w", err)
	}
	if !ok {
		return nil
	}
	// The prompt may have outlived the stack.
	return m.Rename(stackID, name)
}
