package stack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/corkboard/pkg/board"
)

type positions map[int64]board.Position

func (p positions) Get(id int64) (board.Item, bool) {
	pos, ok := p[id]
	return board.Item{ID: id, Position: pos}, ok
}

func (p positions) IDs() []int64 {
	ids := make([]int64, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	return ids
}

func newTestManager(p positions) *Manager {
	m := NewManager(p, nil, log.New(io.Discard))
	n := 0
	m.newID = func() string { n++; return fmt.Sprintf("s%d", n) }
	return m
}

const (
	itemA int64 = 1
	itemB int64 = 2
	itemC int64 = 3
)

func TestDropScenarioABC(t *testing.T) {
	p := positions{
		itemA: {Top: 800, Left: 800},
		itemB: {Top: 100, Left: 100},
		itemC: {Top: 500, Left: 500},
	}
	m := newTestManager(p)

	// A is dragged onto B.
	p[itemA] = board.Position{Top: 120, Left: 110}
	changes := m.Drop(itemA)
	if len(changes) != 1 || changes[0].Kind != Created {
		t.Fatalf("drop A: %+v", changes)
	}
	s, ok := m.StackOf(itemA)
	if !ok || !slices.Equal(s.Members, []int64{itemA, itemB}) {
		t.Fatalf("stack after A = %+v", s)
	}

	// C is dropped near the stack center (A, the anchor).
	p[itemC] = board.Position{Top: 140, Left: 130}
	changes = m.Drop(itemC)
	if len(changes) != 1 || changes[0].Kind != Joined || changes[0].StackID != s.ID {
		t.Fatalf("drop C: %+v", changes)
	}
	got, _ := m.Members(s.ID)
	if !slices.Equal(got, []int64{itemA, itemB, itemC}) {
		t.Errorf("members = %v, want [A B C]", got)
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}

func TestDropNearNonAnchorMemberJoins(t *testing.T) {
	p := positions{
		itemA: {Top: 100, Left: 100},
		itemB: {Top: 100, Left: 150},
		itemC: {Top: 900, Left: 900},
	}
	m := newTestManager(p)
	m.Drop(itemA)
	s, ok := m.StackOf(itemA)
	if !ok || s.Anchor() != itemA {
		t.Fatalf("stack after A = %+v", s)
	}

	// 50 px from B but 100 px from the anchor A.
	p[itemC] = board.Position{Top: 100, Left: 200}
	changes := m.Drop(itemC)
	if len(changes) != 1 || changes[0].Kind != Joined || changes[0].StackID != s.ID {
		t.Fatalf("drop C: %+v", changes)
	}
	got, _ := m.Members(s.ID)
	if !slices.Equal(got, []int64{itemA, itemB, itemC}) {
		t.Errorf("members = %v, want [A B C]", got)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestDropFarAwayDoesNothing(t *testing.T) {
	p := positions{itemA: {Top: 0, Left: 0}, itemB: {Top: 500, Left: 500}}
	m := newTestManager(p)
	if changes := m.Drop(itemA); len(changes) != 0 {
		t.Errorf("changes = %+v", changes)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestDropNearestCandidateWins(t *testing.T) {
	p := positions{
		itemA: {Top: 0, Left: 0},
		itemB: {Top: 0, Left: 50},
		itemC: {Top: 0, Left: 20},
	}
	m := newTestManager(p)
	m.Drop(itemA)
	s, ok := m.StackOf(itemA)
	if !ok || !s.Has(itemC) || s.Has(itemB) {
		t.Errorf("stack = %+v, want A with C", s)
	}
}

func TestDropDetachAndDissolve(t *testing.T) {
	p := positions{itemA: {Top: 100, Left: 100}, itemB: {Top: 110, Left: 110}}
	m := newTestManager(p)
	m.Drop(itemB)
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}

	// Small nudge inside the detach distance keeps the stack.
	p[itemB] = board.Position{Top: 150, Left: 150}
	if changes := m.Drop(itemB); len(changes) != 0 {
		t.Fatalf("nudge changed membership: %+v", changes)
	}

	p[itemB] = board.Position{Top: 600, Left: 600}
	changes := m.Drop(itemB)
	if len(changes) != 2 || changes[0].Kind != Detached || changes[1].Kind != Dissolved {
		t.Fatalf("changes = %+v", changes)
	}
	if m.Len() != 0 {
		t.Errorf("stack with one member should be absent, Len = %d", m.Len())
	}
	if _, ok := m.StackOf(itemA); ok {
		t.Error("A still reports a stack")
	}
}

func TestDropAnchorMeasuredAgainstOtherMembers(t *testing.T) {
	p := positions{itemA: {Top: 100, Left: 100}, itemB: {Top: 100, Left: 140}, itemC: {Top: 100, Left: 120}}
	m := newTestManager(p)
	m.Drop(itemA) // A+C
	m.Drop(itemB) // joins
	s, _ := m.StackOf(itemA)
	if s.Anchor() != itemA || len(s.Members) != 3 {
		t.Fatalf("stack = %+v", s)
	}

	// Dragging the anchor far away detaches it even though the center
	// would otherwise follow it.
	p[itemA] = board.Position{Top: 900, Left: 900}
	changes := m.Drop(itemA)
	if len(changes) != 1 || changes[0].Kind != Detached {
		t.Fatalf("changes = %+v", changes)
	}
	s, _ = m.StackOf(itemB)
	if s.Anchor() != itemC {
		t.Errorf("new anchor = %d, want C", s.Anchor())
	}
}

func TestDropMovesBetweenStacks(t *testing.T) {
	p := positions{
		1: {Top: 0, Left: 0}, 2: {Top: 0, Left: 10},
		3: {Top: 900, Left: 900}, 4: {Top: 900, Left: 910},
		5: {Top: 0, Left: 20},
	}
	m := newTestManager(p)
	m.Drop(1)
	m.Drop(3)
	m.Drop(5)

	p[5] = board.Position{Top: 905, Left: 905}
	changes := m.Drop(5)
	if len(changes) != 2 || changes[0].Kind != Detached || changes[1].Kind != Joined {
		t.Fatalf("changes = %+v", changes)
	}
	s, _ := m.StackOf(5)
	if !s.Has(3) {
		t.Errorf("item 5 landed in %+v", s)
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}

func TestPartitionInvariantUnderRandomDrops(t *testing.T) {
	p := positions{}
	for i := int64(1); i <= 20; i++ {
		p[i] = board.Position{Top: float64(i%5) * 40, Left: float64(i/5) * 40}
	}
	m := newTestManager(p)
	for round := 0; round < 5; round++ {
		for id := int64(1); id <= 20; id++ {
			p[id] = board.Position{
				Top:  float64((id*7+int64(round)*13)%9) * 35,
				Left: float64((id*3+int64(round)*5)%9) * 35,
			}
			m.Drop(id)
			if err := m.Validate(); err != nil {
				t.Fatalf("round %d drop %d: %v", round, id, err)
			}
		}
	}
}

func TestRemoveAndPrune(t *testing.T) {
	p := positions{1: {}, 2: {Left: 10}, 3: {Left: 20}, 4: {Top: 900}, 5: {Top: 910}}
	m := newTestManager(p)
	m.Drop(1)
	m.Drop(3)
	m.Drop(5)
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}

	m.Remove(3)
	if s, _ := m.StackOf(1); len(s.Members) != 2 {
		t.Errorf("after remove: %+v", s)
	}

	m.Prune([]int64{1, 2})
	if m.Len() != 1 {
		t.Errorf("Len after prune = %d, want 1", m.Len())
	}
	if _, ok := m.StackOf(4); ok {
		t.Error("pruned stack still present")
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}

func TestRenameAndCenter(t *testing.T) {
	p := positions{1: {Top: 10, Left: 10}, 2: {Top: 20, Left: 20}}
	m := newTestManager(p)
	m.Drop(1)
	s, _ := m.StackOf(1)

	if c, _ := m.Center(s.ID); c != p[1] {
		t.Errorf("center = %+v, want anchor %+v", c, p[1])
	}
	override := board.Position{Top: 300, Left: 300}
	if err := m.SetCenter(s.ID, override); err != nil {
		t.Fatal(err)
	}
	if c, _ := m.Center(s.ID); c != override {
		t.Errorf("center = %+v, want override", c)
	}

	if err := m.Rename(s.ID, "ideas"); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Get(s.ID); got.Name != "ideas" {
		t.Errorf("name = %q", got.Name)
	}
	if err := m.Rename("nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRenameWith(t *testing.T) {
	p := positions{1: {}, 2: {Left: 5}}
	m := newTestManager(p)
	m.Drop(1)
	s, _ := m.StackOf(1)
	ctx := context.Background()

	var seen string
	err := m.RenameWith(ctx, s.ID, RenamerFunc(func(_ context.Context, cur string) (string, bool, error) {
		seen = cur
		return "todo", true, nil
	}))
	if err != nil || seen != "" {
		t.Fatalf("err=%v seen=%q", err, seen)
	}

	cancel := RenamerFunc(func(context.Context, string) (string, bool, error) { return "", false, nil })
	if err := m.RenameWith(ctx, s.ID, cancel); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Get(s.ID); got.Name != "todo" {
		t.Errorf("cancelled prompt changed name to %q", got.Name)
	}

	boom := errors.New("boom")
	fail := RenamerFunc(func(context.Context, string) (string, bool, error) { return "", false, boom })
	if err := m.RenameWith(ctx, s.ID, fail); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	p := positions{1: {}, 2: {Left: 5}}
	m := newTestManager(p)
	m.Drop(1)
	s, _ := m.StackOf(1)
	s.Members[0] = 99
	if again, _ := m.StackOf(1); again.Members[0] != 1 {
		t.Error("caller mutated manager state")
	}
}

func TestRotationPure(t *testing.T) {
	for _, id := range []int64{0, 1, 42, 1 << 40, -7} {
		a, b := Rotation(id, 6), Rotation(id, 6)
		if a != b {
			t.Errorf("Rotation(%d) not stable: %v vs %v", id, a, b)
		}
		if a < -6 || a >= 6 {
			t.Errorf("Rotation(%d) = %v out of range", id, a)
		}
	}
	if Hash(1) != 2654435761%360 {
		t.Errorf("Hash(1) = %d", Hash(1))
	}
}

func TestHashLargeAndNegativeIDs(t *testing.T) {
	tests := []struct {
		id   int64
		want uint64
	}{
		{1, 241},
		{360, 0},
		{10_000_000_000, 160},
		{1 << 40, 256},
		{-1, 119},
		{-7, 113},
	}
	for _, tt := range tests {
		if got := Hash(tt.id); got != tt.want {
			t.Errorf("Hash(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestRestore(t *testing.T) {
	p := positions{1: {}, 2: {}, 3: {}, 4: {}, 5: {}}
	m := newTestManager(p)
	center := board.Position{Top: 5, Left: 5}

	n := m.Restore([]Stack{
		{ID: "keep", Members: []int64{1, 2, 2}, Name: "Ideas", Center: &center},
		// 2 is taken and 9 is unknown.
		{ID: "steal", Members: []int64{2, 9}},
		{ID: "keep", Members: []int64{3, 4}},
		{ID: "", Members: []int64{5}},
	})
	if n != 2 {
		t.Fatalf("Restore = %d, want 2", n)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	s, ok := m.Get("keep")
	if !ok || !slices.Equal(s.Members, []int64{1, 2}) || s.Name != "Ideas" {
		t.Errorf("keep = %+v", s)
	}
	if c, _ := m.Center("keep"); c != center {
		t.Errorf("center = %+v", c)
	}
	if s, ok := m.StackOf(3); !ok || s.ID == "keep" {
		t.Errorf("duplicate id not replaced: %+v", s)
	}
}
