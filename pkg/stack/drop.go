package stack

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/corkboard/pkg/board"
)

// Drop re-evaluates the grouping of item id after a drag commit. Its committed
// position is read from the lookup.
//
// A member dropped farther than DetachDistance from its stack center leaves the
// stack (dissolving it when one member remains). An item that is not in a stack
// then joins the nearest stack center, stack member or bare item within
// MergeDistance. Joining a bare item creates a new stack anchored at the
// dropped item.
func (m *Manager) Drop(id int64) []Change {
	it, ok := m.lookup.Get(id)
	if !ok {
		return nil
	}

	var changes []Change
	if sid, in := m.byItem[id]; in {
		center, ok := m.center(m.stacks[sid], id)
		if ok && center.Distance(it.Position) <= m.cfg.DetachDistance {
			return nil
		}
		changes = append(changes, m.detach(id)...)
	}
	if ch, ok := m.merge(id, it.Position); ok {
		changes = append(changes, ch)
	}

	for _, ch := range changes {
		m.logger.Debug("stack membership changed",
			"item", ch.ItemID, "stack", ch.StackID, "change", ch.Kind)
	}
	return changes
}

func (m *Manager) merge(id int64, pos board.Position) (Change, bool) {
	best := math.Inf(1)
	var (
		toStack string
		toItem  int64
		found   bool
	)
	for _, sid := range m.order {
		c, ok := m.center(m.stacks[sid])
		if !ok {
			continue
		}
		if d := c.Distance(pos); d <= m.cfg.MergeDistance && d < best {
			best, toStack, found = d, sid, true
		}
	}
	ids := m.lookup.IDs()
	slices.Sort(ids)
	for _, other := range ids {
		if other == id {
			continue
		}
		o, ok := m.lookup.Get(other)
		if !ok {
			continue
		}
		d := o.Position.Distance(pos)
		if d > m.cfg.MergeDistance || d >= best {
			continue
		}
		// Landing next to any member joins that member's stack.
		best, toStack, toItem, found = d, m.byItem[other], other, true
	}
	if !found {
		return Change{}, false
	}

	if toStack != "" {
		s := m.stacks[toStack]
		s.Members = append(s.Members, id)
		m.byItem[id] = toStack
		return Change{Kind: Joined, StackID: toStack, ItemID: id}, true
	}

	s := &Stack{ID: m.newID(), Members: []int64{id, toItem}}
	m.stacks[s.ID] = s
	m.order = append(m.order, s.ID)
	m.byItem[id] = s.ID
	m.byItem[toItem] = s.ID
	return Change{Kind: Created, StackID: s.ID, ItemID: id}, true
}

// Remove takes item id out of its stack, as when the item is deleted.
func (m *Manager) Remove(id int64) []Change {
	if _, ok := m.byItem[id]; !ok {
		return nil
	}
	return m.detach(id)
}

// Prune removes every member that is not in keep. It runs after a board
// refetch so stacks never reference items that no longer exist.
func (m *Manager) Prune(keep []int64) []Change {
	alive := make(map[int64]bool, len(keep))
	for _, id := range keep {
		alive[id] = true
	}
	var gone []int64
	for id := range m.byItem {
		if !alive[id] {
			gone = append(gone, id)
		}
	}
	slices.Sort(gone)

	var changes []Change
	for _, id := range gone {
		// An earlier removal may have dissolved this item's stack already.
		if _, ok := m.byItem[id]; ok {
			changes = append(changes, m.detach(id)...)
		}
	}
	return changes
}

// Restore replaces all stacks with saved ones. Members the lookup does not know
// and members already claimed by an earlier stack are skipped; a stack left with
// fewer than two members is dropped. It returns the number of stacks restored.
func (m *Manager) Restore(saved []Stack) int {
	clear(m.stacks)
	clear(m.byItem)
	m.order = m.order[:0]

	for _, in := range saved {
		s := in.clone()
		s.Members = s.Members[:0]
		for _, id := range in.Members {
			_, known := m.lookup.Get(id)
			_, taken := m.byItem[id]
			if known && !taken && !slices.Contains(s.Members, id) {
				s.Members = append(s.Members, id)
			}
		}
		if len(s.Members) < 2 {
			continue
		}
		if _, dup := m.stacks[s.ID]; dup || s.ID == "" {
			s.ID = m.newID()
		}
		m.stacks[s.ID] = &s
		m.order = append(m.order, s.ID)
		for _, id := range s.Members {
			m.byItem[id] = s.ID
		}
	}
	return len(m.order)
}

func (m *Manager) detach(id int64) []Change {
	sid := m.byItem[id]
	s := m.stacks[sid]
	delete(m.byItem, id)
	s.Members = slices.DeleteFunc(s.Members, func(x int64) bool { return x == id })

	changes := []Change{{Kind: Detached, StackID: sid, ItemID: id}}
	if len(s.Members) >= 2 {
		return changes
	}
	for _, rest := range s.Members {
		delete(m.byItem, rest)
	}
	delete(m.stacks, sid)
	m.order = slices.DeleteFunc(m.order, func(x string) bool { return x == sid })
	return append(changes, Change{Kind: Dissolved, StackID: sid, ItemID: id})
}

// Validate checks the partition invariant: every stack has at least two
// members and no item appears twice.
func (m *Manager) Validate() error {
	seen := make(map[int64]string)
	for _, sid := range m.order {
		s, ok := m.stacks[sid]
		if !ok {
			return fmt.Errorf("stack %s listed but missing", sid)
		}
		if len(s.Members) < 2 {
			return fmt.Errorf("stack %s has %d members", sid, len(s.Members))
		}
		for _, id := range s.Members {
			if other, dup := seen[id]; dup {
				return fmt.Errorf("item %d in stacks %s and %s", id, other, sid)
			}
			seen[id] = sid
			if m.byItem[id] != sid {
				return fmt.Errorf("item %d index points to %q, want %s", id, m.byItem[id], sid)
			}
		}
	}
	if len(seen) != len(m.byItem) || len(m.order) != len(m.stacks) {
		return fmt.Errorf("index out of sync: %d members, %d indexed", len(seen), len(m.byItem))
	}
	return nil
}

// Hash returns (id · 2654435761) mod 360, taken as the non-negative residue.
// Both factors are reduced first so the product cannot overflow.
func Hash(id int64) uint64 {
	r := id % 360
	if r < 0 {
		r += 360
	}
	return uint64(r) * (2654435761 % 360) % 360
}

// Rotation returns a stable tilt in degrees for a stacked item, in
// [-maxTilt, maxTilt). It depends on id only.
func Rotation(id int64, maxTilt float64) float64 {
	return (float64(Hash(id))/180 - 1) * maxTilt
}
