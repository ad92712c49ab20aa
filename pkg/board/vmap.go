package board

import (
	"cmp"
	"slices"
)

// VirtualMap is the session's source of truth for item positions.
//
// Committed positions are written by reconciliation and drag commits. While an
// item is being dragged, TrackDelta keeps a working position on top of the
// committed one; Get returns the working position when present so the renderer
// follows the finger. Set commits and clears the working overlay, Discard drops it.
//
// VirtualMap is not safe for concurrent use.
type VirtualMap struct {
	items   map[int64]*Item
	working map[int64]Position
	dims    Dimensions
	item    Size
	bounded bool
	topZ    int
}

// NewVirtualMap returns an empty map. Positions are not clamped until
// SetBounds is called.
func NewVirtualMap() *VirtualMap {
	return &VirtualMap{
		items:   make(map[int64]*Item),
		working: make(map[int64]Position),
	}
}

// SetBounds makes Set and TrackDelta clamp positions to the canvas.
func (m *VirtualMap) SetBounds(dims Dimensions, item Size) {
	m.dims = dims
	m.item = item
	m.bounded = true
}

// Seed replaces the map contents with items. Z-order follows slice order.
func (m *VirtualMap) Seed(items []Item) {
	clear(m.items)
	clear(m.working)
	m.topZ = 0
	for _, it := range items {
		m.topZ++
		it.ZOrder = m.topZ
		m.items[it.ID] = &it
	}
}

// Len returns the number of items.
func (m *VirtualMap) Len() int { return len(m.items) }

// Has reports whether id is present.
func (m *VirtualMap) Has(id int64) bool {
	_, ok := m.items[id]
	return ok
}

// Get returns a copy of the item, with the working position applied.
func (m *VirtualMap) Get(id int64) (Item, bool) {
	it, ok := m.items[id]
	if !ok {
		return Item{}, false
	}
	out := *it
	if p, ok := m.working[id]; ok {
		out.Position = p
	}
	return out, true
}

// Committed returns the committed position of id, ignoring any working overlay.
func (m *VirtualMap) Committed(id int64) (Position, bool) {
	it, ok := m.items[id]
	if !ok {
		return Position{}, false
	}
	return it.Position, true
}

// Set commits pos for id and clears its working overlay.
// It reports false if id is unknown.
func (m *VirtualMap) Set(id int64, pos Position) bool {
	it, ok := m.items[id]
	if !ok {
		return false
	}
	it.Position = m.clamp(pos)
	delete(m.working, id)
	return true
}

// TrackDelta moves the working position of id to committed + delta and returns
// it, together with the ids of other items whose position lies within radius of
// the new working position. Those ids feed the stack grouping preview.
func (m *VirtualMap) TrackDelta(id int64, dx, dy, radius float64) (Position, []int64) {
	it, ok := m.items[id]
	if !ok {
		return Position{}, nil
	}
	pos := m.clamp(it.Position.Add(Vec{X: dx, Y: dy}))
	m.working[id] = pos
	return pos, m.Near(pos, radius, id)
}

// Discard drops the working position of id, restoring the committed one.
func (m *VirtualMap) Discard(id int64) {
	delete(m.working, id)
}

// Near returns ids of items within radius of pos, nearest first.
// Items listed in exclude are skipped.
func (m *VirtualMap) Near(pos Position, radius float64, exclude ...int64) []int64 {
	if radius <= 0 {
		return nil
	}
	type hit struct {
		id   int64
		dist float64
	}
	var hits []hit
	for id := range m.items {
		if slices.Contains(exclude, id) {
			continue
		}
		p, _ := m.Get(id)
		if d := p.Position.Distance(pos); d <= radius {
			hits = append(hits, hit{id, d})
		}
	}
	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	out := make([]int64, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out
}

// BringToFront gives id the highest z-order in the session.
func (m *VirtualMap) BringToFront(id int64) {
	it, ok := m.items[id]
	if !ok {
		return
	}
	if it.ZOrder == m.topZ {
		return
	}
	m.topZ++
	it.ZOrder = m.topZ
}

// Remove deletes id from the map.
func (m *VirtualMap) Remove(id int64) {
	delete(m.items, id)
	delete(m.working, id)
}

// IDs returns all item ids in ascending order.
func (m *VirtualMap) IDs() []int64 {
	ids := make([]int64, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Items returns copies of all items in paint order (lowest z-order first).
func (m *VirtualMap) Items() []Item {
	out := make([]Item, 0, len(m.items))
	for id := range m.items {
		it, _ := m.Get(id)
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b Item) int {
		if c := cmp.Compare(a.ZOrder, b.ZOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (m *VirtualMap) clamp(p Position) Position {
	if !m.bounded {
		return p
	}
	return m.dims.Clamp(p, m.item)
}
