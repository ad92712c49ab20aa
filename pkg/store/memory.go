package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/matzehuels/corkboard/pkg/board"
)

// Memory is an in-memory Store.
type Memory struct {
	mu     sync.RWMutex
	boards map[string]map[int64]board.Item
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{boards: make(map[string]map[int64]board.Item)}
}

func (m *Memory) ListItems(ctx context.Context, boardID string) ([]board.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]board.Item, 0, len(m.boards[boardID]))
	for _, it := range m.boards[boardID] {
		it.Payload = slices.Clone(it.Payload)
		items = append(items, it)
	}
	SortItems(items)
	return items, nil
}

func (m *Memory) UpdatePosition(ctx context.Context, boardID string, itemID int64, pos board.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.boards[boardID][itemID]
	if !ok {
		return fmt.Errorf("item %d on %s: %w", itemID, boardID, ErrNotFound)
	}
	it.Position = pos
	m.boards[boardID][itemID] = it
	return nil
}

func (m *Memory) PutItems(ctx context.Context, boardID string, items []board.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.boards[boardID]
	if !ok {
		b = make(map[int64]board.Item, len(items))
		m.boards[boardID] = b
	}
	for _, it := range items {
		it.Payload = slices.Clone(it.Payload)
		it.ZOrder = 0
		b[it.ID] = it
	}
	return nil
}

func (m *Memory) DeleteItem(ctx context.Context, boardID string, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.boards[boardID][itemID]; !ok {
		return fmt.Errorf("item %d on %s: %w", itemID, boardID, ErrNotFound)
	}
	delete(m.boards[boardID], itemID)
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
