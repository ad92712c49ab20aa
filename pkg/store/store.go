// Package store persists board items and their positions.
//
// The board engine reads items through [ItemSource] and writes positions
// through [PositionWriter]. Positions are written behind the user's back by the
// write-behind queue and never awaited, so a store only has to be eventually
// correct: the next full load re-reads and re-reconciles whatever it holds.
//
// Implementations:
//   - [Memory]: in-process maps, for tests and `corkboard view --demo`
//   - [FileStore]: one JSON document per board
//   - sqlite, redis, mongo: subpackages
//   - api.Client: the REST backend served by `corkboard serve`
package store

import (
	"context"
	"errors"
	"slices"

	"github.com/matzehuels/corkboard/pkg/board"
)

// ErrNotFound is returned when an item does not exist on a board.
var ErrNotFound = errors.New("not found")

// ItemSource supplies the items of a board. Unknown boards have no items.
type ItemSource interface {
	ListItems(ctx context.Context, boardID string) ([]board.Item, error)
}

// PositionWriter persists a single item position.
type PositionWriter interface {
	// UpdatePosition returns ErrNotFound when the item does not exist.
	UpdatePosition(ctx context.Context, boardID string, itemID int64, pos board.Position) error
}

// Store is a complete backend.
type Store interface {
	ItemSource
	PositionWriter
	// PutItems inserts or replaces items.
	PutItems(ctx context.Context, boardID string, items []board.Item) error
	// DeleteItem returns ErrNotFound when the item does not exist.
	DeleteItem(ctx context.Context, boardID string, itemID int64) error
	Close() error
}

// SortItems orders items by id, the order every store returns them in.
func SortItems(items []board.Item) {
	slices.SortFunc(items, func(a, b board.Item) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
