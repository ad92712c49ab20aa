// Package sqlite is a store.Store on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/store"
)

// Store keeps items in a single table keyed by (board, id).
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and migrates it. Use ":memory:"
// for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Each connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", p, err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS items (
			board_id TEXT NOT NULL,
			item_id INTEGER NOT NULL,
			top REAL NOT NULL,
			left_ REAL NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			pinned INTEGER NOT NULL DEFAULT 0,
			payload BLOB,
			PRIMARY KEY(board_id, item_id)
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListItems(ctx context.Context, boardID string) ([]board.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, top, left_, color, pinned, payload FROM items WHERE board_id = ? ORDER BY item_id`,
		boardID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []board.Item{}
	for rows.Next() {
		var (
			it      board.Item
			pinned  int
			payload []byte
		)
		if err := rows.Scan(&it.ID, &it.Position.Top, &it.Position.Left, &it.Color, &pinned, &payload); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Pinned = pinned != 0
		if len(payload) > 0 {
			it.Payload = payload
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) UpdatePosition(ctx context.Context, boardID string, itemID int64, pos board.Position) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET top = ?, left_ = ? WHERE board_id = ? AND item_id = ?`,
		pos.Top, pos.Left, boardID, itemID)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return expectOne(res, boardID, itemID)
}

func (s *Store) PutItems(ctx context.Context, boardID string, items []board.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items (board_id, item_id, top, left_, color, pinned, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(board_id, item_id) DO UPDATE SET
			top = excluded.top, left_ = excluded.left_, color = excluded.color,
			pinned = excluded.pinned, payload = excluded.payload`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		pinned := 0
		if it.Pinned {
			pinned = 1
		}
		var payload []byte
		if len(it.Payload) > 0 {
			payload = it.Payload
		}
		if _, err := stmt.ExecContext(ctx, boardID, it.ID, it.Position.Top, it.Position.Left, it.Color, pinned, payload); err != nil {
			return fmt.Errorf("put item %d: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteItem(ctx context.Context, boardID string, itemID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE board_id = ? AND item_id = ?`, boardID, itemID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return expectOne(res, boardID, itemID)
}

func (s *Store) Close() error { return s.db.Close() }

func expectOne(res sql.Result, boardID string, itemID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("item %d on %s: %w", itemID, boardID, store.ErrNotFound)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
