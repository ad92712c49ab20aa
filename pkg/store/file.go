package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/corkboard/pkg/board"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
)

// FileStore keeps each board in a JSON file <dir>/<board>.json. Every write
// rewrites the whole file, which is fine for boards of a few hundred notes.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create board dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

type boardFile struct {
	Board string       `json:"board"`
	Items []board.Item `json:"items"`
}

func (s *FileStore) boardPath(boardID string) (string, error) {
	if err := corkerrors.ValidateBoardID(boardID); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, boardID+".json"), nil
}

func (s *FileStore) read(boardID string) (map[int64]board.Item, error) {
	path, err := s.boardPath(boardID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[int64]board.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read board file: %w", err)
	}
	var f boardFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse board %s: %w", boardID, err)
	}
	items := make(map[int64]board.Item, len(f.Items))
	for _, it := range f.Items {
		items[it.ID] = it
	}
	return items, nil
}

func (s *FileStore) write(boardID string, items map[int64]board.Item) error {
	path, err := s.boardPath(boardID)
	if err != nil {
		return err
	}
	f := boardFile{Board: boardID, Items: make([]board.Item, 0, len(items))}
	for _, it := range items {
		f.Items = append(f.Items, it)
	}
	SortItems(f.Items)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write board file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace board file: %w", err)
	}
	return nil
}

func (s *FileStore) ListItems(ctx context.Context, boardID string) ([]board.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.read(boardID)
	if err != nil {
		return nil, err
	}
	out := make([]board.Item, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	SortItems(out)
	return out, nil
}

func (s *FileStore) UpdatePosition(ctx context.Context, boardID string, itemID int64, pos board.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read(boardID)
	if err != nil {
		return err
	}
	it, ok := items[itemID]
	if !ok {
		return fmt.Errorf("item %d on %s: %w", itemID, boardID, ErrNotFound)
	}
	it.Position = pos
	items[itemID] = it
	return s.write(boardID, items)
}

func (s *FileStore) PutItems(ctx context.Context, boardID string, items []board.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(boardID)
	if err != nil {
		return err
	}
	for _, it := range items {
		existing[it.ID] = it
	}
	return s.write(boardID, existing)
}

func (s *FileStore) DeleteItem(ctx context.Context, boardID string, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read(boardID)
	if err != nil {
		return err
	}
	if _, ok := items[itemID]; !ok {
		return fmt.Errorf("item %d on %s: %w", itemID, boardID, ErrNotFound)
	}
	delete(items, itemID)
	return s.write(boardID, items)
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for board files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
