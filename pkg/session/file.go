package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/stack"
)

// DefaultStateTTL is how long saved stacks outlive the last save.
const DefaultStateTTL = 30 * 24 * time.Hour

// State is the part of a board session that exists only on this device.
// Positions live in the store; stacks and their names do not.
type State struct {
	Board     string        `json:"board"`
	Stacks    []stack.Stack `json:"stacks"`
	SavedAt   time.Time     `json:"saved_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// IsExpired reports whether the state is past its expiry.
func (s *State) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// StateStore keeps one State per board.
type StateStore interface {
	// Get returns nil, nil when no unexpired state exists.
	Get(ctx context.Context, boardID string) (*State, error)
	Set(ctx context.Context, st *State) error
	Delete(ctx context.Context, boardID string) error
}

// FileStateStore keeps states as JSON files in a config directory.
type FileStateStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStateStore creates a file-based state store.
// If baseDir is empty, defaults to ~/.config/corkboard/boards/
func NewFileStateStore(baseDir string) (*FileStateStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "corkboard", "boards")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStateStore{baseDir: baseDir}, nil
}

func (s *FileStateStore) statePath(boardID string) string {
	return filepath.Join(s.baseDir, boardID+".json")
}

func (s *FileStateStore) Get(ctx context.Context, boardID string) (*State, error) {
	if err := corkerrors.ValidateBoardID(boardID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.statePath(boardID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	if st.IsExpired() {
		os.Remove(path)
		return nil, nil
	}
	return &st, nil
}

func (s *FileStateStore) Set(ctx context.Context, st *State) error {
	if err := corkerrors.ValidateBoardID(st.Board); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	path := s.statePath(st.Board)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

func (s *FileStateStore) Delete(ctx context.Context, boardID string) error {
	if err := corkerrors.ValidateBoardID(boardID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.statePath(boardID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

// Cleanup removes expired state files.
func (s *FileStateStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read state dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var st State
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		if st.IsExpired() {
			os.Remove(path)
		}
	}
	return nil
}

// Path returns the base directory for state files.
func (s *FileStateStore) Path() string {
	return s.baseDir
}

var _ StateStore = (*FileStateStore)(nil)
