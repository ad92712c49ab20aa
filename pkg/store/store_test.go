package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/corkboard/pkg/board"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/store"
	"github.com/matzehuels/corkboard/pkg/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, store.NewMemory())
}

func TestMemoryPayloadIsCopied(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	payload := []byte(`{"a":1}`)
	m.PutItems(ctx, "b", []board.Item{{ID: 1, Payload: payload}})
	payload[2] = 'X'
	got, _ := m.ListItems(ctx, "b")
	if string(got[0].Payload) != `{"a":1}` {
		t.Errorf("payload aliased caller slice: %s", got[0].Payload)
	}
}

func TestFileStore(t *testing.T) {
	s, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	storetest.Run(t, s)
}

func TestFileStorePersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s1, _ := store.NewFileStore(dir)
	s1.PutItems(ctx, "team", []board.Item{{ID: 1, Position: board.Position{Top: 40, Left: 50}}})

	s2, _ := store.NewFileStore(dir)
	got, err := s2.ListItems(ctx, "team")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Position.Left != 50 {
		t.Errorf("got %+v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "team.json")); err != nil {
		t.Errorf("board file missing: %v", err)
	}
}

func TestFileStoreRejectsBadBoardID(t *testing.T) {
	s, _ := store.NewFileStore(t.TempDir())
	_, err := s.ListItems(context.Background(), "../etc/passwd")
	if !corkerrors.Is(err, corkerrors.ErrCodeInvalidBoard) {
		t.Errorf("err = %v, want INVALID_BOARD", err)
	}
}
