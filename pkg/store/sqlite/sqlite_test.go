package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/store/storetest"
)

func TestStore(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "corkboard.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	storetest.Run(t, s)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corkboard.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	s.PutItems(ctx, "team", []board.Item{{ID: 5, Position: board.Position{Top: 1, Left: 2}}})
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, _ := s.ListItems(ctx, "team")
	if len(got) != 1 || got[0].Position != (board.Position{Top: 1, Left: 2}) {
		t.Errorf("got %+v", got)
	}
}
