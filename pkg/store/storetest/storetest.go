// Package storetest is a conformance suite for store.Store implementations.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/store"
)

// Run exercises s. Each subtest uses a fresh board id, so the suite can run
// against a shared database.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	run := time.Now().UnixNano()
	n := 0
	boardID := func() string {
		n++
		return fmt.Sprintf("suite-%x-%d", run, n)
	}

	t.Run("EmptyBoard", func(t *testing.T) {
		items, err := s.ListItems(ctx, boardID())
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 0 {
			t.Errorf("items = %v, want none", items)
		}
	})

	t.Run("PutAndList", func(t *testing.T) {
		b := boardID()
		in := []board.Item{
			{ID: 3, Position: board.Position{Top: 30, Left: 31}, Color: "#fff176"},
			{ID: 1, Position: board.Position{Top: 10, Left: 11}, Pinned: true, Payload: json.RawMessage(`{"text":"hi"}`)},
			{ID: 2, Position: board.Position{Top: -5, Left: 10}},
		}
		if err := s.PutItems(ctx, b, in); err != nil {
			t.Fatal(err)
		}
		got, err := s.ListItems(ctx, b)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d items, want 3", len(got))
		}
		for i, id := range []int64{1, 2, 3} {
			if got[i].ID != id {
				t.Errorf("items[%d].ID = %d, want %d (sorted by id)", i, got[i].ID, id)
			}
		}
		if !got[0].Pinned || string(got[0].Payload) != `{"text":"hi"}` {
			t.Errorf("item 1 = %+v", got[0])
		}
		if got[1].Position != (board.Position{Top: -5, Left: 10}) {
			t.Errorf("invalid stored position must round-trip unchanged, got %+v", got[1].Position)
		}
		if got[2].Color != "#fff176" {
			t.Errorf("color = %q", got[2].Color)
		}
	})

	t.Run("PutReplaces", func(t *testing.T) {
		b := boardID()
		s.PutItems(ctx, b, []board.Item{{ID: 1, Color: "red"}})
		s.PutItems(ctx, b, []board.Item{{ID: 1, Color: "blue"}, {ID: 2}})
		got, _ := s.ListItems(ctx, b)
		if len(got) != 2 || got[0].Color != "blue" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("UpdatePosition", func(t *testing.T) {
		b := boardID()
		s.PutItems(ctx, b, []board.Item{{ID: 7, Color: "green"}})
		pos := board.Position{Top: 123.5, Left: 456.25}
		if err := s.UpdatePosition(ctx, b, 7, pos); err != nil {
			t.Fatal(err)
		}
		got, _ := s.ListItems(ctx, b)
		if len(got) != 1 || got[0].Position != pos || got[0].Color != "green" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := s.UpdatePosition(ctx, boardID(), 99, board.Position{})
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		b := boardID()
		s.PutItems(ctx, b, []board.Item{{ID: 1}, {ID: 2}})
		if err := s.DeleteItem(ctx, b, 1); err != nil {
			t.Fatal(err)
		}
		got, _ := s.ListItems(ctx, b)
		if len(got) != 1 || got[0].ID != 2 {
			t.Errorf("got %+v", got)
		}
		if err := s.DeleteItem(ctx, b, 1); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
	})

	t.Run("BoardsIsolated", func(t *testing.T) {
		a, b := boardID(), boardID()
		s.PutItems(ctx, a, []board.Item{{ID: 1}})
		s.PutItems(ctx, b, []board.Item{{ID: 1, Color: "b"}})
		s.UpdatePosition(ctx, a, 1, board.Position{Top: 50})
		got, _ := s.ListItems(ctx, b)
		if len(got) != 1 || got[0].Position != (board.Position{}) {
			t.Errorf("board b changed: %+v", got)
		}
	})
}
