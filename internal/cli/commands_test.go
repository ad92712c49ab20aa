package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/corkboard/pkg/api"
	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/config"
	"github.com/matzehuels/corkboard/pkg/store"
)

// run executes the root command against a file store in dir.
func run(t *testing.T, dir string, args ...string) error {
	t.Helper()
	_, err := runOut(t, dir, args...)
	return err
}

// runOut is run that also returns what the command printed.
func runOut(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--store", "file", "--store-path", dir}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func openBoards(t *testing.T, dir string) *store.FileStore {
	t.Helper()
	st, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestSeedPlaceRender(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()

	if err := run(t, dir, "seed", "b1", "-n", "6", "--pinned", "1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := run(t, dir, "place", "b1", "--seed", "7"); err != nil {
		t.Fatalf("place: %v", err)
	}

	items, err := openBoards(t, dir).ListItems(context.Background(), "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 6 {
		t.Fatalf("got %d items, want 6", len(items))
	}
	if !items[0].Pinned || items[1].Pinned {
		t.Errorf("pinned = %v, %v; want only the first", items[0].Pinned, items[1].Pinned)
	}
	for _, it := range items {
		if it.Position.Top < 10 && it.Position.Left < 10 {
			t.Errorf("item %d still in the dead zone at %+v", it.ID, it.Position)
		}
	}

	out := filepath.Join(t.TempDir(), "b1.dot")
	if err := run(t, dir, "render", "b1", "-f", "dot", "-o", out, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "graph board {") || !strings.Contains(string(data), "Note 6") {
		t.Errorf("unexpected DOT output:\n%s", data)
	}
}

func TestSeedAppendsIDs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	for range 2 {
		if err := run(t, dir, "seed", "b1", "-n", "3"); err != nil {
			t.Fatal(err)
		}
	}
	items, err := openBoards(t, dir).ListItems(context.Background(), "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 6 || items[5].ID != 6 {
		t.Errorf("items = %+v, want ids 1..6", items)
	}
}

func TestItemsMoveAndDelete(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	if err := run(t, dir, "seed", "b1", "-n", "2"); err != nil {
		t.Fatal(err)
	}

	if err := run(t, dir, "items", "move", "b1", "2", "300", "450"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := run(t, dir, "items", "rm", "b1", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	items, err := openBoards(t, dir).ListItems(context.Background(), "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("items = %+v, want only note 2", items)
	}
	if p := items[0].Position; p.Top != 300 || p.Left != 450 {
		t.Errorf("note 2 at %+v, want 300/450", p)
	}

	if err := run(t, dir, "items", "rm", "b1", "1"); err == nil {
		t.Error("deleting a missing note succeeded")
	}
	if err := run(t, dir, "items", "move", "b1", "x", "1", "1"); err == nil {
		t.Error("non-numeric id accepted")
	}
	if err := run(t, dir, "items", "move", "b1", "2", "NaN", "1"); err == nil {
		t.Error("NaN coordinate accepted")
	}
}

func TestItemsListJSON(t *testing.T) {
	dir := t.TempDir()
	if err := run(t, dir, "seed", "b1", "-n", "3"); err != nil {
		t.Fatal(err)
	}
	out, err := runOut(t, dir, "items", "ls", "b1", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var resp api.ItemsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.Board != "b1" || len(resp.Items) != 3 {
		t.Errorf("response = %+v", resp)
	}

	out, err = runOut(t, dir, "items", "ls", "b1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Note 3") {
		t.Errorf("table output missing notes:\n%s", out)
	}
}

func TestSeedRejectsBadBoardID(t *testing.T) {
	if err := run(t, t.TempDir(), "seed", "../escape"); err == nil {
		t.Error("path-like board id accepted")
	}
}

func TestUnknownDriver(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--store", "carrier-pigeon", "items", "ls", "b1"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil {
		t.Error("unknown driver accepted")
	}
}

func TestStoreFlagsApply(t *testing.T) {
	cfg := config.Default().Store
	var f storeFlags
	if f.apply(&cfg) {
		t.Error("apply with no flags reported a change")
	}

	f = storeFlags{driver: "sqlite", path: "boards.db"}
	if !f.apply(&cfg) {
		t.Fatal("apply reported no change")
	}
	if cfg.Driver != "sqlite" || cfg.Path != "boards.db" {
		t.Errorf("store config = %+v", cfg)
	}
}

func TestOpenStoreMemoryAndFile(t *testing.T) {
	ctx := context.Background()
	for _, cfg := range []config.StoreConfig{
		{Driver: config.DriverMemory},
		{Driver: config.DriverFile, Path: t.TempDir()},
	} {
		st, err := openStore(ctx, cfg)
		if err != nil {
			t.Fatalf("openStore(%s): %v", cfg.Driver, err)
		}
		if err := st.PutItems(ctx, "b1", generateItems(1, 2, 0)); err != nil {
			t.Fatal(err)
		}
		items, err := st.ListItems(ctx, "b1")
		if err != nil || len(items) != 2 {
			t.Errorf("%s: ListItems = %d items, %v", cfg.Driver, len(items), err)
		}
		st.Close()
	}
}

func TestGenerateItems(t *testing.T) {
	items := generateItems(10, 8, 2)
	if len(items) != 8 {
		t.Fatalf("got %d items", len(items))
	}
	for i, it := range items {
		if it.ID != int64(10+i) {
			t.Errorf("items[%d].ID = %d", i, it.ID)
		}
		if it.Pinned != (i < 2) {
			t.Errorf("items[%d].Pinned = %v", i, it.Pinned)
		}
		if it.Color != noteColors[i%len(noteColors)] {
			t.Errorf("items[%d].Color = %q", i, it.Color)
		}
		if it.Position != (board.Position{}) {
			t.Errorf("items[%d] has a position before placement", i)
		}
	}
}

func TestNextID(t *testing.T) {
	if got := nextID(nil); got != 1 {
		t.Errorf("nextID(nil) = %d, want 1", got)
	}
	items := []board.Item{{ID: 4}, {ID: 9}, {ID: 2}}
	if got := nextID(items); got != 10 {
		t.Errorf("nextID = %d, want 10", got)
	}
}

func TestReadItems(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, v any) string {
		path := filepath.Join(dir, name)
		data, _ := json.Marshal(v)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	arr := write("array.json", []board.Item{{ID: 1, Position: board.Position{Top: 50, Left: 60}}})
	wrapped := write("wrapped.json", api.PutItemsRequest{Items: []board.Item{{ID: 2}, {ID: 3}}})
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0o644)

	tests := []struct {
		name    string
		path    string
		want    int
		wantErr bool
	}{
		{"array", arr, 1, false},
		{"put request", wrapped, 2, false},
		{"malformed", bad, 0, true},
		{"missing", filepath.Join(dir, "nope.json"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := readItems(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readItems() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(items) != tt.want {
				t.Errorf("got %d items, want %d", len(items), tt.want)
			}
		})
	}
}

func TestItemsTable(t *testing.T) {
	items := generateItems(1, 2, 1)
	items[1].Position = board.Position{Top: 120.5, Left: 300}
	out := itemsTable(items)
	for _, want := range []string{"ID", "Label", "Note 1", "Note 2", "120.5", "●"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestParseItemID(t *testing.T) {
	for _, s := range []string{"0", "-3", "abc", ""} {
		if _, err := parseItemID(s); err == nil {
			t.Errorf("parseItemID(%q) accepted", s)
		}
	}
	if id, err := parseItemID("42"); err != nil || id != 42 {
		t.Errorf("parseItemID(42) = %d, %v", id, err)
	}
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			root := New(io.Discard, LogInfo).RootCommand()
			root.SetOut(&buf)
			root.SetErr(io.Discard)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), "corkboard") {
				t.Errorf("%s script does not mention corkboard", shell)
			}
		})
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("unsupported shell accepted")
	}
}
