package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/config"
	"github.com/matzehuels/corkboard/pkg/session"
	"github.com/matzehuels/corkboard/pkg/store"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type failingSource struct{}

func (failingSource) ListItems(context.Context, string) ([]board.Item, error) {
	return nil, errors.New("backend down")
}

func note(id int64, top, left float64) board.Item {
	payload, _ := json.Marshal(map[string]string{"title": "Note " + string(rune('0'+id))})
	return board.Item{ID: id, Position: board.Position{Top: top, Left: left}, Color: "#fff59d", Payload: payload}
}

type viewFixture struct {
	m       *boardModel
	st      *store.Memory
	clock   *testClock
	updates []board.PositionUpdate
}

// newViewFixture opens a 160×50 terminal on a board with note 1 at cells
// 20..35 × rows 11..18 and note 2 at cells 50..65 on the same rows.
func newViewFixture(t *testing.T) *viewFixture {
	t.Helper()
	return newViewFixtureWith(t, []board.Item{note(1, 160, 160), note(2, 160, 400)})
}

func newViewFixtureWith(t *testing.T, items []board.Item) *viewFixture {
	t.Helper()
	f := &viewFixture{st: store.NewMemory(), clock: &testClock{now: time.Now().Truncate(time.Second)}}
	if err := f.st.PutItems(context.Background(), "b1", items); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Board.Seed = 42
	f.m = newBoardModel(boardModelOptions{
		Board:  "b1",
		Config: *cfg,
		Source: f.st,
		Store:  f.st,
		Writer: board.WriterFunc(func(u board.PositionUpdate) { f.updates = append(f.updates, u) }),
		Clock:  f.clock.Now,
		Logger: log.New(io.Discard),
	})
	f.m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	if f.m.err != nil {
		t.Fatalf("start: %v", f.m.err)
	}
	return f
}

func (f *viewFixture) mouse(action tea.MouseAction, x, y int) {
	f.m.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
}

func (f *viewFixture) click(x, y int) {
	f.mouse(tea.MouseActionPress, x, y)
	f.clock.advance(50 * time.Millisecond)
	f.mouse(tea.MouseActionRelease, x, y)
}

func (f *viewFixture) drag(x0, y0, x1, y1 int) {
	f.mouse(tea.MouseActionPress, x0, y0)
	f.clock.advance(100 * time.Millisecond)
	f.mouse(tea.MouseActionMotion, x1, y1)
	f.clock.advance(400 * time.Millisecond)
	f.mouse(tea.MouseActionRelease, x1, y1)
}

func (f *viewFixture) key(s string) {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	f.m.Update(msg)
}

func TestBoardModelStartsOnWindowSize(t *testing.T) {
	f := newViewFixture(t)
	if f.m.sess == nil || !f.m.sess.Loaded() {
		t.Fatal("session not loaded after WindowSizeMsg")
	}
	vp := f.m.sess.Config().Board.Viewport()
	if vp.Width != 160*cellWidth || vp.Height != 48*cellHeight {
		t.Errorf("viewport = %+v, want 1280×768", vp)
	}
	if len(f.updates) != 0 {
		t.Errorf("valid positions produced %d corrections", len(f.updates))
	}
}

func TestBoardModelLoadError(t *testing.T) {
	m := newBoardModel(boardModelOptions{Board: "b1", Source: failingSource{}, Logger: log.New(io.Discard)})
	m.opts.Config = *config.Default()
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if m.err == nil {
		t.Fatal("expected load error")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.View() != "" {
		t.Error("View should be empty after a fatal error")
	}
}

func TestBoardModelDragStacksNotes(t *testing.T) {
	f := newViewFixture(t)
	f.drag(21, 12, 51, 12)

	it, _ := f.m.sess.Item(1)
	if it.Position.Left != 400 || it.Position.Top != 160 {
		t.Errorf("note 1 at %+v, want top=160 left=400", it.Position)
	}
	if len(f.updates) != 1 || f.updates[0].Origin != board.OriginDrag || f.updates[0].ItemID != 1 {
		t.Errorf("updates = %+v, want one drag commit for note 1", f.updates)
	}
	stacks := f.m.sess.Stacks()
	if len(stacks) != 1 || len(stacks[0].Members) != 2 {
		t.Fatalf("stacks = %+v, want one stack of two", stacks)
	}
	if f.m.ptr.down {
		t.Error("pointer still down after release")
	}
}

func TestBoardModelDragNoteZero(t *testing.T) {
	f := newViewFixtureWith(t, []board.Item{note(0, 160, 160), note(2, 160, 400)})
	f.drag(21, 12, 51, 12)

	it, _ := f.m.sess.Item(0)
	if it.Position.Left != 400 || it.Position.Top != 160 {
		t.Errorf("note 0 at %+v, want top=160 left=400", it.Position)
	}
	if len(f.updates) != 1 || f.updates[0].ItemID != 0 {
		t.Errorf("updates = %+v, want one drag commit for note 0", f.updates)
	}
	if _, ok := f.m.sess.Active(); ok {
		t.Error("note 0 gesture left active after release")
	}
}

func TestBoardModelClickOpensNote(t *testing.T) {
	f := newViewFixture(t)
	f.click(51, 12)

	if f.m.opened == nil || f.m.opened.Kind != session.TargetItem {
		t.Fatalf("opened = %+v, want note", f.m.opened)
	}
	if f.m.opened.Items[0].ID != 2 {
		t.Errorf("opened note %d, want 2", f.m.opened.Items[0].ID)
	}
	if !strings.Contains(f.m.status, "Note 2") {
		t.Errorf("status = %q", f.m.status)
	}
	if len(f.updates) != 0 {
		t.Error("a click must not write a position")
	}
}

func TestBoardModelRenameStack(t *testing.T) {
	f := newViewFixture(t)
	f.drag(21, 12, 51, 12)
	f.clock.advance(time.Second)
	f.click(51, 12)

	if f.m.opened == nil || f.m.opened.Kind != session.TargetStack {
		t.Fatalf("opened = %+v, want stack", f.m.opened)
	}
	f.key("n")
	if f.m.renaming == "" {
		t.Fatal("rename prompt not shown")
	}
	f.key("q") // typed into the prompt, not quit
	f.key("ideas")
	f.key("enter")

	stacks := f.m.sess.Stacks()
	if len(stacks) != 1 || stacks[0].Name != "qideas" {
		t.Errorf("stacks = %+v, want name qideas", stacks)
	}
	if f.m.renaming != "" {
		t.Error("prompt still open")
	}
}

func TestBoardModelRenameNeedsStack(t *testing.T) {
	f := newViewFixture(t)
	f.key("n")
	if f.m.renaming != "" {
		t.Error("rename started without an open stack")
	}
}

func TestBoardModelKeysPanAndZoom(t *testing.T) {
	f := newViewFixture(t)
	c := f.m.sess.Canvas()

	f.key("+")
	if s := c.Scale(); s <= 1 {
		t.Fatalf("scale after + = %v, want > 1", s)
	}
	before := c.Transform().TranslateX
	f.key("right")
	if after := c.Transform().TranslateX; after >= before {
		t.Errorf("translate x %v -> %v, want it to decrease", before, after)
	}

	f.key("0")
	f.clock.advance(time.Second)
	if tr := c.Transform(); tr.Scale != 1 || tr.TranslateX != 0 || tr.TranslateY != 0 {
		t.Errorf("transform after reset = %+v", tr)
	}
}

func TestBoardModelCanvasDoubleClickResets(t *testing.T) {
	f := newViewFixture(t)
	c := f.m.sess.Canvas()
	f.key("+")

	f.click(100, 40)
	f.clock.advance(100 * time.Millisecond)
	f.click(100, 40)
	f.clock.advance(time.Second)

	if s := c.Scale(); s != 1 {
		t.Errorf("scale after double click = %v, want 1", s)
	}
}

func TestBoardModelDeleteOpenedNote(t *testing.T) {
	f := newViewFixture(t)
	f.click(21, 12)
	f.key("x")

	if _, ok := f.m.sess.Item(1); ok {
		t.Error("note 1 still in session")
	}
	items, err := f.st.ListItems(context.Background(), "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != 2 {
		t.Errorf("store items = %+v, want only note 2", items)
	}
	if f.m.opened != nil {
		t.Error("deleted note still open")
	}
}

func TestBoardModelView(t *testing.T) {
	f := newViewFixture(t)
	out := f.m.View()
	for _, want := range []string{appName, "b1", "Note 1", "Note 2", "2 notes"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines != 50 {
		t.Errorf("View() has %d lines, want 50", lines)
	}
}

func TestBoardModelQuit(t *testing.T) {
	f := newViewFixture(t)
	_, cmd := f.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestCellRect(t *testing.T) {
	tests := []struct {
		name   string
		tl, br board.Vec
		want   rect
	}{
		{"aligned", board.Vec{X: 16, Y: 32}, board.Vec{X: 48, Y: 64}, rect{2, 2, 6, 4}},
		{"partial cells", board.Vec{X: 12, Y: 20}, board.Vec{X: 20, Y: 40}, rect{1, 1, 3, 3}},
		{"degenerate", board.Vec{X: 16, Y: 16}, board.Vec{X: 16, Y: 16}, rect{2, 1, 3, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cellRect(tt.tl, tt.br); got != tt.want {
				t.Errorf("cellRect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGridClipsAndGroups(t *testing.T) {
	g := newGrid(6, 2)
	st := cellStyle{bold: true}
	g.fill(rect{-2, -2, 3, 1}, '#', st)
	g.text(4, 1, "abc", 5, cellStyle{})
	g.set(10, 10, 'x', st)

	lines := strings.Split(g.String(), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "###") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "ab") {
		t.Errorf("line 1 = %q, want text cut at the edge", lines[1])
	}
}
