package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/stack"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Board:      "team",
		Dimensions: board.Dimensions{Width: 1000, Height: 800},
		ItemSize:   board.Size{Width: 100, Height: 80},
		Items: []board.Item{
			{ID: 1, Position: board.Position{Top: 100, Left: 200}, Color: "#ffcc80", Payload: json.RawMessage(`{"title":"Retro notes"}`)},
			{ID: 2, Position: board.Position{Top: 110, Left: 210}, Color: "not a color; injected=1"},
			{ID: 3, Position: board.Position{Top: 500, Left: 600}, Pinned: true},
		},
		Stacks:  []StackLabel{{ID: "s1", Name: "Ideas", Center: board.Position{Top: 105, Left: 205}, Members: []int64{1, 2}}},
		MaxTilt: 6,
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testSnapshot(), DOTOptions{Stacks: true})

	wants := []string{
		"layout=neato",
		`"item:1" [label="Retro notes", fillcolor="#ffcc80", pos="250.0,660.0!"`,
		`"item:2" [label="#2", fillcolor="` + DefaultColor + `"`,
		`"item:3" [label="#3", fillcolor="` + DefaultColor + `", pos="650.0,260.0!", penwidth=2`,
		`label="Ideas"`,
		`"_corner" [style=invis, shape=point, pos="1000.0,800.0!"]`,
	}
	for _, w := range wants {
		if !strings.Contains(dot, w) {
			t.Errorf("DOT missing %q\n%s", w, dot)
		}
	}
	if strings.Contains(dot, "injected") {
		t.Error("invalid color leaked into DOT")
	}

	line3 := lineOf(dot, `"item:3"`)
	if strings.Contains(line3, "orientation") {
		t.Errorf("unstacked item rotated: %s", line3)
	}
	if r := stack.Rotation(1, 6); r != 0 && !strings.Contains(lineOf(dot, `"item:1"`), "orientation=") {
		t.Error("stacked item not rotated")
	}
}

func TestToDOTPaintOrder(t *testing.T) {
	s := testSnapshot()
	s.Items[0], s.Items[2] = s.Items[2], s.Items[0]
	dot := ToDOT(s, DOTOptions{})
	if strings.Index(dot, `"item:3"`) > strings.Index(dot, `"item:1"`) {
		t.Error("items not written in paint order")
	}
	if strings.Contains(dot, "stack:") {
		t.Error("stack labels drawn without Stacks option")
	}
}

func TestItemLabel(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{``, "#7"},
		{`{"text":"  buy milk "}`, "buy milk"},
		{`{"content":"a very long sticky note that keeps going"}`, "a very long sticky note…"},
		{`{"title":"","text":"fallback"}`, "fallback"},
		{`[1,2]`, "#7"},
	}
	for _, tt := range tests {
		it := board.Item{ID: 7, Payload: json.RawMessage(tt.payload)}
		if got := Label(it); got != tt.want {
			t.Errorf("Label(%s) = %q, want %q", tt.payload, got, tt.want)
		}
	}
}

func TestSnapshotHash(t *testing.T) {
	a := testSnapshot()
	b := testSnapshot()
	if a.Hash() != b.Hash() {
		t.Fatal("equal snapshots hash differently")
	}
	b.Items[0].Position.Left++
	if a.Hash() == b.Hash() {
		t.Error("moved item did not change the hash")
	}
}

type countingCache struct {
	data       map[string][]byte
	gets, sets int
}

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *countingCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.sets++
	c.data[key] = data
	return nil
}

func (c *countingCache) Delete(_ context.Context, key string) error { delete(c.data, key); return nil }
func (c *countingCache) Close() error                               { return nil }

func TestRendererCaches(t *testing.T) {
	c := &countingCache{data: map[string][]byte{}}
	r := NewRenderer(c, nil, time.Hour, log.New(io.Discard))
	ctx := context.Background()

	first, err := r.Render(ctx, testSnapshot(), Options{Format: FormatDOT})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(ctx, testSnapshot(), Options{Format: FormatDOT})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) || c.sets != 1 || c.gets != 2 {
		t.Errorf("sets = %d, gets = %d", c.sets, c.gets)
	}

	if _, err := r.Render(ctx, testSnapshot(), Options{Format: FormatDOT, Stacks: true}); err != nil {
		t.Fatal(err)
	}
	if c.sets != 2 {
		t.Errorf("different options shared a cache entry")
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range []string{"dot", "svg", "png", "pdf"} {
		if _, err := ParseFormat(f); err != nil {
			t.Errorf("ParseFormat(%q) = %v", f, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("ParseFormat(gif) succeeded")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testSnapshot(), DOTOptions{Stacks: true}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("Retro notes")) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}

func lineOf(s, prefix string) string {
	for _, l := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), prefix) {
			return l
		}
	}
	return ""
}

func TestConvertWithoutRsvg(t *testing.T) {
	defer func(b string) { rsvgBinary = b }(rsvgBinary)
	rsvgBinary = "corkboard-no-such-converter"

	for name, convert := range map[string]func() ([]byte, error){
		"png": func() ([]byte, error) { return ToPNG(context.Background(), []byte("<svg/>"), 2) },
		"pdf": func() ([]byte, error) { return ToPDF(context.Background(), []byte("<svg/>")) },
	} {
		if _, err := convert(); !errors.Is(err, ErrNoConverter) {
			t.Errorf("%s: err = %v, want ErrNoConverter", name, err)
		}
	}
}
