package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/stack"
)

// DefaultColor fills items without a usable color.
const DefaultColor = "#fff59d"

const maxLabelRunes = 24

var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{6}|#[0-9a-fA-F]{3}|[a-z]+)$`)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Stacks draws a label at the center of every stack.
	Stacks bool
}

// ToDOT converts a snapshot to a neato graph. Every node is pinned, so the
// layout engine only draws. Graphviz puts the origin at the bottom left, so
// canvas tops are flipped.
func ToDOT(s Snapshot, opts DOTOptions) string {
	var buf bytes.Buffer
	w, h := s.ItemSize.Width, s.ItemSize.Height

	buf.WriteString("graph board {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  bgcolor=\"#d7b98e\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"filled\", fixedsize=true, width=%s, height=%s, fontsize=10, fontname=\"Helvetica\", penwidth=0.5];\n",
		inches(w), inches(h))
	buf.WriteString("\n")

	// Invisible corners pin the drawing to the full canvas.
	fmt.Fprintf(&buf, "  %q [style=invis, shape=point, pos=%q];\n", "_origin", pos(0, 0))
	fmt.Fprintf(&buf, "  %q [style=invis, shape=point, pos=%q];\n", "_corner", pos(s.Dimensions.Width, s.Dimensions.Height))
	buf.WriteString("\n")

	stacked := s.stacked()
	for _, it := range s.Items {
		x := it.Position.Left + w/2
		y := s.Dimensions.Height - (it.Position.Top + h/2)
		attrs := []string{
			fmt.Sprintf("label=%q", Label(it)),
			fmt.Sprintf("fillcolor=%q", Color(it.Color)),
			fmt.Sprintf("pos=%q", pos(x, y)),
		}
		if it.Pinned {
			attrs = append(attrs, "penwidth=2", "color=\"#b71c1c\"")
		}
		if _, ok := stacked[it.ID]; ok {
			if r := stack.Rotation(it.ID, s.MaxTilt); r != 0 {
				attrs = append(attrs, "orientation="+strconv.FormatFloat(r, 'f', 2, 64))
			}
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(it.ID), strings.Join(attrs, ", "))
	}

	if opts.Stacks && len(s.Stacks) > 0 {
		buf.WriteString("\n")
		for _, st := range s.Stacks {
			name := st.Name
			if name == "" {
				name = fmt.Sprintf("%d items", len(st.Members))
			}
			x := st.Center.Left + w/2
			y := s.Dimensions.Height - st.Center.Top + 14
			fmt.Fprintf(&buf, "  %q [shape=plaintext, style=\"\", fixedsize=false, fontsize=12, fontcolor=\"#3e2723\", label=%q, pos=%q];\n",
				"stack:"+st.ID, name, pos(x, y))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int64) string { return "item:" + strconv.FormatInt(id, 10) }

func pos(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64) + "," + strconv.FormatFloat(y, 'f', 1, 64) + "!"
}

func inches(px float64) string {
	return strconv.FormatFloat(px/72, 'f', 3, 64)
}

// Color returns c when it is a #rrggbb color and DefaultColor otherwise.
func Color(c string) string {
	if colorRe.MatchString(c) {
		return c
	}
	return DefaultColor
}

// Label shows the first of title, text or content found in the payload,
// or the item id.
func Label(it board.Item) string {
	var fields map[string]any
	if len(it.Payload) > 0 && json.Unmarshal(it.Payload, &fields) == nil {
		for _, k := range []string{"title", "text", "content"} {
			if v, ok := fields[k].(string); ok && strings.TrimSpace(v) != "" {
				return truncate(strings.TrimSpace(v), maxLabelRunes)
			}
		}
	}
	return "#" + strconv.FormatInt(it.ID, 10)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RenderSVG lays out a DOT graph with neato and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the svg tag so the drawing scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
