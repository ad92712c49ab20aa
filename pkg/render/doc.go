// Package render draws a board snapshot.
//
// A [Snapshot] is everything a picture of the board depends on: canvas size,
// item size, items in paint order and stacks. [ToDOT] turns it into a Graphviz
// graph whose nodes are pinned at their canvas positions, and [RenderSVG] lays
// it out with the neato engine of go-graphviz. PNG and PDF output go through
// rsvg-convert ([ToPNG], [ToPDF]).
//
// A [Renderer] adds a cache in front of the pipeline. Snapshots hash to a
// stable key, so re-rendering an unchanged board is a file read:
//
//	r := render.NewRenderer(fileCache, nil, time.Hour, logger)
//	svg, err := r.Render(ctx, snap, render.Options{Format: render.FormatSVG})
//
// Stacked items are drawn rotated by their deterministic tilt, in the
// z-order of the session they were captured from. Each stack gets a label at
// its center.
package render
