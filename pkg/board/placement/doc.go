// Package placement assigns and validates item positions when a board loads.
//
// Two pieces cooperate:
//
//   - [Placer] generates positions for n items on a canvas. The canvas is cut
//     into a [Grid] of cells the size of one item, the cell order is shuffled and
//     each item takes one cell plus a small random jitter. The result looks like a
//     scattered corkboard while keeping exact overlaps unlikely. When there are
//     more items than cells the overflow is placed uniformly at random; duplicates
//     are tolerated rather than prevented.
//
//   - [Reconciler] walks the stored positions fetched from the backend. Positions
//     that are finite, inside the canvas and outside the small dead zone at the
//     origin are kept. Everything else (missing, negative, NaN, out of range) is
//     regenerated by the Placer and pushed to the backend as a fire-and-forget
//     correction. Reconciliation never blocks on the backend and never retries.
//
// # Determinism
//
// The Placer draws from a PCG source seeded explicitly, so a fixed seed yields
// the same layout:
//
//	p := placement.NewPlacer(42, nil)
//	positions := p.Assign(5, dims)
package placement
