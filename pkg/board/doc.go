// Package board defines the core data model of the spatial board engine.
//
// A board is a large virtual canvas holding movable note items ("post-its").
// This package owns the pieces every other component shares:
//
//   - [Item], [Position], [Size] and [Dimensions]: the plain data model
//   - [ComputeDimensions]: sizes the canvas from the item count and viewport
//   - [VirtualMap]: the session's authoritative id → item cache
//   - [Writer]: the fire-and-forget sink for backend position updates
//
// # Coordinates
//
// Positions are canvas pixels measured from the top-left corner, expressed as
// {Top, Left} to match the persisted representation. Every valid position of an
// item satisfies 0 ≤ Top ≤ Height − itemHeight and 0 ≤ Left ≤ Width − itemWidth.
//
// # Ownership
//
// The [VirtualMap] is the only thing a renderer reads. The backend is a
// write-behind copy: updates flow out through a [Writer] and are never awaited.
// None of the types in this package are safe for concurrent use; a board
// session runs on a single interaction goroutine.
package board
