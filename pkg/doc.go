// Package pkg provides the core libraries of the Corkboard board engine.
//
// # Overview
//
// A board is a large canvas of sticky notes. Notes are dragged with a touch or
// a mouse, dropped onto each other to form stacks, and the canvas is panned and
// zoomed. The engine keeps the positions it shows consistent with the backend:
// every note gets a valid spot on load and every committed drag is written
// behind to a store.
//
// # Architecture
//
// The data flow of one open board:
//
//	store.ItemSource (memory, file, sqlite, redis, mongo, REST)
//	         ↓
//	[board/placement] reconcile positions against the canvas
//	         ↓
//	[board] VirtualMap (committed + working positions, z-order)
//	         ↓
//	[gesture] / [canvas] / [stack] per-item drags, pan and zoom, grouping
//	         ↓
//	[writeback] queue → store.PositionWriter
//
// [session] wires all of these together for one board and is what a frontend
// (the terminal view, the render command) talks to.
//
// # Quick Start
//
// Open a board, drag a note and let the queue persist it:
//
//	st := store.NewMemory()
//	q := writeback.New(st, writeback.Options{Logger: logger})
//	defer q.Close(ctx)
//
//	s, _ := session.New("b1", session.Options{Source: st, Writer: q})
//	if err := s.Load(ctx); err != nil {
//	    return err
//	}
//
//	s.Press(7)
//	s.Move(7, 40, 0)
//	s.Release(7) // commits, queues the write, may create a stack
//
// # Main Packages
//
// ## Engine
//
// [board] - Positions, items, canvas sizing and the VirtualMap.
//
// [board/placement] - Seeded jittered-grid placement and load-time
// reconciliation of stored positions.
//
// [gesture] - Per-item press/move/release recognizer. A pure step function
// drives a small controller that lifts, tracks and commits.
//
// [canvas] - Pan and pinch transform with clamping and an animated reset.
//
// [stack] - Grouping of dropped notes by proximity, detach and naming.
//
// [minimap] - Circular overview of the scroll position that fades out after
// scrolling stops.
//
// [anim] - Observable values that jump or animate on an injectable clock.
//
// [session] - One open board: load, resync, gestures, stacks and saved state.
//
// ## Persistence
//
// [store] - Store interfaces with memory and JSON-file implementations, plus
// sqlite, redis and mongo subpackages and a shared conformance suite.
//
// [writeback] - Rate-limited, at-most-once write-behind queue.
//
// [api] - Wire types and the REST client that implements store.Store.
//
// [server] - chi HTTP server exposing a store to REST clients.
//
// ## Output
//
// [render] - Graphviz snapshots of a board (DOT, SVG, PNG, PDF) with a cache
// in front.
//
// [cache] - File and null caches with TTLs and scoped keys.
//
// ## Support
//
// [config] - TOML configuration with defaults and validation.
//
// [errors] - Coded errors, HTTP status mapping and input validation.
//
// [observability] - Hooks for loads, gestures, stacks and writes.
//
// [httputil] - Retry with backoff for the REST client.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/session/...       # Specific package
//	go test ./pkg/store/...         # Store conformance (memory, file, sqlite)
//
// [board]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/board
// [board/placement]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/board/placement
// [gesture]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/gesture
// [canvas]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/canvas
// [stack]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/stack
// [minimap]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/minimap
// [anim]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/anim
// [session]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/session
// [store]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/store
// [writeback]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/writeback
// [api]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/api
// [server]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/server
// [render]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/corkboard/pkg/httputil
package pkg
