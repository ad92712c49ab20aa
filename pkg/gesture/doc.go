// Package gesture recognizes per-item touch gestures on the board.
//
// Every item gets its own recognizer that turns a stream of touch events into
// exactly one outcome: a tap (open the item) or a drag (commit a new position).
// The recognizer is a finite-state machine:
//
//	Idle ──down──▶ Armed ──move > 3px──▶ Dragging
//	  │              │                      │
//	  │ (pinned)     └───────up─────────────┴──▶ Tapped | Committed
//	  └──down──▶ Tapped
//
// [Step] is the pure transition function: it takes a [Session] and an [Event]
// and returns the next Session plus a list of [Effect]s. It has no side effects,
// so the classification rules can be tested without a touch pipeline.
// [Controller] drives Step for one item and applies the effects to a [Host]
// (normally the board session) and to the item's visual observables.
//
// # Thresholds
//
// Two distances are involved. The move threshold (3 px) decides when Armed
// becomes Dragging and the visual lift starts. The click threshold (5 px),
// together with the 300 ms tap window, classifies the release: a gesture is a
// tap iff its total displacement is below the click threshold and it lasted less
// than the tap window. Anything else is a drag and commits
// initial position + Σ canvas deltas.
//
// # Zoom
//
// Move events carry raw screen deltas. Each delta is divided by the canvas scale
// in effect when it is reported, so the note tracks the finger at any zoom.
package gesture
