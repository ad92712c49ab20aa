package gesture

import (
	"time"

	"github.com/matzehuels/corkboard/pkg/board"
)

// State is the recognizer state of one item.
type State int

// Recognizer states. Committed and Tapped are terminal.
const (
	Idle State = iota
	Armed
	Dragging
	Committed
	Tapped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	case Tapped:
		return "tapped"
	}
	return "unknown"
}

// Terminal reports whether s ends a gesture.
func (s State) Terminal() bool { return s == Committed || s == Tapped }

// Config holds the classification thresholds.
type Config struct {
	MoveThreshold  float64       `toml:"move_threshold"`
	ClickThreshold float64       `toml:"click_threshold"`
	TapWindow      time.Duration `toml:"tap_window"`
}

// DefaultConfig returns the standard thresholds: 3 px, 5 px and 300 ms.
func DefaultConfig() Config {
	return Config{
		MoveThreshold:  3,
		ClickThreshold: 5,
		TapWindow:      300 * time.Millisecond,
	}
}

// EventKind identifies a touch event.
type EventKind int

// Touch events.
const (
	EventDown EventKind = iota
	EventMove
	EventUp
	EventTerminate
)

// Event is one touch event for an item.
type Event struct {
	Kind   EventKind
	At     time.Time
	ItemID int64     // Down only
	Pinned bool      // Down only
	Delta  board.Vec // Move only: screen-space delta since the previous move
	Scale  float64   // Move only: canvas zoom in effect; ≤ 0 means 1
}

// Session is the transient drag state of one item.
type Session struct {
	State       State
	ItemID      int64
	StartedAt   time.Time
	Valid       bool      // gesture started on a movable item and is live
	Significant bool      // displacement reached the click threshold at some point
	Screen      board.Vec // Σ screen deltas
	Accumulated board.Vec // Σ canvas deltas
}

// Displacement returns the total screen-space displacement of the gesture.
func (s Session) Displacement() float64 { return s.Screen.Len() }

// EffectKind identifies a side effect requested by [Step].
type EffectKind int

// Effects, in the order a Controller should apply them.
const (
	EffectBringToFront EffectKind = iota
	EffectLockPan
	EffectLift
	EffectTrack
	EffectCommit
	EffectDiscard
	EffectDrop
	EffectUnlockPan
	EffectOpen
)

func (k EffectKind) String() string {
	switch k {
	case EffectBringToFront:
		return "bring-to-front"
	case EffectLockPan:
		return "lock-pan"
	case EffectLift:
		return "lift"
	case EffectTrack:
		return "track"
	case EffectCommit:
		return "commit"
	case EffectDiscard:
		return "discard"
	case EffectDrop:
		return "drop"
	case EffectUnlockPan:
		return "unlock-pan"
	case EffectOpen:
		return "open"
	}
	return "unknown"
}

// Effect is a side effect to apply after a transition. Delta is the
// accumulated canvas delta for Track and Commit.
type Effect struct {
	Kind  EffectKind
	Delta board.Vec
}
