package gesture

import (
	"time"

	"github.com/matzehuels/corkboard/pkg/board"
)

// Step is the transition function of the recognizer.
//
// Events that make no sense in the current state (a move while idle, a second
// down while armed) are ignored and return s unchanged with no effects.
// Terminal states accept a new Down as if they were Idle.
func Step(s Session, ev Event, cfg Config) (Session, []Effect) {
	switch s.State {
	case Idle, Committed, Tapped:
		if ev.Kind != EventDown {
			return s, nil
		}
		return down(ev)
	case Armed, Dragging:
		switch ev.Kind {
		case EventMove:
			return move(s, ev, cfg)
		case EventUp, EventTerminate:
			return release(s, ev, cfg)
		}
	}
	return s, nil
}

func down(ev Event) (Session, []Effect) {
	if ev.Pinned {
		// Pinned notes never arm: the touch is an immediate tap.
		return Session{State: Tapped, ItemID: ev.ItemID, StartedAt: ev.At},
			[]Effect{{Kind: EffectOpen}}
	}
	return Session{State: Armed, ItemID: ev.ItemID, StartedAt: ev.At, Valid: true},
		[]Effect{{Kind: EffectBringToFront}}
}

func move(s Session, ev Event, cfg Config) (Session, []Effect) {
	scale := ev.Scale
	if scale <= 0 {
		scale = 1
	}
	s.Screen = s.Screen.Add(ev.Delta)
	s.Accumulated = s.Accumulated.Add(board.Vec{X: ev.Delta.X / scale, Y: ev.Delta.Y / scale})
	if s.Displacement() >= cfg.ClickThreshold {
		s.Significant = true
	}

	if s.State == Armed {
		if s.Displacement() <= cfg.MoveThreshold {
			return s, nil
		}
		s.State = Dragging
		return s, []Effect{
			{Kind: EffectLockPan},
			{Kind: EffectLift},
			{Kind: EffectTrack, Delta: s.Accumulated},
		}
	}
	return s, []Effect{{Kind: EffectTrack, Delta: s.Accumulated}}
}

func release(s Session, ev Event, cfg Config) (Session, []Effect) {
	wasDragging := s.State == Dragging
	s.Valid = false

	var effects []Effect
	if IsTap(s.Displacement(), ev.At.Sub(s.StartedAt), cfg) {
		s.State = Tapped
		if wasDragging {
			effects = append(effects,
				Effect{Kind: EffectDiscard},
				Effect{Kind: EffectDrop},
				Effect{Kind: EffectUnlockPan})
		}
		return s, append(effects, Effect{Kind: EffectOpen})
	}

	s.State = Committed
	effects = append(effects, Effect{Kind: EffectCommit, Delta: s.Accumulated})
	if wasDragging {
		effects = append(effects,
			Effect{Kind: EffectDrop},
			Effect{Kind: EffectUnlockPan})
	}
	return s, effects
}

// IsTap classifies a finished gesture. It is a tap iff the displacement stayed
// under the click threshold and the gesture was shorter than the tap window.
func IsTap(displacement float64, elapsed time.Duration, cfg Config) bool {
	return displacement < cfg.ClickThreshold && elapsed < cfg.TapWindow
}

// AllowTermination reports whether the host may take the touch away from the
// item. It refuses while a significant drag is in flight.
func AllowTermination(s Session) bool {
	return !(s.State == Dragging && s.Significant)
}
