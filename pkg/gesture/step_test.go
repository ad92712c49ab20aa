package gesture

import (
	"testing"
	"time"

	"github.com/matzehuels/corkboard/pkg/board"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, len(effects))
	for i, e := range effects {
		out[i] = e.Kind
	}
	return out
}

func equalKinds(a, b []EffectKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func run(t *testing.T, events []Event) (Session, []Effect) {
	t.Helper()
	cfg := DefaultConfig()
	var s Session
	var all []Effect
	for _, ev := range events {
		var effects []Effect
		s, effects = Step(s, ev, cfg)
		all = append(all, effects...)
	}
	return s, all
}

func TestStepClassification(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   State
	}{
		{
			name: "quick tap without movement",
			events: []Event{
				{Kind: EventDown, At: t0},
				{Kind: EventUp, At: t0.Add(100 * time.Millisecond)},
			},
			want: Tapped,
		},
		{
			name: "short wiggle under click threshold",
			events: []Event{
				{Kind: EventDown, At: t0},
				{Kind: EventMove, Delta: board.Vec{X: 2, Y: 2}, Scale: 1},
				{Kind: EventUp, At: t0.Add(150 * time.Millisecond)},
			},
			want: Tapped,
		},
		{
			name: "long press without movement",
			events: []Event{
				{Kind: EventDown, At: t0},
				{Kind: EventUp, At: t0.Add(400 * time.Millisecond)},
			},
			want: Committed,
		},
		{
			name: "fast flick",
			events: []Event{
				{Kind: EventDown, At: t0},
				{Kind: EventMove, Delta: board.Vec{X: 40}, Scale: 1},
				{Kind: EventUp, At: t0.Add(80 * time.Millisecond)},
			},
			want: Committed,
		},
		{
			name: "terminate resolves like release",
			events: []Event{
				{Kind: EventDown, At: t0},
				{Kind: EventMove, Delta: board.Vec{X: 10}, Scale: 1},
				{Kind: EventTerminate, At: t0.Add(500 * time.Millisecond)},
			},
			want: Committed,
		},
		{
			name: "pinned down is tap",
			events: []Event{
				{Kind: EventDown, At: t0, Pinned: true},
			},
			want: Tapped,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := run(t, tt.events)
			if s.State != tt.want {
				t.Errorf("state = %v, want %v", s.State, tt.want)
			}
		})
	}
}

func TestStepExactlyOneOutcome(t *testing.T) {
	// Every completed gesture yields exactly one of Open or Commit.
	sequences := [][]Event{
		{{Kind: EventDown, At: t0}, {Kind: EventUp, At: t0.Add(10 * time.Millisecond)}},
		{{Kind: EventDown, At: t0}, {Kind: EventMove, Delta: board.Vec{X: 4}}, {Kind: EventUp, At: t0.Add(time.Second)}},
		{{Kind: EventDown, At: t0}, {Kind: EventMove, Delta: board.Vec{Y: 100}}, {Kind: EventUp, At: t0.Add(time.Second)}},
		{{Kind: EventDown, At: t0, Pinned: true}},
		{{Kind: EventDown, At: t0}, {Kind: EventTerminate, At: t0}},
	}
	for i, seq := range sequences {
		_, effects := run(t, seq)
		n := 0
		for _, e := range effects {
			if e.Kind == EffectOpen || e.Kind == EffectCommit {
				n++
			}
		}
		if n != 1 {
			t.Errorf("sequence %d: got %d outcomes (%v), want 1", i, n, kinds(effects))
		}
	}
}

func TestStepArmedToDragging(t *testing.T) {
	cfg := DefaultConfig()
	s, effects := Step(Session{}, Event{Kind: EventDown, At: t0, ItemID: 7}, cfg)
	if s.State != Armed || !s.Valid || s.ItemID != 7 {
		t.Fatalf("after down: %+v", s)
	}
	if !equalKinds(kinds(effects), []EffectKind{EffectBringToFront}) {
		t.Errorf("down effects = %v", kinds(effects))
	}

	s, effects = Step(s, Event{Kind: EventMove, Delta: board.Vec{X: 2}, Scale: 1}, cfg)
	if s.State != Armed || len(effects) != 0 {
		t.Fatalf("2px move should stay armed: %v %v", s.State, kinds(effects))
	}

	s, effects = Step(s, Event{Kind: EventMove, Delta: board.Vec{X: 2}, Scale: 1}, cfg)
	if s.State != Dragging {
		t.Fatalf("4px total should drag, got %v", s.State)
	}
	want := []EffectKind{EffectLockPan, EffectLift, EffectTrack}
	if !equalKinds(kinds(effects), want) {
		t.Errorf("effects = %v, want %v", kinds(effects), want)
	}
}

func TestStepDeltasDividedByScale(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := Step(Session{}, Event{Kind: EventDown, At: t0}, cfg)
	s, _ = Step(s, Event{Kind: EventMove, Delta: board.Vec{X: 30, Y: 12}, Scale: 0.6}, cfg)
	s, _ = Step(s, Event{Kind: EventMove, Delta: board.Vec{X: 12}, Scale: 1.2}, cfg)

	want := board.Vec{X: 30/0.6 + 12/1.2, Y: 12 / 0.6}
	if s.Accumulated != want {
		t.Errorf("Accumulated = %+v, want %+v", s.Accumulated, want)
	}
	if s.Screen != (board.Vec{X: 42, Y: 12}) {
		t.Errorf("Screen = %+v", s.Screen)
	}
}

func TestStepCommitCarriesAccumulatedDelta(t *testing.T) {
	s, effects := run(t, []Event{
		{Kind: EventDown, At: t0},
		{Kind: EventMove, Delta: board.Vec{X: 10, Y: 5}, Scale: 2},
		{Kind: EventMove, Delta: board.Vec{X: 10, Y: 5}, Scale: 2},
		{Kind: EventUp, At: t0.Add(time.Second)},
	})
	if s.State != Committed {
		t.Fatalf("state = %v", s.State)
	}
	var commit *Effect
	for i := range effects {
		if effects[i].Kind == EffectCommit {
			commit = &effects[i]
		}
	}
	if commit == nil {
		t.Fatal("no commit effect")
	}
	if commit.Delta != (board.Vec{X: 10, Y: 5}) {
		t.Errorf("commit delta = %+v, want {10 5}", commit.Delta)
	}
}

func TestStepTapAfterDragDiscards(t *testing.T) {
	// Out and back within the tap window is still a tap; the tracked offset
	// must be discarded and the visuals restored.
	_, effects := run(t, []Event{
		{Kind: EventDown, At: t0},
		{Kind: EventMove, Delta: board.Vec{X: 6}, Scale: 1},
		{Kind: EventMove, Delta: board.Vec{X: -5}, Scale: 1},
		{Kind: EventUp, At: t0.Add(200 * time.Millisecond)},
	})
	got := kinds(effects)
	tail := got[len(got)-4:]
	want := []EffectKind{EffectDiscard, EffectDrop, EffectUnlockPan, EffectOpen}
	if !equalKinds(tail, want) {
		t.Errorf("release effects = %v, want %v", tail, want)
	}
}

func TestStepIgnoresStrayEvents(t *testing.T) {
	cfg := DefaultConfig()
	for _, kind := range []EventKind{EventMove, EventUp, EventTerminate} {
		s, effects := Step(Session{}, Event{Kind: kind, Delta: board.Vec{X: 50}}, cfg)
		if s.State != Idle || len(effects) != 0 {
			t.Errorf("kind %d on idle: %v %v", kind, s.State, kinds(effects))
		}
	}
	armed, _ := Step(Session{}, Event{Kind: EventDown, At: t0}, cfg)
	again, effects := Step(armed, Event{Kind: EventDown, At: t0.Add(time.Second)}, cfg)
	if again != armed || len(effects) != 0 {
		t.Errorf("second down changed session: %+v", again)
	}
}

func TestAllowTermination(t *testing.T) {
	tests := []struct {
		name string
		s    Session
		want bool
	}{
		{"idle", Session{}, true},
		{"armed", Session{State: Armed, Valid: true}, true},
		{"dragging small", Session{State: Dragging, Valid: true}, true},
		{"dragging significant", Session{State: Dragging, Valid: true, Significant: true}, false},
	}
	for _, tt := range tests {
		if got := AllowTermination(tt.s); got != tt.want {
			t.Errorf("%s: AllowTermination = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsTap(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		disp    float64
		elapsed time.Duration
		want    bool
	}{
		{0, 0, true},
		{4.9, 299 * time.Millisecond, true},
		{5, 100 * time.Millisecond, false},
		{0, 300 * time.Millisecond, false},
	}
	for _, tt := range tests {
		if got := IsTap(tt.disp, tt.elapsed, cfg); got != tt.want {
			t.Errorf("IsTap(%v, %v) = %v, want %v", tt.disp, tt.elapsed, got, tt.want)
		}
	}
}
