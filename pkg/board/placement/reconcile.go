package placement

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/corkboard/pkg/board"
)

// Correction records one regenerated position.
type Correction struct {
	ItemID int64
	From   board.Position
	To     board.Position
}

// Result is the outcome of a reconciliation pass.
type Result struct {
	Items       []board.Item
	Corrections []Correction
}

// Reconciler validates stored positions and regenerates invalid ones.
type Reconciler struct {
	placer *Placer
	writer board.Writer
	logger *log.Logger
	now    func() time.Time
}

// NewReconciler returns a Reconciler that generates positions with placer and
// submits corrections to w. A nil writer discards corrections, a nil logger
// uses log.Default().
func NewReconciler(placer *Placer, w board.Writer, logger *log.Logger) *Reconciler {
	if w == nil {
		w = board.DiscardWriter
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{placer: placer, writer: w, logger: logger, now: time.Now}
}

// Valid reports whether a stored position can be kept as is.
func (r *Reconciler) Valid(pos board.Position, dims board.Dimensions) bool {
	opts := r.placer.Options()
	return dims.Contains(pos, opts.Item) && !InDeadZone(pos, opts.DeadZone)
}

// Reconcile returns items with every position either accepted or replaced.
//
// Each replacement is submitted exactly once to the writer and is not awaited.
// The input slice is not modified.
func (r *Reconciler) Reconcile(ctx context.Context, boardID string, items []board.Item, dims board.Dimensions) Result {
	out := make([]board.Item, len(items))
	copy(out, items)

	var invalid []int
	taken := make([]board.Position, 0, len(out))
	for i, it := range out {
		if r.Valid(it.Position, dims) {
			taken = append(taken, it.Position)
			continue
		}
		invalid = append(invalid, i)
	}
	if len(invalid) == 0 {
		return Result{Items: out}
	}

	fresh := r.placer.AssignAvoiding(len(invalid), dims, taken)
	corrections := make([]Correction, 0, len(invalid))
	for k, i := range invalid {
		c := Correction{ItemID: out[i].ID, From: out[i].Position, To: fresh[k]}
		out[i].Position = c.To
		corrections = append(corrections, c)

		r.logger.Debug("corrected position",
			"board", boardID,
			"item", c.ItemID,
			"top", c.To.Top,
			"left", c.To.Left)

		r.writer.Submit(board.PositionUpdate{
			BoardID:  boardID,
			ItemID:   c.ItemID,
			Position: c.To,
			Origin:   board.OriginReconcile,
			IssuedAt: r.now(),
		})
	}

	r.logger.Info("reconciled positions",
		"board", boardID,
		"items", len(out),
		"corrected", len(corrections))

	return Result{Items: out, Corrections: corrections}
}
