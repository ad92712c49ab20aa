package cli

import (
	"context"
	"time"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/session"
	"github.com/matzehuels/corkboard/pkg/store"
	"github.com/matzehuels/corkboard/pkg/writeback"
)

// drainTimeout bounds how long a command waits for queued writes on exit.
const drainTimeout = 10 * time.Second

// newQueue starts a write-behind queue in front of dst.
func (c *CLI) newQueue(dst store.PositionWriter) *writeback.Queue {
	w := c.config().Writeback
	return writeback.New(dst, writeback.Options{
		Workers: w.Workers,
		Buffer:  w.Buffer,
		Rate:    w.Rate,
		Burst:   w.Burst,
		Timeout: w.Timeout,
		Logger:  c.Logger,
	})
}

// drain closes q and logs what happened to the submitted updates.
func (c *CLI) drain(q *writeback.Queue) writeback.Stats {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := q.Close(ctx); err != nil {
		c.Logger.Warn("pending writes abandoned", "err", err)
	}
	st := q.Stats()
	c.Logger.Debug("write queue closed",
		"submitted", st.Submitted,
		"written", st.Written,
		"failed", st.Failed,
		"dropped", st.Dropped)
	return st
}

// newSession opens a session for boardID. A nil writer discards position
// updates and a nil open ignores taps.
func (c *CLI) newSession(boardID string, src store.ItemSource, w board.Writer, open session.OpenFunc) (*session.Session, error) {
	return session.New(boardID, session.Options{
		Config: c.config(),
		Source: src,
		Writer: w,
		Open:   open,
		State:  c.newStateStore(),
		Logger: c.Logger,
	})
}
