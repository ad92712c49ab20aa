// Package writeback persists position updates in the background.
//
// Board interactions never wait for the backend. The reconciler and the drag
// controller hand updates to a [Queue], which returns immediately; worker
// goroutines deliver them to a [store.PositionWriter]. Delivery is at most
// once. A full buffer drops the update, and a failed write is logged and
// forgotten. The next full board load repairs any drift. Updates are handled
// by several workers, so two writes for the same item may land out of order.
package writeback

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/observability"
	"github.com/matzehuels/corkboard/pkg/store"
)

// Options configures a Queue. Zero values select defaults.
type Options struct {
	Workers int           // default 2
	Buffer  int           // default 256
	Rate    float64       // writes per second across all workers; 0 = unlimited
	Burst   int           // default 8
	Timeout time.Duration // per write, default 5s
	Logger  *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.Buffer <= 0 {
		o.Buffer = 256
	}
	if o.Burst <= 0 {
		o.Burst = 8
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Stats counts queue activity since creation.
type Stats struct {
	Submitted int64
	Written   int64
	Failed    int64
	Dropped   int64
}

// Queue is an asynchronous, at-most-once board.Writer.
type Queue struct {
	dst     store.PositionWriter
	opts    Options
	logger  *log.Logger
	limiter *rate.Limiter
	jobs    chan board.PositionUpdate

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	submitted, written, failed, dropped atomic.Int64
}

// New starts the workers.
func New(dst store.PositionWriter, opts Options) *Queue {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		dst:    dst,
		opts:   opts,
		logger: opts.Logger,
		jobs:   make(chan board.PositionUpdate, opts.Buffer),
		ctx:    ctx,
		cancel: cancel,
	}
	if opts.Rate > 0 {
		q.limiter = rate.NewLimiter(rate.Limit(opts.Rate), opts.Burst)
	}
	for range opts.Workers {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Submit enqueues u without blocking. The update is dropped when the buffer is
// full or the queue is closed.
func (q *Queue) Submit(u board.PositionUpdate) {
	q.submitted.Add(1)
	if u.IssuedAt.IsZero() {
		u.IssuedAt = time.Now()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.drop(u, "queue closed")
		return
	}
	select {
	case q.jobs <- u:
	default:
		q.drop(u, "queue full")
	}
}

func (q *Queue) drop(u board.PositionUpdate, reason string) {
	q.dropped.Add(1)
	observability.Write().OnDrop(q.ctx, u.Origin)
	q.logger.Warn("position update dropped",
		"reason", reason,
		"board", u.BoardID,
		"item", u.ItemID,
		"origin", u.Origin)
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for u := range q.jobs {
		q.deliver(u)
	}
}

func (q *Queue) deliver(u board.PositionUpdate) {
	if q.ctx.Err() != nil {
		q.drop(u, "shutting down")
		return
	}
	if q.limiter != nil {
		if err := q.limiter.Wait(q.ctx); err != nil {
			q.drop(u, "shutting down")
			return
		}
	}

	ctx, cancel := context.WithTimeout(q.ctx, q.opts.Timeout)
	defer cancel()

	start := time.Now()
	err := q.dst.UpdatePosition(ctx, u.BoardID, u.ItemID, u.Position)
	elapsed := time.Since(start)
	observability.Write().OnWrite(ctx, u.Origin, elapsed, err)

	if err != nil {
		q.failed.Add(1)
		q.logger.Warn("position update failed",
			"board", u.BoardID,
			"item", u.ItemID,
			"origin", u.Origin,
			"err", err)
		return
	}
	q.written.Add(1)
	q.logger.Debug("position persisted",
		"board", u.BoardID,
		"item", u.ItemID,
		"origin", u.Origin,
		"top", u.Position.Top,
		"left", u.Position.Left,
		"latency", elapsed.Round(time.Millisecond),
		"queued", start.Sub(u.IssuedAt).Round(time.Millisecond))
}

// Close stops accepting updates and waits for the buffered ones to be
// delivered. When ctx ends first, in-flight writes are cancelled and the
// remaining updates are dropped.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

// Pending returns the number of buffered updates.
func (q *Queue) Pending() int { return len(q.jobs) }

// Stats returns a snapshot of the counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Submitted: q.submitted.Load(),
		Written:   q.written.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
	}
}

var _ board.Writer = (*Queue)(nil)
