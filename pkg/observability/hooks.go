// Package observability decouples the engine from its metrics backend.
//
// Sessions, the write-behind queue, the render cache and the REST client report
// events through the hook interfaces below. Nothing is recorded until a
// consumer registers an implementation; the Prometheus adapter in
// internal/metrics registers all four for `corkboard serve`.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBoardHooks(metrics.NewBoardHooks(reg))
//	    observability.SetWriteHooks(metrics.NewWriteHooks(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	err := writer.UpdatePosition(ctx, boardID, id, pos)
//	observability.Write().OnWrite(ctx, origin, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Board Hooks
// =============================================================================

// BoardHooks receives events from board sessions.
type BoardHooks interface {
	// OnLoad records a board load or resync.
	OnLoad(ctx context.Context, board string, items, corrections int, duration time.Duration, err error)

	// OnGesture records a finished item gesture ("tap" or "drag").
	OnGesture(ctx context.Context, board, outcome string)

	// OnStackChange records a stack membership change ("created", "joined",
	// "detached", "dissolved").
	OnStackChange(ctx context.Context, board, change string)
}

// =============================================================================
// Write Hooks
// =============================================================================

// WriteHooks receives events from the write-behind queue.
type WriteHooks interface {
	// OnWrite records a completed backend write. origin is "reconcile" or "drag".
	OnWrite(ctx context.Context, origin string, duration time.Duration, err error)

	// OnDrop records a write discarded because the queue was full or closed.
	OnDrop(ctx context.Context, origin string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives lookups and writes of the render cache. keyType names
// the kind of entry ("render").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives the requests of the REST store client. OnError is called
// instead of OnResponse when no response arrived.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBoardHooks ignores every event. Embed the Noop types to implement only
// some methods of an interface.
type NoopBoardHooks struct{}

func (NoopBoardHooks) OnLoad(context.Context, string, int, int, time.Duration, error) {}
func (NoopBoardHooks) OnGesture(context.Context, string, string)                      {}
func (NoopBoardHooks) OnStackChange(context.Context, string, string)                  {}

type NoopWriteHooks struct{}

func (NoopWriteHooks) OnWrite(context.Context, string, time.Duration, error) {}
func (NoopWriteHooks) OnDrop(context.Context, string)                        {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// slot holds the registered implementation of one hook interface.
type slot[T any] struct {
	mu   sync.RWMutex
	cur  T
	noop T
}

func newSlot[T any](noop T) *slot[T] { return &slot[T]{cur: noop, noop: noop} }

// set installs h. A nil h leaves the current hooks in place.
func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.noop
	s.mu.Unlock()
}

var (
	boardSlot = newSlot[BoardHooks](NoopBoardHooks{})
	writeSlot = newSlot[WriteHooks](NoopWriteHooks{})
	cacheSlot = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot  = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetBoardHooks registers the receiver of session events. Call it at startup,
// before the first board is loaded.
func SetBoardHooks(h BoardHooks) { boardSlot.set(h) }
func SetWriteHooks(h WriteHooks) { writeSlot.set(h) }
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }
func SetHTTPHooks(h HTTPHooks)   { httpSlot.set(h) }

// Board returns the registered board hooks, or no-ops.
func Board() BoardHooks { return boardSlot.get() }
func Write() WriteHooks { return writeSlot.get() }
func Cache() CacheHooks { return cacheSlot.get() }
func HTTP() HTTPHooks   { return httpSlot.get() }

// Reset restores the no-op hooks. Tests that register hooks defer it.
func Reset() {
	boardSlot.reset()
	writeSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
