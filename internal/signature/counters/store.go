// Package counters keeps the fast derived statistics consistent with signature
// state changes. The counter store is best-effort derived state, never a source
// of truth; a batch recomputation can always rebuild it from the record store.
package counters

import "context"

// Store is the narrow client interface over the fast key/counter backend. The
// engine only consumes this state; connection lifecycle belongs to the
// surrounding application.
//
// Increment operations must be atomic single-operation primitives so concurrent
// aggregation for the same petition needs no external locking.
type Store interface {
	// Get returns the integer at key, with ok=false when the key is absent.
	Get(ctx context.Context, key string) (value int64, ok bool, err error)
	Set(ctx context.Context, key string, value int64) error
	Incr(ctx context.Context, key string) (int64, error)
	// ZIncrBy adds delta to member's score in the scored set at key.
	ZIncrBy(ctx context.Context, key, member string, delta float64) error
}
