// Package cache provides the bounded, time-expiring store for hotspot query
// results, keyed by the resolved time period. Concurrent callers within the
// TTL observe the same cached object; duplicate fetches on a miss are
// acceptable (no thundering-herd protection by design).
package cache

import (
	"context"

	"github.com/alertafuego/wildfire-service/internal/domain"
)

// Cache stores hotspot query results. Implementations must be safe for
// concurrent use. Lookup and store are best-effort: a failing backend
// behaves like a miss, never like an error.
type Cache interface {
	Get(ctx context.Context, key string) (domain.FireQueryResult, bool)
	Set(ctx context.Context, key string, value domain.FireQueryResult)
}
