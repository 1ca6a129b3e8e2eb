package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const defaultQueryTimeout = 5 * time.Second

// scoped returns a session bound to a context that expires after timeout, so
// no repository call blocks indefinitely.
func scoped(db *gorm.DB, timeout time.Duration) (*gorm.DB, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return db.WithContext(ctx), cancel
}

// page applies skip/limit to a query. A non-positive limit means no limit.
func page(q *gorm.DB, skip, limit int) *gorm.DB {
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

// window slices an in-memory result the same way page does for queries.
func window[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
