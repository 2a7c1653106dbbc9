package dbpkg

import (
	"context"
	"time"
)

type detachedContext struct {
	parent context.Context
}

func (detachedContext) Deadline() (time.Time, bool) { return time.Time{}, false }
func (detachedContext) Done() <-chan struct{}       { return nil }
func (detachedContext) Err() error                  { return nil }

func (c detachedContext) Value(key interface{}) interface{} { return c.parent.Value(key) }

// Detach returns a context carrying the values of ctx that is never canceled
// and has no deadline.
//
// database/sql rolls a transaction back as soon as the context it was begun
// with is done. Transactions that must outlive the request, such as one that
// records a payout already delivered, are begun with a detached context.
func Detach(ctx context.Context) context.Context {
	return detachedContext{parent: ctx}
}
