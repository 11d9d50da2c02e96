package pool

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/guileen/dbpool/driver"
)

// PooledConn wraps one physical connection handed out by the pool. A wrapper
// is permanently invalidated when the pool reclaims or recycles it; every
// delegated operation on an invalidated wrapper fails, so a caller holding a
// stale handle cannot touch a connection now owned by someone else.
type PooledConn struct {
	real driver.Conn
	pool *Pool

	connectionTypeCode int

	// Unix-millisecond markers, written by the pool under its lock.
	createdAt    int64
	lastUsedAt   int64
	checkedOutAt int64

	valid atomic.Bool
}

func newPooledConn(real driver.Conn, p *Pool) *PooledConn {
	c := &PooledConn{
		real:       real,
		pool:       p,
		createdAt:  nowMillis(),
		lastUsedAt: nowMillis(),
	}
	c.valid.Store(true)
	return c
}

// ID returns the identifier of the underlying physical connection. It is
// stable across re-wrapping and used for diagnostics only.
func (c *PooledConn) ID() string {
	return c.real.ID()
}

// Valid reports whether the wrapper has not been invalidated. It does not
// probe the physical connection; the pool does that on checkout.
func (c *PooledConn) Valid() bool {
	return c.valid.Load()
}

// Invalidate marks the wrapper unusable. The transition is one-way and
// idempotent; closing or rolling back the physical connection is the
// caller's responsibility since some invalidations hand the raw connection
// to a fresh wrapper.
func (c *PooledConn) Invalidate() {
	c.valid.Store(false)
}

// isValid is the full checkout-time validity check: the wrapper must not be
// invalidated and the physical connection must pass the pool's probe.
func (c *PooledConn) isValid(ctx context.Context) bool {
	return c.valid.Load() && c.real != nil && c.pool.pingConnection(ctx, c)
}

func (c *PooledConn) checkState(op string) error {
	if !c.valid.Load() {
		return NewPoolError(ErrCodeInvalidated, op, "connection handle was invalidated after being returned to the pool")
	}
	return nil
}

// Exec runs a statement on the underlying connection.
func (c *PooledConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := c.checkState("exec"); err != nil {
		return 0, err
	}
	return c.real.Exec(ctx, sql, args...)
}

// Commit commits the open transaction on the underlying connection.
func (c *PooledConn) Commit(ctx context.Context) error {
	if err := c.checkState("commit"); err != nil {
		return err
	}
	return c.real.Commit(ctx)
}

// Rollback aborts the open transaction on the underlying connection.
func (c *PooledConn) Rollback(ctx context.Context) error {
	if err := c.checkState("rollback"); err != nil {
		return err
	}
	return c.real.Rollback(ctx)
}

// Ping probes the underlying connection with the given query.
func (c *PooledConn) Ping(ctx context.Context, query string) error {
	if err := c.checkState("ping"); err != nil {
		return err
	}
	return c.real.Ping(ctx, query)
}

// Close returns the handle to the pool. The pool decides whether the
// physical connection is reused, downgraded or discarded. Close works on an
// invalidated handle too; the pool counts it as a bad return.
func (c *PooledConn) Close(ctx context.Context) error {
	return c.pool.pushConnection(ctx, c)
}

// Raw unwraps the handle back to the physical connection for callers that
// need backend-specific features.
func (c *PooledConn) Raw() driver.Conn {
	return c.real
}

// CreatedAt returns the creation time of the physical connection. It is
// carried forward when the pool re-wraps the connection.
func (c *PooledConn) CreatedAt() time.Time {
	return time.UnixMilli(c.createdAt)
}

// LastUsedAt returns the time the connection was last checked out or
// returned.
func (c *PooledConn) LastUsedAt() time.Time {
	return time.UnixMilli(c.lastUsedAt)
}

// idleMillis is the time elapsed since the connection was last used.
func (c *PooledConn) idleMillis() int64 {
	return nowMillis() - c.lastUsedAt
}

// checkoutMillis is the time elapsed since the connection was checked out.
func (c *PooledConn) checkoutMillis() int64 {
	return nowMillis() - c.checkedOutAt
}

// TimeElapsedSinceLastUse returns how long the connection has been idle.
func (c *PooledConn) TimeElapsedSinceLastUse() time.Duration {
	return time.Duration(c.idleMillis()) * time.Millisecond
}

// CheckoutTime returns how long the connection has been checked out.
func (c *PooledConn) CheckoutTime() time.Duration {
	return time.Duration(c.checkoutMillis()) * time.Millisecond
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
