// Package pool provides a simple, synchronous, thread-safe database
// connection pool. It hands out a bounded number of reusable connection
// handles, recycles them on return, discards broken connections and
// reclaims connections held past their checkout deadline.
package pool

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/guileen/dbpool/driver"
	"github.com/guileen/dbpool/logger"
)

// Pool is the pool manager. A single mutex guards the whole PoolState;
// acquisition is the only operation that may suspend, parking on the
// released channel for at most Config.TimeToWait per round.
//
// Opening a new physical connection and running the ping query both perform
// blocking I/O while the lock is held. This serializes connection creation
// and validation across all callers and bounds throughput under heavy
// churn; it is a deliberate simplicity-over-throughput trade-off.
type Pool struct {
	provider driver.Provider

	mu sync.Mutex
	// released carries at most one pending wake-up. A release that creates
	// an idle slot signals it; waiters re-check pool state in a loop after
	// every wake or timeout, so a dropped or spurious wake is harmless.
	released chan struct{}

	cfg                        Config
	expectedConnectionTypeCode int
	state                      PoolState
}

// New creates a pool over the given raw connection provider.
func New(provider driver.Provider, cfg Config) *Pool {
	p := &Pool{
		provider: provider,
		released: make(chan struct{}, 1),
		cfg:      cfg,
	}
	p.expectedConnectionTypeCode = assembleConnectionTypeCode(cfg.URL, cfg.Username, cfg.Password)
	return p
}

// GetConnection acquires a connection using the pool's default credentials.
func (p *Pool) GetConnection(ctx context.Context) (*PooledConn, error) {
	p.mu.Lock()
	username, password := p.cfg.Username, p.cfg.Password
	p.mu.Unlock()
	return p.popConnection(ctx, username, password)
}

// GetConnectionAs acquires a connection with the given login. The login is
// folded into the connection-type fingerprint, so a later configuration
// change closes the connection on return instead of recycling it.
func (p *Pool) GetConnectionAs(ctx context.Context, username, password string) (*PooledConn, error) {
	return p.popConnection(ctx, username, password)
}

// popConnection loops until it produces a usable wrapper or hits a fatal
// condition: the provider cannot open a connection, the bad-connection
// ceiling is exceeded, or the caller's context is cancelled mid-wait.
func (p *Pool) popConnection(ctx context.Context, username, password string) (*PooledConn, error) {
	countedWait := false
	var conn *PooledConn
	start := nowMillis()
	localBadConnectionCount := 0

	for conn == nil {
		p.mu.Lock()
		if idle := p.state.popIdle(); idle != nil {
			// Pool has an available connection.
			conn = idle
			logger.Debug("Checked out connection from pool", logger.ConnID(conn.ID()))
		} else if len(p.state.activeConnections) < p.cfg.MaxActiveConnections {
			// No idle connection, but the pool may still grow.
			real, err := p.provider.Open(ctx, driver.Credentials{URL: p.cfg.URL, Username: username, Password: password})
			if err != nil {
				p.mu.Unlock()
				return nil, WrapError(ErrCodeOpenFailed, "acquire", "could not open a new connection", err)
			}
			conn = newPooledConn(real, p)
			logger.Debug("Created connection", logger.ConnID(conn.ID()))
		} else {
			// Cannot create a new connection. The front of the active list
			// is the oldest checkout; reclaim it if it is overdue,
			// otherwise park until a release or the wait deadline.
			oldest := p.state.activeConnections[0]
			longestCheckout := oldest.checkoutMillis()
			if longestCheckout > p.cfg.MaxCheckoutTime.Milliseconds() {
				p.state.claimedOverdueConnectionCount++
				p.state.accumulatedCheckoutTimeOfOverdueConnections += longestCheckout
				p.state.accumulatedCheckoutTime += longestCheckout
				p.state.removeActive(oldest)
				if !oldest.real.AutoCommit() {
					if err := oldest.real.Rollback(ctx); err != nil {
						// Keep going: the goal is to recover the physical
						// connection. If it is truly broken the validity
						// check below discards it.
						logger.Debug("Bad connection. Could not roll back", logger.ConnID(oldest.ID()), logger.ErrorField(err))
					}
				}
				conn = newPooledConn(oldest.real, p)
				conn.createdAt = oldest.createdAt
				conn.lastUsedAt = oldest.lastUsedAt
				oldest.Invalidate()
				logger.Debug("Claimed overdue connection", logger.ConnID(conn.ID()))
			} else {
				if !countedWait {
					p.state.hadToWaitCount++
					countedWait = true
				}
				wait := p.cfg.TimeToWait
				logger.Debug("Waiting for connection", "time_to_wait", wait.String())
				wt := nowMillis()
				p.mu.Unlock()

				var interrupted error
				timer := time.NewTimer(wait)
				select {
				case <-p.released:
					timer.Stop()
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					interrupted = ctx.Err()
				}

				p.mu.Lock()
				p.state.accumulatedWaitTime += nowMillis() - wt
				p.mu.Unlock()
				if interrupted != nil {
					return nil, WrapError(ErrCodeInterrupted, "acquire", "interrupted while waiting for a connection", interrupted)
				}
				// Re-check everything: another caller may have taken the
				// slot this wake-up was for.
				continue
			}
		}

		if conn.isValid(ctx) {
			// The previous holder must not leak transaction state to us.
			if !conn.real.AutoCommit() {
				if err := conn.real.Rollback(ctx); err != nil {
					p.mu.Unlock()
					return nil, WrapError(ErrCodeRollback, "acquire", "could not roll back previous transaction state", err)
				}
			}
			conn.connectionTypeCode = assembleConnectionTypeCode(p.cfg.URL, username, password)
			now := nowMillis()
			conn.checkedOutAt = now
			conn.lastUsedAt = now
			p.state.activeConnections = append(p.state.activeConnections, conn)
			p.state.requestCount++
			p.state.accumulatedRequestTime += nowMillis() - start
		} else {
			logger.Debug("A bad connection was returned from the pool, getting another connection", logger.ConnID(conn.ID()))
			p.state.badConnectionCount++
			localBadConnectionCount++
			conn = nil
			if localBadConnectionCount > p.cfg.MaxIdleConnections+p.cfg.BadConnectionTolerance {
				p.mu.Unlock()
				logger.Debug("Could not get a good connection to the database")
				return nil, NewPoolError(ErrCodeExhausted, "acquire", "could not get a good connection to the database")
			}
		}
		p.mu.Unlock()
	}

	// The loop either produces a connection or returns early; reaching this
	// with a nil connection means an invariant was violated.
	if conn == nil {
		return nil, NewPoolError(ErrCodeExhausted, "acquire", "unknown severe error condition: the pool returned a null connection")
	}
	return conn, nil
}

// pushConnection folds a returned handle back into the pool: recycle it
// into the idle list, close it when the idle list is full or the pool
// configuration changed underneath it, or just count it when it is broken.
func (p *Pool) pushConnection(ctx context.Context, conn *PooledConn) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.removeActive(conn)
	if !conn.isValid(ctx) {
		logger.Debug("A bad connection attempted to return to the pool, discarding connection", logger.ConnID(conn.ID()))
		p.state.badConnectionCount++
		return nil
	}

	p.state.accumulatedCheckoutTime += conn.checkoutMillis()
	if len(p.state.idleConnections) < p.cfg.MaxIdleConnections && conn.connectionTypeCode == p.expectedConnectionTypeCode {
		if !conn.real.AutoCommit() {
			if err := conn.real.Rollback(ctx); err != nil {
				return WrapError(ErrCodeRollback, "release", "could not roll back returned connection", err)
			}
		}
		// A fresh wrapper takes over the physical connection. The returned
		// wrapper is invalidated so a caller that kept the old handle
		// fails loudly instead of touching a connection it no longer owns.
		newConn := newPooledConn(conn.real, p)
		newConn.createdAt = conn.createdAt
		newConn.lastUsedAt = conn.lastUsedAt
		p.state.idleConnections = append(p.state.idleConnections, newConn)
		conn.Invalidate()
		logger.Debug("Returned connection to pool", logger.ConnID(newConn.ID()))
		p.signal()
		return nil
	}

	// Idle capacity is full or the pool was reconfigured since checkout.
	if !conn.real.AutoCommit() {
		if err := conn.real.Rollback(ctx); err != nil {
			return WrapError(ErrCodeRollback, "release", "could not roll back returned connection", err)
		}
	}
	err := conn.real.Close(ctx)
	conn.Invalidate()
	logger.Debug("Closed connection", logger.ConnID(conn.ID()))
	return err
}

// ForceCloseAll invalidates and closes every idle and active connection.
// It runs whenever a configuration parameter changes and on shutdown.
// Teardown is best-effort: rollback and close failures are swallowed so a
// forced close never escalates an error.
func (p *Pool) ForceCloseAll(ctx context.Context) {
	p.mu.Lock()
	p.expectedConnectionTypeCode = assembleConnectionTypeCode(p.cfg.URL, p.cfg.Username, p.cfg.Password)

	for i := len(p.state.activeConnections); i > 0; i-- {
		conn := p.state.activeConnections[i-1]
		p.state.activeConnections = p.state.activeConnections[:i-1]
		p.closeQuietly(ctx, conn)
	}
	for i := len(p.state.idleConnections); i > 0; i-- {
		conn := p.state.idleConnections[i-1]
		p.state.idleConnections = p.state.idleConnections[:i-1]
		p.closeQuietly(ctx, conn)
	}
	p.mu.Unlock()

	logger.Debug("Forcefully closed/removed all connections")
}

// closeQuietly invalidates a wrapper and tears down its physical connection,
// swallowing every failure.
func (p *Pool) closeQuietly(ctx context.Context, conn *PooledConn) {
	conn.Invalidate()
	real := conn.real
	if real == nil {
		return
	}
	if !real.AutoCommit() {
		if err := real.Rollback(ctx); err != nil {
			logger.Debug("Rollback failed during forced close", logger.ConnID(real.ID()), logger.ErrorField(err))
		}
	}
	if err := real.Close(ctx); err != nil {
		logger.Debug("Close failed during forced close", logger.ConnID(real.ID()), logger.ErrorField(err))
	}
}

// pingConnection checks whether a wrapper's physical connection is still
// usable. The probe query only runs when probing is enabled and the
// connection has been idle past the configured threshold; a probe failure
// closes the physical connection and is terminal for it.
func (p *Pool) pingConnection(ctx context.Context, conn *PooledConn) bool {
	result := !conn.real.IsClosed()

	if result && p.cfg.PingEnabled && p.cfg.PingNotUsedFor >= 0 &&
		conn.idleMillis() > p.cfg.PingNotUsedFor.Milliseconds() {
		logger.Debug("Testing connection", logger.ConnID(conn.ID()))
		err := conn.real.Ping(ctx, p.cfg.PingQuery)
		if err == nil && !conn.real.AutoCommit() {
			// Discarding a leftover transaction is part of the probe.
			err = conn.real.Rollback(ctx)
		}
		if err != nil {
			logger.Warn("Execution of ping query failed", logger.ConnID(conn.ID()), logger.PingQuery(p.cfg.PingQuery), logger.ErrorField(err))
			if closeErr := conn.real.Close(ctx); closeErr != nil {
				logger.Debug("Close failed after ping failure", logger.ConnID(conn.ID()), logger.ErrorField(closeErr))
			}
			result = false
		} else {
			logger.Debug("Connection is good", logger.ConnID(conn.ID()))
		}
	}
	return result
}

// signal wakes one waiter. The channel holds a single pending wake-up;
// anything beyond that is recovered by the waiters' timed re-check loop.
func (p *Pool) signal() {
	select {
	case p.released <- struct{}{}:
	default:
	}
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.snapshot()
}

// Config returns a copy of the current configuration.
func (p *Pool) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// assembleConnectionTypeCode fingerprints (url, username, password) so the
// pool can detect that its configuration changed underneath an in-flight
// connection.
func assembleConnectionTypeCode(url, username, password string) int {
	h := fnv.New32a()
	h.Write([]byte(url))
	h.Write([]byte(username))
	h.Write([]byte(password))
	return int(int32(h.Sum32()))
}
