package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guileen/dbpool/driver"
)

// fakeConn is a scriptable driver.Conn for pool tests.
type fakeConn struct {
	id string

	mu          sync.Mutex
	closed      bool
	inTx        bool
	pingErr     error
	rollbackErr error

	rollbacks int
	commits   int
	pings     int
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) AutoCommit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.inTx
}

func (c *fakeConn) Rollback(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollbacks++
	if c.rollbackErr != nil {
		return c.rollbackErr
	}
	c.inTx = false
	return nil
}

func (c *fakeConn) Commit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commits++
	c.inTx = false
	return nil
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, fmt.Errorf("exec on closed connection %s", c.id)
	}
	return 1, nil
}

func (c *fakeConn) Ping(ctx context.Context, query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pings++
	return c.pingErr
}

// fakeProvider opens fakeConns and records every connection it produced.
type fakeProvider struct {
	mu           sync.Mutex
	opened       []*fakeConn
	openErr      error
	closedOnOpen bool // every new connection reports closed immediately
	pingErr      error
}

func (f *fakeProvider) Open(ctx context.Context, creds driver.Credentials) (driver.Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	c := &fakeConn{
		id:      fmt.Sprintf("conn-%d", len(f.opened)+1),
		closed:  f.closedOnOpen,
		pingErr: f.pingErr,
	}
	f.opened = append(f.opened, c)
	return c, nil
}

func (f *fakeProvider) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opened)
}

func (f *fakeProvider) conn(i int) *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened[i]
}

// testConfig keeps waits short so a misbehaving test fails fast instead of
// parking for the production default.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.URL = "postgres://localhost:5432/testdb"
	cfg.Username = "tester"
	cfg.Password = "secret"
	cfg.TimeToWait = 100 * time.Millisecond
	return cfg
}
