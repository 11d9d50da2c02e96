package pool

import (
	"context"
	"time"
)

// Configuration setters. Reconfiguration is a rare, coarse-grained event:
// every setter resets the whole pool via ForceCloseAll rather than trying
// to reconfigure live connections in place.

func (p *Pool) set(mutate func(*Config)) {
	p.mu.Lock()
	mutate(&p.cfg)
	p.mu.Unlock()
	p.ForceCloseAll(context.Background())
}

// SetURL changes the backend endpoint and resets the pool.
func (p *Pool) SetURL(url string) {
	p.set(func(c *Config) { c.URL = url })
}

// SetUsername changes the default login and resets the pool.
func (p *Pool) SetUsername(username string) {
	p.set(func(c *Config) { c.Username = username })
}

// SetPassword changes the default password and resets the pool.
func (p *Pool) SetPassword(password string) {
	p.set(func(c *Config) { c.Password = password })
}

// SetMaxActiveConnections changes the checkout bound and resets the pool.
func (p *Pool) SetMaxActiveConnections(n int) {
	p.set(func(c *Config) { c.MaxActiveConnections = n })
}

// SetMaxIdleConnections changes the idle bound and resets the pool.
func (p *Pool) SetMaxIdleConnections(n int) {
	p.set(func(c *Config) { c.MaxIdleConnections = n })
}

// SetMaxCheckoutTime changes the overdue threshold and resets the pool.
func (p *Pool) SetMaxCheckoutTime(d time.Duration) {
	p.set(func(c *Config) { c.MaxCheckoutTime = d })
}

// SetTimeToWait changes the per-round wait bound and resets the pool.
func (p *Pool) SetTimeToWait(d time.Duration) {
	p.set(func(c *Config) { c.TimeToWait = d })
}

// SetBadConnectionTolerance changes the per-acquisition retry headroom and
// resets the pool.
func (p *Pool) SetBadConnectionTolerance(n int) {
	p.set(func(c *Config) { c.BadConnectionTolerance = n })
}

// SetPingEnabled toggles the probe query and resets the pool.
func (p *Pool) SetPingEnabled(enabled bool) {
	p.set(func(c *Config) { c.PingEnabled = enabled })
}

// SetPingQuery changes the probe query and resets the pool.
func (p *Pool) SetPingQuery(query string) {
	p.set(func(c *Config) { c.PingQuery = query })
}

// SetPingNotUsedFor changes the idle threshold that triggers the probe and
// resets the pool.
func (p *Pool) SetPingNotUsedFor(d time.Duration) {
	p.set(func(c *Config) { c.PingNotUsedFor = d })
}
