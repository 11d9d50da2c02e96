package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/dbpool/driver"
	"github.com/guileen/dbpool/pool"
)

type stubConn struct {
	id     string
	closed bool
}

func (c *stubConn) ID() string                         { return c.id }
func (c *stubConn) IsClosed() bool                     { return c.closed }
func (c *stubConn) Close(ctx context.Context) error    { c.closed = true; return nil }
func (c *stubConn) AutoCommit() bool                   { return true }
func (c *stubConn) Rollback(ctx context.Context) error { return nil }
func (c *stubConn) Commit(ctx context.Context) error   { return nil }
func (c *stubConn) Ping(ctx context.Context, q string) error {
	return nil
}
func (c *stubConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return 0, nil
}

type stubProvider struct {
	opened int
}

func (f *stubProvider) Open(ctx context.Context, creds driver.Credentials) (driver.Conn, error) {
	f.opened++
	return &stubConn{id: fmt.Sprintf("conn-%d", f.opened)}, nil
}

func setupTestServer(t *testing.T) (*pool.Pool, *httptest.Server) {
	cfg := pool.DefaultConfig()
	cfg.URL = "postgres://localhost:5432/testdb"
	cfg.Username = "tester"

	p := pool.New(&stubProvider{}, cfg)

	r := chi.NewRouter()
	NewHandler(p).RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return p, server
}

func TestGetStats(t *testing.T) {
	p, server := setupTestServer(t)

	conn, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.Close(context.Background()))

	resp, err := http.Get(server.URL + "/api/pool/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, int64(1), stats.RequestCount)
	assert.Equal(t, 1, stats.IdleCount)
	assert.Equal(t, 0, stats.ActiveCount)
}

func TestGetConfig(t *testing.T) {
	_, server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/pool/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg ConfigResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, "tester", cfg.Username)
	assert.Equal(t, 10, cfg.MaxActiveConnections)
	assert.Equal(t, int64(20000), cfg.MaxCheckoutTimeMs)
}

func TestUpdateConfig(t *testing.T) {
	p, server := setupTestServer(t)

	body := `{"max_active_connections": 3, "ping_enabled": true, "ping_query": "select 1"}`
	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/pool/config", strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cfg := p.Config()
	assert.Equal(t, 3, cfg.MaxActiveConnections)
	assert.True(t, cfg.PingEnabled)
	assert.Equal(t, "select 1", cfg.PingQuery)
}

func TestUpdateConfig_InvalidBody(t *testing.T) {
	_, server := setupTestServer(t)

	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/pool/config", strings.NewReader("{nope"))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFlush(t *testing.T) {
	p, server := setupTestServer(t)

	conn, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.Close(context.Background()))
	require.Equal(t, 1, p.Stats().IdleCount)

	resp, err := http.Post(server.URL+"/api/pool/flush", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := p.Stats()
	assert.Equal(t, 0, stats.IdleCount)
	assert.Equal(t, 0, stats.ActiveCount)
}
