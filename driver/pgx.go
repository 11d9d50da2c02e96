package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/guileen/dbpool/logger"
)

// PgxProvider opens physical PostgreSQL connections with pgx.
type PgxProvider struct{}

// NewPgxProvider creates a PostgreSQL connection provider.
func NewPgxProvider() *PgxProvider {
	return &PgxProvider{}
}

// Open establishes a new physical connection for the given credentials.
// Username and password, when set, override whatever the URL carries.
func (p *PgxProvider) Open(ctx context.Context, creds Credentials) (Conn, error) {
	config, err := pgx.ParseConfig(creds.URL)
	if err != nil {
		return nil, fmt.Errorf("parse connection url: %w", err)
	}
	if creds.Username != "" {
		config.User = creds.Username
	}
	if creds.Password != "" {
		config.Password = creds.Password
	}

	conn, err := pgx.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger.Debug("Opened physical connection", logger.ConnID(id), "host", config.Host, "user", config.User)
	return &pgxConn{id: id, conn: conn}, nil
}

// pgxConn adapts *pgx.Conn to the Conn interface.
type pgxConn struct {
	id   string
	conn *pgx.Conn
}

func (c *pgxConn) ID() string { return c.id }

func (c *pgxConn) IsClosed() bool { return c.conn.IsClosed() }

func (c *pgxConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// AutoCommit is derived from the backend transaction status: 'I' means the
// session is idle with no transaction in progress.
func (c *pgxConn) AutoCommit() bool {
	return c.conn.PgConn().TxStatus() == 'I'
}

func (c *pgxConn) Rollback(ctx context.Context) error {
	_, err := c.conn.Exec(ctx, "rollback")
	return err
}

func (c *pgxConn) Commit(ctx context.Context) error {
	_, err := c.conn.Exec(ctx, "commit")
	return err
}

func (c *pgxConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgxConn) Ping(ctx context.Context, query string) error {
	_, err := c.conn.Exec(ctx, query)
	return err
}
