// Package driver defines the raw connection boundary used by the pool and
// provides a PostgreSQL implementation backed by pgx.
package driver

import (
	"context"
)

// Credentials identifies a backend endpoint and the login to use for it.
type Credentials struct {
	URL      string
	Username string
	Password string
}

// Conn is one physical backend connection. Implementations are not required
// to be safe for concurrent use; the pool guarantees a connection is owned
// by at most one caller at a time.
type Conn interface {
	// ID returns a stable identifier for this physical connection. The id
	// survives re-wrapping by the pool and is used for log correlation.
	ID() string

	// IsClosed reports whether the underlying transport is closed.
	IsClosed() bool

	// Close tears down the physical connection.
	Close(ctx context.Context) error

	// AutoCommit reports whether the connection has no open transaction.
	AutoCommit() bool

	// Rollback aborts any open transaction.
	Rollback(ctx context.Context) error

	// Commit commits the open transaction.
	Commit(ctx context.Context) error

	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Ping runs the given probe query on a disposable statement.
	Ping(ctx context.Context, query string) error
}

// Provider opens new physical connections. The pool treats it as an opaque
// factory; all pooling decisions stay on the pool side.
type Provider interface {
	Open(ctx context.Context, creds Credentials) (Conn, error)
}
