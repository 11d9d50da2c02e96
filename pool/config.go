package pool

import (
	"os"
	"strconv"
	"time"
)

// Config holds the pool configuration. After construction it is only
// changed through the pool setters, each of which resets the whole pool.
type Config struct {
	// Backend endpoint and default login, folded into the connection-type
	// fingerprint.
	URL      string
	Username string
	Password string

	// MaxActiveConnections is the number of connections that may be
	// checked out at any time.
	MaxActiveConnections int

	// MaxIdleConnections is the number of returned connections kept for
	// reuse.
	MaxIdleConnections int

	// MaxCheckoutTime is how long a connection may be checked out before
	// it becomes eligible for forced reclamation.
	MaxCheckoutTime time.Duration

	// TimeToWait bounds a single park on the pool; on expiry the acquirer
	// loops and re-evaluates rather than failing.
	TimeToWait time.Duration

	// BadConnectionTolerance is the per-acquisition retry headroom on top
	// of MaxIdleConnections before the pool gives up.
	BadConnectionTolerance int

	// PingEnabled turns on the probe query for connections idle longer
	// than PingNotUsedFor.
	PingEnabled    bool
	PingQuery      string
	PingNotUsedFor time.Duration
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		MaxActiveConnections:   10,
		MaxIdleConnections:     5,
		MaxCheckoutTime:        20 * time.Second,
		TimeToWait:             20 * time.Second,
		BadConnectionTolerance: 3,
		PingEnabled:            false,
		PingQuery:              "NO PING QUERY SET",
		PingNotUsedFor:         0,
	}
}

// LoadConfig loads the pool configuration from environment variables.
func LoadConfig() Config {
	config := DefaultConfig()

	if url := os.Getenv("DBPOOL_URL"); url != "" {
		config.URL = url
	}
	if username := os.Getenv("DBPOOL_USERNAME"); username != "" {
		config.Username = username
	}
	if password := os.Getenv("DBPOOL_PASSWORD"); password != "" {
		config.Password = password
	}

	if maxActiveStr := os.Getenv("DBPOOL_MAX_ACTIVE"); maxActiveStr != "" {
		if n, err := strconv.Atoi(maxActiveStr); err == nil && n > 0 {
			config.MaxActiveConnections = n
		}
	}
	if maxIdleStr := os.Getenv("DBPOOL_MAX_IDLE"); maxIdleStr != "" {
		if n, err := strconv.Atoi(maxIdleStr); err == nil && n >= 0 {
			config.MaxIdleConnections = n
		}
	}
	if checkoutStr := os.Getenv("DBPOOL_MAX_CHECKOUT_MS"); checkoutStr != "" {
		if ms, err := strconv.ParseInt(checkoutStr, 10, 64); err == nil && ms >= 0 {
			config.MaxCheckoutTime = time.Duration(ms) * time.Millisecond
		}
	}
	if waitStr := os.Getenv("DBPOOL_TIME_TO_WAIT_MS"); waitStr != "" {
		if ms, err := strconv.ParseInt(waitStr, 10, 64); err == nil && ms > 0 {
			config.TimeToWait = time.Duration(ms) * time.Millisecond
		}
	}
	if tolStr := os.Getenv("DBPOOL_BAD_CONN_TOLERANCE"); tolStr != "" {
		if n, err := strconv.Atoi(tolStr); err == nil && n >= 0 {
			config.BadConnectionTolerance = n
		}
	}

	if pingEnabledStr := os.Getenv("DBPOOL_PING_ENABLED"); pingEnabledStr != "" {
		if enabled, err := strconv.ParseBool(pingEnabledStr); err == nil {
			config.PingEnabled = enabled
		}
	}
	if pingQuery := os.Getenv("DBPOOL_PING_QUERY"); pingQuery != "" {
		config.PingQuery = pingQuery
	}
	if pingIdleStr := os.Getenv("DBPOOL_PING_NOT_USED_FOR_MS"); pingIdleStr != "" {
		if ms, err := strconv.ParseInt(pingIdleStr, 10, 64); err == nil && ms >= 0 {
			config.PingNotUsedFor = time.Duration(ms) * time.Millisecond
		}
	}

	return config
}
