package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgxProvider_OpenRejectsBadURL(t *testing.T) {
	provider := NewPgxProvider()

	_, err := provider.Open(context.Background(), Credentials{
		URL: "postgres://localhost:not-a-port/db",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse connection url")
}
