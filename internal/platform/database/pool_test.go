package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWithoutURLIsDisabled(t *testing.T) {
	pool, err := Open(context.Background(), "", DefaultPoolOptions())
	require.NoError(t, err)
	assert.Nil(t, pool)
	assert.EqualError(t, pool.Health(context.Background()), "database not configured")
	assert.NoError(t, pool.Close())
}
