package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStorage(t *testing.T) {
	t.Run("Connects to a running server", func(t *testing.T) {
		// Given: a running redis server
		server := miniredis.RunT(t)

		// When: connecting to it
		st, err := NewRedisStorage(context.Background(), server.Addr(), 0)

		// Then: the connection is usable
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		assert.NoError(t, st.Connection.Ping(context.Background()).Err())
	})

	t.Run("Fails when the server is unreachable", func(t *testing.T) {
		// Given: a server that is already gone
		server := miniredis.RunT(t)
		addr := server.Addr()
		server.Close()

		// When: connecting to it
		st, err := NewRedisStorage(context.Background(), addr, 0)

		// Then: an error is returned
		require.Error(t, err)
		assert.Nil(t, st)
	})
}
