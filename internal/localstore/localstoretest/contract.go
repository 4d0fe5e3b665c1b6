// Package localstoretest holds the behaviour every localstore.Store adapter
// must share.
package localstoretest

import (
	"context"
	"testing"

	"github.com/leca/menudesk/internal/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises store against the localstore.Store contract. newStore must
// return an empty store each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) localstore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k", `{"a":1}`))
		v, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"a":1}`, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k", "one"))
		require.NoError(t, s.Set(ctx, "k", "two"))
		v, _, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "two", v)
	})

	t.Run("empty value is present", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k", ""))
		_, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("remove several", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", "1"))
		require.NoError(t, s.Set(ctx, "b", "2"))
		require.NoError(t, s.Set(ctx, "c", "3"))

		require.NoError(t, s.Remove(ctx, "a", "b", "never-set"))

		_, ok, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = s.Get(ctx, "b")
		require.NoError(t, err)
		assert.False(t, ok)
		v, ok, err := s.Get(ctx, "c")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "3", v)
	})

	t.Run("remove nothing", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Remove(ctx))
	})
}
