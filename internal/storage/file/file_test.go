package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/storefront/internal/testutil"
)

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "state.json"), testutil.MakeNoopLogger())

	_, ok, err := s.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	s := New(path, testutil.MakeNoopLogger())
	require.NoError(t, s.Set(ctx, "token", "access"))
	require.NoError(t, s.Set(ctx, "cart", `[{"id":1,"cantidad":2}]`))

	reopened := New(path, testutil.MakeNoopLogger())
	v, ok, err := reopened.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1,"cantidad":2}]`, v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "state.json"), testutil.MakeNoopLogger())

	require.NoError(t, s.Delete(ctx, "token"))
	require.NoError(t, s.Set(ctx, "token", "access"))
	require.NoError(t, s.Set(ctx, "refreshToken", "refresh"))
	require.NoError(t, s.Delete(ctx, "token"))

	_, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := s.Get(ctx, "refreshToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "refresh", v)
}

func TestStore_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := New(path, testutil.MakeNoopLogger())

	_, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	kept, err := os.ReadFile(s.CorruptPath())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(kept))

	require.NoError(t, s.Set(ctx, "token", "access"))
	require.NoError(t, s.Delete(ctx, "refreshToken"))

	v, ok, err := New(path, testutil.MakeNoopLogger()).Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "access", v)
}

func TestStore_CorruptDocumentDoesNotStopCart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := New(path, testutil.MakeNoopLogger())
	require.NoError(t, s.Set(ctx, "cart", `[{"id":7,"cantidad":2}]`))

	v, ok, err := New(path, testutil.MakeNoopLogger()).Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":7,"cantidad":2}]`, v)
}
