package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicetool/internal/storage"
)

func openTemp(t *testing.T) (*Backend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dice.db")
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, path
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestBackend_LoadMissing(t *testing.T) {
	b, _ := openTemp(t)
	_, err := b.Load(context.Background(), "sw25_logs")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestBackend_SaveOverwritesAndDeletes(t *testing.T) {
	ctx := context.Background()
	b, _ := openTemp(t)

	require.NoError(t, b.Save(ctx, "sw25_logs", []byte(`[]`)))
	require.NoError(t, b.Save(ctx, "sw25_logs", []byte(`[{"expr":"2d6"}]`)))

	got, err := b.Load(ctx, "sw25_logs")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"expr":"2d6"}]`, string(got))

	require.NoError(t, b.Delete(ctx, "sw25_logs"))
	_, err = b.Load(ctx, "sw25_logs")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestBackend_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	b, path := openTemp(t)
	require.NoError(t, b.Save(ctx, "k", []byte(`["kept"]`)))
	require.NoError(t, b.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `["kept"]`, string(got))
}

func TestBackend_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	b, err := Open(":memory:")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Save(ctx, "a", []byte(`1`)))
	require.NoError(t, b.Save(ctx, "b", []byte(`2`)))
	require.NoError(t, b.Delete(ctx, "a"))

	got, err := b.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, `2`, string(got))
}
