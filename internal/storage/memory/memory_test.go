package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicetool/internal/storage"
)

func TestBackend_LoadMissing(t *testing.T) {
	_, err := NewBackend().Load(context.Background(), "sw25_logs")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestBackend_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()

	require.NoError(t, b.Save(ctx, "k", []byte(`[1]`)))
	got, err := b.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	require.NoError(t, b.Delete(ctx, "k"))
	_, err = b.Load(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	assert.NoError(t, b.Delete(ctx, "k"), "deleting a missing key is a no-op")
}

func TestBackend_CopiesOnSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	buf := []byte(`abc`)
	require.NoError(t, b.Save(ctx, "k", buf))
	buf[0] = 'x'

	got, err := b.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `abc`, string(got))
	got[0] = 'y'

	again, _ := b.Load(ctx, "k")
	assert.Equal(t, `abc`, string(again))
}
