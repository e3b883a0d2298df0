package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_IsContentHash(t *testing.T) {
	data := []byte("jpeg bytes")
	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), Ref(data))
}

func TestMemory_PutGetRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, Ref([]byte("jpeg bytes")), ref)

	data, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestMemory_DeduplicatesByContent(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	ref1, err := store.Put(ctx, []byte("same"))
	require.NoError(t, err)
	ref2, err := store.Put(ctx, []byte("same"))
	require.NoError(t, err)

	assert.Equal(t, ref1, ref2)
	assert.Equal(t, 1, store.Len())
}

func TestMemory_GetMissing(t *testing.T) {
	store := NewMemory()

	_, err := store.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Exists(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("jpeg bytes"))
	require.NoError(t, err)

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "deadbeef")
	require.NoError(t, err)
	assert.False(t, exists)
}
