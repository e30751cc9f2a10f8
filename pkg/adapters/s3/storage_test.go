package s3_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/s3"
	"github.com/aretw0/jotter/pkg/core"
)

func TestStorage_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	storage := s3.TestStorage(t, "jotter-notes")
	require.NoError(t, storage.Initialize(ctx))

	_, err := storage.Get(ctx, "notes:v1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, storage.Set(ctx, "notes:v1", `[{"id":1,"title":"a","body":""}]`))
	got, err := storage.Get(ctx, "notes:v1")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"title":"a","body":""}]`, got)

	require.NoError(t, storage.Delete(ctx, "notes:v1"))
	_, err = storage.Get(ctx, "notes:v1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNew_RequiresBucket(t *testing.T) {
	storage := s3.TestStorage(t, "present")

	other, err := s3.New(context.Background(), s3.Config{Bucket: ""})
	assert.Error(t, err)
	assert.Nil(t, other)

	require.NoError(t, storage.Initialize(context.Background()))
}

func TestStorage_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := s3.TestStorage(t, "jotter-roundtrip")

	first := core.NewStore(storage, nil)
	require.NoError(t, first.Hydrate(ctx))
	first.Add("Remote-backed", "stored as an object")
	require.NoError(t, first.Close(ctx))

	second := core.NewStore(storage, nil)
	require.NoError(t, second.Hydrate(ctx))
	defer second.Close(ctx)
	assert.Equal(t, first.Notes(), second.Notes())

	second.ClearAll(ctx)
	require.NoError(t, second.Flush(ctx))
	_, err := storage.Get(ctx, core.DefaultStorageKey)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStorage_State(t *testing.T) {
	storage := s3.TestStorage(t, "introspect")

	state, ok := storage.State().(s3.StorageState)
	require.True(t, ok)
	assert.Equal(t, "introspect", state.Bucket)
	assert.Equal(t, "us-east-1", state.Region)
	assert.Equal(t, "s3", storage.ComponentType())
}
