package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printify-surecart-sync/internal/domain/model"
)

func TestMemoryProgressStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryProgressStore()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "empty store loads as absent, not as error")

	progress := &model.SyncProgress{
		Total:     2,
		Processed: 1,
		Created:   1,
		StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Products:  []model.Product{{ID: "p1"}, {ID: "p2"}},
	}
	require.NoError(t, store.Save(ctx, progress))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.Processed)
	require.Len(t, loaded.Products, 2)

	// Snapshots are isolated: mutating a loaded copy must not leak back.
	loaded.Products[0].ID = "mutated"
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", again.Products[0].ID)

	require.NoError(t, store.Clear(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryProgressStoreCompletion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryProgressStore()

	completion, err := store.LoadCompletion(ctx)
	require.NoError(t, err)
	assert.Nil(t, completion)

	saved := model.SyncCompletion{
		Time:    time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC),
		Created: 3,
		Updated: 2,
		Total:   5,
	}
	require.NoError(t, store.SaveCompletion(ctx, saved))

	completion, err = store.LoadCompletion(ctx)
	require.NoError(t, err)
	require.NotNil(t, completion)
	assert.Equal(t, saved, *completion)

	// Clearing progress leaves the completion summary alone.
	require.NoError(t, store.Clear(ctx))
	completion, err = store.LoadCompletion(ctx)
	require.NoError(t, err)
	assert.NotNil(t, completion)
}

func TestMemoryOrderRefStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrderRefStore()

	id, err := store.PrintifyOrderID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.SavePrintifyOrderID(ctx, "ord-1", "po-1"))
	id, err = store.PrintifyOrderID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "po-1", id)

	require.NoError(t, store.AppendNote(ctx, "ord-1", "first"))
	require.NoError(t, store.AppendNote(ctx, "ord-1", "second"))
	notes, err := store.Notes(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, notes)
}
