package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drukmotors/dealership-backend/internal/cache"
	"github.com/drukmotors/dealership-backend/internal/registry"
	"github.com/drukmotors/dealership-backend/internal/store"
)

func newAnnouncementFixture(t *testing.T) (AnnouncementService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory(registry.New())
	return NewAnnouncementService(mem, cache.Noop{}), mem
}

func countActive(t *testing.T, mem *store.Memory) int64 {
	t.Helper()
	n, err := mem.Count(context.Background(), "announcements", store.Eq("active", true))
	require.NoError(t, err)
	return n
}

func TestAnnouncementPublishKeepsSingleActive(t *testing.T) {
	svc, mem := newAnnouncementFixture(t)
	ctx := context.Background()

	first, err := svc.Publish(ctx, "first banner")
	require.NoError(t, err)
	assert.Equal(t, true, first["active"])
	assert.Equal(t, int64(1), countActive(t, mem))

	second, err := svc.Publish(ctx, "second banner")
	require.NoError(t, err)
	assert.Equal(t, int64(1), countActive(t, mem), "publishing swaps the active banner, never stacks")

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second["id"], active["id"])
	assert.Equal(t, "second banner", active["text"])

	// The first announcement survives as history, deactivated
	old, err := mem.Get(ctx, "announcements", first["id"])
	require.NoError(t, err)
	assert.Equal(t, false, old["active"])
}

func TestAnnouncementClearAll(t *testing.T) {
	svc, mem := newAnnouncementFixture(t)
	ctx := context.Background()

	_, err := svc.Publish(ctx, "banner")
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(ctx))
	assert.Equal(t, int64(0), countActive(t, mem))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, active, "no active announcement after clear")
}

func TestAnnouncementClearAllIdempotent(t *testing.T) {
	svc, _ := newAnnouncementFixture(t)
	ctx := context.Background()

	// Clearing an empty table is not an error
	require.NoError(t, svc.ClearAll(ctx))
	require.NoError(t, svc.ClearAll(ctx))
}

func TestAnnouncementUpdateText(t *testing.T) {
	svc, _ := newAnnouncementFixture(t)
	ctx := context.Background()

	published, err := svc.Publish(ctx, "draft text")
	require.NoError(t, err)

	id, ok := published["id"].(int64)
	require.True(t, ok)

	updated, err := svc.UpdateText(ctx, id, "final text")
	require.NoError(t, err)
	assert.Equal(t, "final text", updated["text"])
	assert.Equal(t, true, updated["active"])

	_, err = svc.UpdateText(ctx, 404, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
