package cache

import (
	"context"
	"testing"
	"time"

	"inmo_crm_backend/internal/subscription/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*ModuleCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewModuleCache(client, time.Minute), mr
}

func TestModuleCacheRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, ok, err := c.GetModules(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	modules := []repository.Module{{ID: uuid.New(), Code: "leads", Name: "Leads", DependsOn: []string{}, Metadata: map[string]any{"featureLevel": "premium"}}}
	require.NoError(t, c.SetModules(ctx, modules))

	got, ok, err := c.GetModules(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "leads", got[0].Code)
	assert.Equal(t, "premium", got[0].Metadata["featureLevel"])
}

func TestModuleCacheExpiresAndInvalidates(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetModules(ctx, []repository.Module{{Code: "agents"}}))
	mr.FastForward(2 * time.Minute)
	_, ok, err := c.GetModules(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetModules(ctx, []repository.Module{{Code: "agents"}}))
	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.GetModules(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModuleCacheTreatsGarbageAsMiss(t *testing.T) {
	c, mr := setupCache(t)
	require.NoError(t, mr.Set(modulesKey, "not-json"))

	_, ok, err := c.GetModules(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
