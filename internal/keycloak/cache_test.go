package keycloak

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCacheServesFreshEntry(t *testing.T) {
	now := time.Now()
	cache := NewUserCache(5*time.Minute, func() time.Time { return now })

	calls := 0
	refresh := func(ctx context.Context) ([]*User, error) {
		calls++
		return []*User{{ID: "u1", Username: "budi"}}, nil
	}

	users, err := cache.GetOrRefresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, calls)

	// within the TTL the refresh func is not called again
	users, err = cache.GetOrRefresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, calls)
}

func TestUserCacheExpiry(t *testing.T) {
	now := time.Now()
	cache := NewUserCache(5*time.Minute, func() time.Time { return now })

	calls := 0
	refresh := func(ctx context.Context) ([]*User, error) {
		calls++
		return []*User{{ID: "u1"}}, nil
	}

	_, err := cache.GetOrRefresh(context.Background(), refresh)
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	_, err = cache.GetOrRefresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestUserCacheFailedRefreshKeepsEntry(t *testing.T) {
	now := time.Now()
	cache := NewUserCache(5*time.Minute, func() time.Time { return now })

	_, err := cache.GetOrRefresh(context.Background(), func(ctx context.Context) ([]*User, error) {
		return []*User{{ID: "u1"}}, nil
	})
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	_, err = cache.GetOrRefresh(context.Background(), func(ctx context.Context) ([]*User, error) {
		return nil, errors.New("upstream down")
	})
	assert.Error(t, err)

	// the stale entry survived; once the upstream recovers a refresh
	// repopulates the cache
	users, err := cache.GetOrRefresh(context.Background(), func(ctx context.Context) ([]*User, error) {
		return []*User{{ID: "u1"}, {ID: "u2"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserCacheInvalidate(t *testing.T) {
	now := time.Now()
	cache := NewUserCache(5*time.Minute, func() time.Time { return now })

	calls := 0
	refresh := func(ctx context.Context) ([]*User, error) {
		calls++
		return []*User{{ID: "u1"}}, nil
	}

	_, err := cache.GetOrRefresh(context.Background(), refresh)
	require.NoError(t, err)

	cache.Invalidate()

	_, err = cache.GetOrRefresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
