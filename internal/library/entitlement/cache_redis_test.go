// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableCache points at a closed port so every Redis call fails fast.
func unreachableCache(t *testing.T) *RedisCache {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// liveCache runs against an in-process Redis.
func liveCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil))), server
}

func TestKey(t *testing.T) {
	assert.Equal(t, "entitlement:u1:c1", Key("u1", "c1"))
	assert.Equal(t, "entitlement_gen:u1:c1", GenerationKey("u1", "c1"))
}

func TestDecode(t *testing.T) {
	entitlement, err := decode("null")
	require.NoError(t, err)
	assert.Nil(t, entitlement)

	entitlement, err = decode(`{"user_id":"u1","comic_id":"c1","unlocked_chapter_ids":["ch1"]}`)
	require.NoError(t, err)
	assert.True(t, entitlement.HasChapter("ch1"))

	_, err = decode("{broken")
	assert.Error(t, err)
}

func TestRedisCache_FallsBackToLoaderWhenRedisIsDown(t *testing.T) {
	cache := unreachableCache(t)

	want := &Entitlement{UserID: "u1", ComicID: "c1"}
	got, err := cache.Fetch(context.Background(), "u1", "c1", func(context.Context) (*Entitlement, error) {
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)

	assert.Error(t, cache.Invalidate(context.Background(), "u1", "c1"))
}

func TestRedisCache_PropagatesLoaderError(t *testing.T) {
	cache := unreachableCache(t)
	boom := errors.New("boom")

	_, err := cache.Fetch(context.Background(), "u1", "c1", func(context.Context) (*Entitlement, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRedisCache_CoalescesConcurrentMisses(t *testing.T) {
	cache := unreachableCache(t)

	var loads atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (*Entitlement, error) {
		loads.Add(1)
		<-release
		return &Entitlement{UserID: "u1", ComicID: "c1"}, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Fetch(context.Background(), "u1", "c1", loader)
			assert.NoError(t, err)
		}()
	}

	// Give every goroutine time to fail its GET and join the flight.
	time.Sleep(200 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestRedisCache_ServesFilledEntryWithoutReloading(t *testing.T) {
	cache, server := liveCache(t)

	owned := &Entitlement{UserID: "u1", ComicID: "c1", UnlockedChapterIDs: []string{"ch1"}}
	_, err := cache.Fetch(context.Background(), "u1", "c1", func(context.Context) (*Entitlement, error) {
		return owned, nil
	})
	require.NoError(t, err)
	assert.True(t, server.Exists(Key("u1", "c1")))

	got, err := cache.Fetch(context.Background(), "u1", "c1", func(context.Context) (*Entitlement, error) {
		t.Error("loader called on a cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, got.HasChapter("ch1"))
}

func TestRedisCache_InvalidateDuringLoadDiscardsStaleFill(t *testing.T) {
	cache, server := liveCache(t)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	// The reader loads the pre-purchase state and is held there.
	go func() {
		defer close(done)
		got, err := cache.Fetch(context.Background(), "u1", "c1", func(context.Context) (*Entitlement, error) {
			close(started)
			<-release
			return nil, nil
		})
		assert.NoError(t, err)
		assert.Nil(t, got)
	}()

	<-started
	require.NoError(t, cache.Invalidate(context.Background(), "u1", "c1"))
	close(release)
	<-done

	assert.False(t, server.Exists(Key("u1", "c1")), "stale fill must not land after an invalidation")

	now := time.Now()
	got, err := cache.Fetch(context.Background(), "u1", "c1", func(context.Context) (*Entitlement, error) {
		return &Entitlement{UserID: "u1", ComicID: "c1", PurchasedAt: &now}, nil
	})
	require.NoError(t, err)
	assert.True(t, got.OwnsComic())

	got, err = cache.Fetch(context.Background(), "u1", "c1", func(context.Context) (*Entitlement, error) {
		t.Error("loader called on a cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, got.OwnsComic())
}

func TestRedisCache_InvalidateBumpsGeneration(t *testing.T) {
	cache, server := liveCache(t)

	require.NoError(t, server.Set(Key("u1", "c1"), nullPayload))
	require.NoError(t, cache.Invalidate(context.Background(), "u1", "c1"))
	require.NoError(t, cache.Invalidate(context.Background(), "u1", "c1"))

	generation, err := server.Get(GenerationKey("u1", "c1"))
	require.NoError(t, err)
	assert.Equal(t, "2", generation)
	assert.False(t, server.Exists(Key("u1", "c1")))
	assert.Positive(t, server.TTL(GenerationKey("u1", "c1")))
}

func TestRedisCache_LoadOutlivesCancelledCaller(t *testing.T) {
	cache, server := liveCache(t)

	started := make(chan struct{})
	release := make(chan struct{})
	loadErr := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := cache.Fetch(ctx, "u1", "c1", func(loadCtx context.Context) (*Entitlement, error) {
			close(started)
			<-release
			loadErr <- loadCtx.Err()
			return &Entitlement{UserID: "u1", ComicID: "c1"}, nil
		})
		result <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)

	close(release)
	assert.NoError(t, <-loadErr, "the shared load must not inherit the caller's cancellation")

	assert.Eventually(t, func() bool {
		return server.Exists(Key("u1", "c1"))
	}, time.Second, 10*time.Millisecond)
}
