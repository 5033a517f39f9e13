package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetExpire(t *testing.T) {
	c := New[string](4, 50*time.Millisecond)
	c.Set("a", "apple")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "apple", v)
	assert.Equal(t, 1, c.Len())

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)

	c.Remove("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
	c.Purge()
	assert.Zero(t, c.Len())
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New[int](0, time.Minute)
	var loads int32

	load := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(context.Background(), "answer", load)
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads), "concurrent callers share one load")

	v, err := c.GetOrLoad(context.Background(), "answer", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestCache_GetOrLoadDoesNotCacheErrors(t *testing.T) {
	c := New[int](0, time.Minute)
	boom := errors.New("upstream down")

	_, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCache_GetOrLoadOutlivesCallerCancel(t *testing.T) {
	c := New[int](0, time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	var loads int32

	load := func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&loads, 1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 42, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctx, "answer", load)
		errc <- err
	}()
	<-started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	v, err := c.GetOrLoad(context.Background(), "answer", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads), "the first load finished for later callers")
}

func TestCache_PurgeDiscardsLoadInFlight(t *testing.T) {
	c := New[string](0, time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		v, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "stale", v)
	}()
	<-started
	c.Purge()
	close(release)
	<-done

	_, ok := c.Get("k")
	assert.False(t, ok)

	v, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestCache_LoadTimeout(t *testing.T) {
	c := New[int](0, time.Minute).WithLoadTimeout(10 * time.Millisecond)

	_, err := c.GetOrLoad(context.Background(), "slow", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, c.Len())
}
