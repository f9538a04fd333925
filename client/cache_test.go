package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetAndGet(t *testing.T) {
	c := NewCache()
	c.Set("GET /courses/", []byte(`{"count":1}`), time.Minute)

	payload, ok := c.Get("GET /courses/")
	require.True(t, ok)
	assert.Equal(t, `{"count":1}`, string(payload))

	_, ok = c.Get("GET /categories/")
	assert.False(t, ok)
}

func TestCache_EntryExpiresAtBoundary(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c := NewCache()
	c.now = func() time.Time { return now }

	c.Set("key", []byte("payload"), time.Minute)

	now = base.Add(time.Minute - time.Nanosecond)
	_, ok := c.Get("key")
	assert.True(t, ok, "entry should be fresh just before the TTL")

	now = base.Add(time.Minute)
	_, ok = c.Get("key")
	assert.False(t, ok, "entry should be expired at exactly the TTL")

	// The expired entry is evicted, but the last good payload survives.
	payload, ok := c.Fallback("key")
	require.True(t, ok)
	assert.Equal(t, "payload", string(payload))
}

func TestCache_DoServesFreshHitWithoutProducer(t *testing.T) {
	c := NewCache()
	c.Set("key", []byte("cached"), time.Minute)

	var calls atomic.Int32
	payload, err := c.Do(context.Background(), "key", time.Minute, true, func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("fresh"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "cached", string(payload))
	assert.Equal(t, int32(0), calls.Load())
}

func TestCache_DoPopulatesCacheOnSuccess(t *testing.T) {
	c := NewCache()

	payload, err := c.Do(context.Background(), "key", time.Minute, true, func(context.Context) ([]byte, error) {
		return []byte("produced"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "produced", string(payload))

	cached, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "produced", string(cached))
}

func TestCache_DoSkipsCacheWhenDisabled(t *testing.T) {
	c := NewCache()

	var calls atomic.Int32
	producer := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("payload"), nil
	}

	_, err := c.Do(context.Background(), "key", time.Minute, false, producer)
	require.NoError(t, err)
	_, err = c.Do(context.Background(), "key", time.Minute, false, producer)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCache_DoDoesNotCacheFailures(t *testing.T) {
	c := NewCache()

	_, err := c.Do(context.Background(), "key", time.Minute, true, func(context.Context) ([]byte, error) {
		return nil, fmt.Errorf("boom")
	})
	require.Error(t, err)

	_, ok := c.Get("key")
	assert.False(t, ok)
	_, ok = c.Fallback("key")
	assert.False(t, ok)
}

func TestCache_DoCoalescesConcurrentCallers(t *testing.T) {
	c := NewCache()
	gate := make(chan struct{})
	var calls atomic.Int32

	producer := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		select {
		case <-gate:
			return []byte("shared"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, err := c.Do(context.Background(), "key", time.Minute, true, producer)
			results[i], errs[i] = string(payload), err
		}(i)
	}

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		slot := c.pending["key"]
		return slot != nil && slot.waiters == callers
	}, 2*time.Second, 5*time.Millisecond, "all callers should join the same flight")

	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "exactly one producer call for all callers")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}
}

func TestCache_DoPreSignalledContext(t *testing.T) {
	c := NewCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, err := c.Do(ctx, "key", time.Minute, true, func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("never"), nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load(), "producer must not run for a dead context")
	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCache_LastWaiterCancelAbortsProducer(t *testing.T) {
	c := NewCache()
	gate := make(chan struct{})
	defer close(gate)
	var calls atomic.Int32
	producerDone := make(chan error, 2)

	producer := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		select {
		case <-gate:
			return []byte("payload"), nil
		case <-ctx.Done():
			producerDone <- ctx.Err()
			return nil, ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	result := make(chan error, 1)
	go func() {
		close(started)
		_, err := c.Do(ctx, "key", time.Minute, true, producer)
		result <- err
	}()
	<-started

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-result, context.Canceled)

	select {
	case err := <-producerDone:
		require.ErrorIs(t, err, context.Canceled, "producer should be aborted once its last waiter leaves")
	case <-time.After(2 * time.Second):
		t.Fatal("producer was not cancelled after the last waiter left")
	}

	_, ok := c.Get("key")
	assert.False(t, ok, "an abandoned call must not populate the cache")

	// A repeat of the same call performs a fresh producer run.
	payload, err := c.Do(context.Background(), "key", time.Minute, true, func(context.Context) ([]byte, error) {
		return []byte("second"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "second", string(payload))
}

func TestCache_SiblingCancelKeepsSharedCallAlive(t *testing.T) {
	c := NewCache()
	gate := make(chan struct{})
	var calls atomic.Int32

	producer := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		select {
		case <-gate:
			return []byte("shared"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	firstResult := make(chan error, 1)
	go func() {
		_, err := c.Do(cancelCtx, "key", time.Minute, true, producer)
		firstResult <- err
	}()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		slot := c.pending["key"]
		return slot != nil && slot.waiters == 1
	}, 2*time.Second, 5*time.Millisecond)

	secondResult := make(chan struct {
		payload []byte
		err     error
	}, 1)
	go func() {
		payload, err := c.Do(context.Background(), "key", time.Minute, true, producer)
		secondResult <- struct {
			payload []byte
			err     error
		}{payload, err}
	}()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		slot := c.pending["key"]
		return slot != nil && slot.waiters == 2
	}, 2*time.Second, 5*time.Millisecond)

	// The first caller walks away; the shared call must keep going.
	cancel()
	require.ErrorIs(t, <-firstResult, context.Canceled)

	close(gate)
	res := <-secondResult
	require.NoError(t, res.err)
	assert.Equal(t, "shared", string(res.payload))
	assert.Equal(t, int32(1), calls.Load())

	cached, ok := c.Get("key")
	require.True(t, ok, "a completed call with a surviving waiter populates the cache")
	assert.Equal(t, "shared", string(cached))
}

func TestCache_InvalidateByPattern(t *testing.T) {
	c := NewCache()
	c.Set("GET /courses/?page=1", []byte("a"), time.Minute)
	c.Set("GET /courses/go-basics/", []byte("b"), time.Minute)
	c.Set("GET /user/me/", []byte("c"), time.Minute)

	removed := c.Invalidate("/courses/")
	assert.Equal(t, 2, removed)

	_, ok := c.Get("GET /courses/?page=1")
	assert.False(t, ok)
	_, ok = c.Get("GET /courses/go-basics/")
	assert.False(t, ok)
	_, ok = c.Get("GET /user/me/")
	assert.True(t, ok, "non-matching entries survive")

	// Matching fallback payloads go with the entries.
	_, ok = c.Fallback("GET /courses/go-basics/")
	assert.False(t, ok)
	_, ok = c.Fallback("GET /user/me/")
	assert.True(t, ok)

	assert.Equal(t, 0, c.Invalidate("/courses/"), "second pass removes nothing")
	assert.Equal(t, 0, c.Invalidate("no-such-pattern"))
}

func TestCache_ClearDropsEverythingAndAbortsFlights(t *testing.T) {
	c := NewCache()
	c.Set("key-a", []byte("a"), time.Minute)

	gate := make(chan struct{})
	defer close(gate)
	result := make(chan error, 1)
	go func() {
		_, err := c.Do(context.Background(), "key-b", time.Minute, true, func(ctx context.Context) ([]byte, error) {
			select {
			case <-gate:
				return []byte("b"), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})
		result <- err
	}()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.pending["key-b"] != nil
	}, 2*time.Second, 5*time.Millisecond)

	c.Clear()

	require.ErrorIs(t, <-result, context.Canceled)
	assert.Equal(t, 0, c.Len())
	_, ok := c.Fallback("key-a")
	assert.False(t, ok)
}
