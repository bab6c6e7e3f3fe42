package snapshot

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

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 9, 7, 14, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func counter(n *int32) func(context.Context) (int32, error) {
	return func(context.Context) (int32, error) {
		return atomic.AddInt32(n, 1), nil
	}
}

func TestCache_FreshWithinTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewCache[int32](30*time.Second, clock.Now)
	var builds int32
	ctx := context.Background()

	v, err := c.Get(ctx, "k", counter(&builds))
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	clock.Advance(29 * time.Second)
	v, _ = c.Get(ctx, "k", counter(&builds))
	assert.Equal(t, int32(1), v)

	clock.Advance(time.Second)
	v, _ = c.Get(ctx, "k", counter(&builds))
	assert.Equal(t, int32(2), v, "entry exactly ttl old is stale")

	_, builtAt, ok := c.Peek("k")
	assert.True(t, ok)
	assert.Equal(t, clock.Now(), builtAt)
}

func TestCache_KeysAreIndependent(t *testing.T) {
	c := NewCache[int32](time.Minute, newFakeClock().Now)
	var a, b int32
	ctx := context.Background()
	c.Get(ctx, "a", counter(&a))
	c.Get(ctx, "b", counter(&b))
	c.Get(ctx, "a", counter(&a))
	assert.Equal(t, int32(1), a)
	assert.Equal(t, int32(1), b)

	c.Invalidate("a")
	c.Get(ctx, "a", counter(&a))
	c.Get(ctx, "b", counter(&b))
	assert.Equal(t, int32(2), a)
	assert.Equal(t, int32(1), b)

	c.Invalidate()
	_, _, ok := c.Peek("b")
	assert.False(t, ok)
}

func TestCache_ErrorKeepsPreviousEntry(t *testing.T) {
	clock := newFakeClock()
	c := NewCache[string](time.Second, clock.Now)
	ctx := context.Background()

	_, err := c.Get(ctx, "k", func(context.Context) (string, error) { return "first", nil })
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	boom := errors.New("boom")
	_, err = c.Get(ctx, "k", func(context.Context) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	v, _, ok := c.Peek("k")
	assert.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestCache_ConcurrentMissesBuildOnce(t *testing.T) {
	c := NewCache[int32](time.Minute, nil)
	var builds int32
	release := make(chan struct{})
	build := func(context.Context) (int32, error) {
		<-release
		return atomic.AddInt32(&builds, 1), nil
	}

	var wg sync.WaitGroup
	results := make([]int32, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "k", build)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	for _, v := range results {
		assert.Equal(t, int32(1), v)
	}
}

func TestNewCache_Defaults(t *testing.T) {
	c := NewCache[int](0, nil)
	assert.Equal(t, DefaultTTL, c.ttl)
	assert.NotNil(t, c.clock)
}
