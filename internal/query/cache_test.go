package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
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

func newTestClient(t *testing.T, clock *fakeClock) *Client {
	t.Helper()
	client := NewClient(Options{Now: clock.Now, Metrics: NewMetrics(prometheus.NewRegistry())})
	t.Cleanup(client.Close)
	return client
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// countingFetcher returns values[i] on the i-th call, repeating the last one.
func countingFetcher(calls *atomic.Int32, values ...any) Fetcher {
	return func(ctx context.Context) (any, error) {
		n := int(calls.Add(1)) - 1
		if n >= len(values) {
			n = len(values) - 1
		}
		return values[n], nil
	}
}

func TestFetchFreshEntryIsServedFromCache(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("devices", "detail", "dev-1")

	var calls atomic.Int32
	fetcher := countingFetcher(&calls, "v1", "v2")

	for i := 0; i < 3; i++ {
		got, err := client.Fetch(context.Background(), key, fetcher)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got != "v1" {
			t.Errorf("Fetch() = %v, want v1", got)
		}
	}

	if n := calls.Load(); n != 1 {
		t.Errorf("fetcher called %d times, want 1", n)
	}
	if hits := testutil.ToFloat64(client.metrics.hits); hits != 2 {
		t.Errorf("hits = %v, want 2", hits)
	}
}

func TestConcurrentReadsShareOneRequest(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("devices", "list", "limit=25&page=1")

	var calls atomic.Int32
	release := make(chan struct{})
	fetcher := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "page", nil
	}

	const readers = 8
	var wg sync.WaitGroup
	results := make(chan any, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := client.Fetch(context.Background(), key, fetcher)
			if err != nil {
				t.Errorf("Fetch() error = %v", err)
			}
			results <- got
		}()
	}

	waitFor(t, "first fetch", func() bool { return calls.Load() == 1 })
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for got := range results {
		if got != "page" {
			t.Errorf("Fetch() = %v, want page", got)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("fetcher called %d times, want 1", n)
	}
}

func TestDistinctKeysAreCachedIndependently(t *testing.T) {
	client := newTestClient(t, newFakeClock())

	var calls atomic.Int32
	fetcher := countingFetcher(&calls, "a", "b")

	first, _ := client.Fetch(context.Background(), NewKey("devices", "list", "page=1"), fetcher)
	second, _ := client.Fetch(context.Background(), NewKey("devices", "list", "page=1&search=x"), fetcher)

	if first != "a" || second != "b" {
		t.Errorf("got %v and %v, want a and b", first, second)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("fetcher called %d times, want 2", n)
	}
}

func TestStaleEntryIsServedWhileRevalidating(t *testing.T) {
	clock := newFakeClock()
	client := newTestClient(t, clock)
	key := NewKey("analytics", "overview")

	var calls atomic.Int32
	release := make(chan struct{})
	fetcher := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return "old", nil
		}
		<-release
		return "new", nil
	}

	if _, err := client.Fetch(context.Background(), key, fetcher); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	clock.Advance(DEFAULT_STALE_TIME + time.Second)

	got, err := client.Fetch(context.Background(), key, fetcher)
	if err != nil {
		t.Fatalf("stale Fetch() error = %v", err)
	}
	if got != "old" {
		t.Errorf("stale Fetch() = %v, want old", got)
	}

	state, _ := client.State(key)
	if state.Status != StatusLoading || state.Data != "old" {
		t.Errorf("state during revalidation = %+v", state)
	}

	close(release)
	waitFor(t, "revalidation", func() bool {
		state, _ := client.State(key)
		return state.Data == "new" && state.Status == StatusSuccess
	})

	got, _ = client.Fetch(context.Background(), key, fetcher)
	if got != "new" {
		t.Errorf("Fetch() after revalidation = %v, want new", got)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("fetcher called %d times, want 2", n)
	}
}

func TestInvalidatedEntryRefetchesOnNextRead(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("latestReading", "dev-1")

	var calls atomic.Int32
	fetcher := countingFetcher(&calls, "before", "after")

	client.Fetch(context.Background(), key, fetcher)

	if n := client.Invalidate(NewKey("latestReading", "dev-1")); n != 1 {
		t.Errorf("Invalidate() = %d, want 1", n)
	}

	state, _ := client.State(key)
	if !state.Invalidated {
		t.Error("entry not marked invalidated")
	}

	got, err := client.Fetch(context.Background(), key, fetcher)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != "after" {
		t.Errorf("Fetch() = %v, want after", got)
	}
	if state, _ := client.State(key); state.Invalidated {
		t.Error("entry still invalidated after refetch")
	}
}

func TestInvalidateMatchesPrefixOnly(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	fetcher := func(ctx context.Context) (any, error) { return "x", nil }

	keys := []Key{
		NewKey("devices", "list", "page=1"),
		NewKey("devices", "list", "page=2"),
		NewKey("devices", "detail", "dev-1"),
		NewKey("sensorData", "dev-1", ""),
	}
	for _, key := range keys {
		client.Fetch(context.Background(), key, fetcher)
	}

	if n := client.Invalidate(NewKey("devices", "list")); n != 2 {
		t.Errorf("Invalidate() = %d, want 2", n)
	}

	for _, key := range keys {
		state, _ := client.State(key)
		want := key.HasPrefix(NewKey("devices", "list"))
		if state.Invalidated != want {
			t.Errorf("%s invalidated = %v, want %v", key, state.Invalidated, want)
		}
	}
}

func TestInvalidateDuringFetchDropsSupersededResult(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("devices", "list", "page=1")

	var calls atomic.Int32
	started := make(chan struct{})
	fetcher := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return "superseded", ctx.Err()
		}
		return "current", nil
	}

	result := make(chan any, 1)
	go func() {
		got, err := client.Fetch(context.Background(), key, fetcher)
		if err != nil {
			t.Errorf("Fetch() error = %v", err)
		}
		result <- got
	}()

	<-started
	client.Invalidate(NewKey("devices"))

	select {
	case got := <-result:
		if got != "current" {
			t.Errorf("Fetch() = %v, want current", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch() did not return")
	}

	state, _ := client.State(key)
	if state.Data != "current" || state.Err != nil {
		t.Errorf("state = %+v, want current without error", state)
	}
}

func TestFailedFetchKeepsPreviousData(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("deviceStats", "dev-1", "")
	boom := errors.New("connection refused")

	var calls atomic.Int32
	fetcher := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return "stats", nil
		}
		return nil, boom
	}

	client.Fetch(context.Background(), key, fetcher)
	client.Invalidate(key)

	if _, err := client.Fetch(context.Background(), key, fetcher); !errors.Is(err, boom) {
		t.Fatalf("Fetch() error = %v, want %v", err, boom)
	}

	state, _ := client.State(key)
	if state.Status != StatusError {
		t.Errorf("Status = %s, want error", state.Status)
	}
	if !state.HasData || state.Data != "stats" {
		t.Errorf("previous data lost: %+v", state)
	}
	if !errors.Is(state.Err, boom) {
		t.Errorf("Err = %v, want %v", state.Err, boom)
	}
}

func TestFetchHonorsCallerContext(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	release := make(chan struct{})
	defer close(release)

	fetcher := func(ctx context.Context) (any, error) {
		<-release
		return "late", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.Fetch(ctx, NewKey("slow"), fetcher); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Fetch() error = %v, want deadline exceeded", err)
	}
}

func TestClosedClient(t *testing.T) {
	client := NewClient(Options{})
	client.Close()
	client.Close()

	fetcher := func(ctx context.Context) (any, error) { return "x", nil }
	if _, err := client.Fetch(context.Background(), NewKey("a"), fetcher); !errors.Is(err, ErrClosed) {
		t.Errorf("Fetch() error = %v, want ErrClosed", err)
	}
	if _, err := client.Subscribe(NewKey("a"), fetcher, SubscribeOptions{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe() error = %v, want ErrClosed", err)
	}
}

func TestCloseReleasesWaiters(t *testing.T) {
	client := NewClient(Options{})

	started := make(chan struct{})
	fetcher := func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, context.Cause(ctx)
	}

	result := make(chan error, 1)
	go func() {
		_, err := client.Fetch(context.Background(), NewKey("a"), fetcher)
		result <- err
	}()

	<-started
	client.Close()

	if err := <-result; !errors.Is(err, ErrClosed) {
		t.Errorf("Fetch() error = %v, want ErrClosed", err)
	}
}

func TestRemove(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("devices", "detail", "dev-1")

	var calls atomic.Int32
	fetcher := countingFetcher(&calls, "v1", "v2")
	client.Fetch(context.Background(), key, fetcher)

	client.Remove(key)
	if _, ok := client.State(key); ok {
		t.Error("entry still present after Remove")
	}

	got, _ := client.Fetch(context.Background(), key, fetcher)
	if got != "v2" {
		t.Errorf("Fetch() after Remove = %v, want v2", got)
	}
}

func TestSetData(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("devices", "detail", "dev-1")

	client.SetData(key, "seeded")

	var calls atomic.Int32
	got, _ := client.Fetch(context.Background(), key, countingFetcher(&calls, "fetched"))
	if got != "seeded" || calls.Load() != 0 {
		t.Errorf("Fetch() = %v with %d calls, want seeded from cache", got, calls.Load())
	}
}

func TestGetTyped(t *testing.T) {
	client := newTestClient(t, newFakeClock())

	got, err := Get(context.Background(), client, NewKey("count"), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("Get() = %v, %v, want 42", got, err)
	}

	_, err = Get(context.Background(), client, NewKey("count"), func(ctx context.Context) (string, error) {
		return "unused", nil
	})
	if err == nil {
		t.Error("Get() with mismatched type expected error")
	}
}
