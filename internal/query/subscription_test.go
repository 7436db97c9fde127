package query

import (
	"context"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func nextState(t *testing.T, subscription *Subscription, want func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case state, ok := <-subscription.Updates():
			if !ok {
				t.Fatal("updates closed")
			}
			if want(state) {
				return state
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func TestSubscribeFetchesOnMount(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("devices", "detail", "dev-1")

	var calls atomic.Int32
	subscription, err := client.Subscribe(key, countingFetcher(&calls, "device"), SubscribeOptions{})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer subscription.Close()

	state := nextState(t, subscription, func(s State) bool { return s.Status == StatusSuccess })
	if state.Data != "device" {
		t.Errorf("Data = %v, want device", state.Data)
	}

	second, _ := client.Subscribe(key, countingFetcher(&calls, "device"), SubscribeOptions{})
	defer second.Close()
	if got := second.State(); got.Data != "device" {
		t.Errorf("second subscriber state = %+v", got)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("fetcher called %d times, want 1 for a fresh entry", n)
	}
}

func TestInvalidateRefetchesMountedEntries(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("latestReading", "dev-1")

	var calls atomic.Int32
	subscription, _ := client.Subscribe(key, countingFetcher(&calls, "r1", "r2"), SubscribeOptions{})
	defer subscription.Close()

	nextState(t, subscription, func(s State) bool { return s.Data == "r1" && s.Status == StatusSuccess })

	client.Invalidate(NewKey("latestReading", "dev-1"))

	state := nextState(t, subscription, func(s State) bool { return s.Data == "r2" })
	if state.Invalidated || state.Status != StatusSuccess {
		t.Errorf("state after refetch = %+v", state)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("fetcher called %d times, want 2", n)
	}
}

func TestPollingRunsWhileMounted(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("analytics", "overview")

	var calls atomic.Int32
	fetcher := func(ctx context.Context) (any, error) {
		return calls.Add(1), nil
	}

	subscription, _ := client.Subscribe(key, fetcher, SubscribeOptions{RefetchInterval: 10 * time.Millisecond})
	waitFor(t, "polling", func() bool { return calls.Load() >= 4 })

	subscription.Close()
	time.Sleep(20 * time.Millisecond)
	stopped := calls.Load()
	time.Sleep(50 * time.Millisecond)

	if n := calls.Load(); n != stopped {
		t.Errorf("fetcher called %d more times after the last subscriber closed", n-stopped)
	}
}

func TestPollingUsesSmallestInterval(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("latestReading", "dev-1")
	fetcher := func(ctx context.Context) (any, error) { return "r", nil }

	slow, _ := client.Subscribe(key, fetcher, SubscribeOptions{RefetchInterval: time.Hour})
	defer slow.Close()
	fast, _ := client.Subscribe(key, fetcher, SubscribeOptions{RefetchInterval: time.Minute})

	interval := func() time.Duration {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.entries[key.String()].pollInterval
	}

	if got := interval(); got != time.Minute {
		t.Errorf("poll interval = %v, want 1m", got)
	}

	fast.Close()
	if got := interval(); got != time.Hour {
		t.Errorf("poll interval after closing fast subscriber = %v, want 1h", got)
	}

	slow.Close()
	if got := interval(); got != 0 {
		t.Errorf("poll interval with no subscribers = %v, want 0", got)
	}
}

func TestClosedSubscriptionReceivesNothing(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("devices", "list", "page=1")

	release := make(chan struct{})
	fetcher := func(ctx context.Context) (any, error) {
		<-release
		return "page", nil
	}

	subscription, _ := client.Subscribe(key, fetcher, SubscribeOptions{})
	subscription.Close()
	subscription.Close()
	close(release)

	waitFor(t, "fetch completion", func() bool {
		state, _ := client.State(key)
		return state.Status == StatusSuccess
	})

	if state, ok := <-subscription.Updates(); ok {
		t.Errorf("closed subscription received %+v", state)
	}
}

func TestSlowConsumerGetsLatestState(t *testing.T) {
	client := newTestClient(t, newFakeClock())
	key := NewKey("devices", "detail", "dev-1")

	subscription, _ := client.Subscribe(key, func(ctx context.Context) (any, error) { return "v", nil }, SubscribeOptions{})
	defer subscription.Close()

	waitFor(t, "first fetch", func() bool { return subscription.State().Status == StatusSuccess })

	for _, data := range []string{"a", "b", "c"} {
		client.SetData(key, data)
	}

	state := <-subscription.Updates()
	if state.Data != "c" {
		t.Errorf("buffered state = %v, want c", state.Data)
	}
}

func TestKey(t *testing.T) {
	key := NewKey("devices", "list", Params(url.Values{"search": {"a/b"}, "page": {"1"}}))

	if got, want := key.String(), "devices/list/page=1&search=a%252Fb"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !key.HasPrefix(NewKey("devices")) || !key.HasPrefix(NewKey("devices", "list")) {
		t.Error("HasPrefix() = false for a prefix")
	}
	if key.HasPrefix(NewKey("devices", "detail")) || NewKey("devices").HasPrefix(key) {
		t.Error("HasPrefix() = true for a non prefix")
	}

	a := Params(url.Values{"page": {"1"}, "limit": {"25"}})
	b := Params(url.Values{"limit": {"25"}, "page": {"1"}})
	c := Params(url.Values{"limit": {"25"}, "page": {"1"}, "type": {"light"}})
	if a != b {
		t.Errorf("equal params encode differently: %q vs %q", a, b)
	}
	if a == c {
		t.Error("different params encode the same")
	}
}
