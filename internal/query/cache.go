package query

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const DEFAULT_STALE_TIME = 5 * time.Minute

// Fetcher loads the value for one key. The context ends when the cache is
// closed or the entry is invalidated mid-flight.
type Fetcher func(ctx context.Context) (any, error)

type Options struct {
	StaleTime time.Duration
	Now       func() time.Time
	Logger    *slog.Logger
	Metrics   *Metrics
}

type flight struct {
	cancel context.CancelCauseFunc
	run    func() (any, error)
}

type entry struct {
	key         Key
	state       State
	fetcher     Fetcher
	flight      *flight
	subscribers map[*Subscription]struct{}

	pollInterval time.Duration
	pollCancel   context.CancelFunc
}

// Client holds every cache entry. All entry state is guarded by one mutex;
// fetchers run outside of it.
type Client struct {
	staleTime time.Duration
	now       func() time.Time
	logger    *slog.Logger
	metrics   *Metrics

	ctx    context.Context
	cancel context.CancelCauseFunc

	mu      sync.Mutex
	group   singleflight.Group
	entries map[string]*entry
	closed  bool
}

func NewClient(options Options) *Client {
	if options.StaleTime <= 0 {
		options.StaleTime = DEFAULT_STALE_TIME
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	ctx, cancel := context.WithCancelCause(context.Background())

	return &Client{
		staleTime: options.StaleTime,
		now:       options.Now,
		logger:    options.Logger,
		metrics:   options.Metrics,
		ctx:       ctx,
		cancel:    cancel,
		entries:   make(map[string]*entry),
	}
}

func (client *Client) log(level slog.Level, msg string, args ...any) {
	if client.logger != nil {
		client.logger.Log(context.Background(), level, msg, args...)
	}
}

// Fetch returns the value for key. A fresh entry is returned as is. A stale
// entry is returned as is and refetched in the background. Without data, or
// after an invalidation, Fetch waits for the fetch and returns its result.
// Concurrent waiters for one key share a single call to fetcher.
func (client *Client) Fetch(ctx context.Context, key Key, fetcher Fetcher) (any, error) {
	for {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			return nil, ErrClosed
		}

		e := client.entryLocked(key, fetcher)

		if e.state.HasData && !e.state.Invalidated {
			data := e.state.Data
			if client.isFreshLocked(e) {
				client.metrics.hit()
			} else {
				client.metrics.staleHit()
				client.log(slog.LevelDebug, "Serving stale entry while revalidating", "key", key.String())
				client.startLocked(e)
			}
			client.mu.Unlock()
			return data, nil
		}

		client.metrics.miss()
		results := client.startLocked(e)
		client.mu.Unlock()

		select {
		case result := <-results:
			if errors.Is(result.Err, errSuperseded) {
				continue
			}
			if result.Err != nil && client.isClosed() {
				return nil, ErrClosed
			}
			return result.Val, result.Err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Prefetch starts a fetch for key unless its entry is fresh. It does not wait.
func (client *Client) Prefetch(key Key, fetcher Fetcher) {
	client.mu.Lock()
	defer client.mu.Unlock()

	if client.closed {
		return
	}

	e := client.entryLocked(key, fetcher)
	if client.needsFetchLocked(e) {
		client.startLocked(e)
	}
}

// Invalidate marks every entry under any of the prefixes as invalid. Running
// fetches for them are cancelled and their results dropped. Entries with
// mounted subscribers are refetched right away; the others refetch on their
// next read. It returns the number of entries touched.
func (client *Client) Invalidate(prefixes ...Key) int {
	client.mu.Lock()
	defer client.mu.Unlock()

	if client.closed {
		return 0
	}

	touched := 0
	for _, e := range client.entries {
		if !matchesAny(e.key, prefixes) {
			continue
		}

		touched++
		e.state.Invalidated = true
		client.dropFlightLocked(e)

		if len(e.subscribers) > 0 && e.fetcher != nil {
			client.startLocked(e)
		} else {
			client.notifyLocked(e)
		}
	}

	client.metrics.invalidated(touched)
	client.log(slog.LevelDebug, "Invalidated cache entries", "prefixes", len(prefixes), "entries", touched)

	return touched
}

// State returns a snapshot of key's entry.
func (client *Client) State(key Key) (State, bool) {
	client.mu.Lock()
	defer client.mu.Unlock()

	e, ok := client.entries[key.String()]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// Snapshot returns the state of every entry keyed by Key.String.
func (client *Client) Snapshot() map[string]State {
	client.mu.Lock()
	defer client.mu.Unlock()

	snapshot := make(map[string]State, len(client.entries))
	for id, e := range client.entries {
		snapshot[id] = e.state
	}
	return snapshot
}

// SetData stores data as a fresh successful value for key, as if it had just
// been fetched.
func (client *Client) SetData(key Key, data any) {
	client.mu.Lock()
	defer client.mu.Unlock()

	if client.closed {
		return
	}

	e := client.entryLocked(key, nil)
	client.dropFlightLocked(e)
	e.state = State{
		Status:    StatusSuccess,
		Data:      data,
		HasData:   true,
		UpdatedAt: client.now(),
	}
	client.notifyLocked(e)
}

// Remove drops key's entry and closes its subscriptions.
func (client *Client) Remove(key Key) {
	client.mu.Lock()
	defer client.mu.Unlock()

	id := key.String()
	e, ok := client.entries[id]
	if !ok {
		return
	}

	client.dropFlightLocked(e)
	client.stopPollLocked(e)
	for subscription := range e.subscribers {
		subscription.closeLocked()
	}
	delete(client.entries, id)
}

// Close cancels every running fetch and poller and closes all subscriptions.
// Reads after Close fail with ErrClosed.
func (client *Client) Close() {
	client.mu.Lock()
	if client.closed {
		client.mu.Unlock()
		return
	}
	client.closed = true

	for _, e := range client.entries {
		client.stopPollLocked(e)
		for subscription := range e.subscribers {
			subscription.closeLocked()
		}
	}
	client.mu.Unlock()

	client.cancel(ErrClosed)
}

func (client *Client) isClosed() bool {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.closed
}

func (client *Client) entryLocked(key Key, fetcher Fetcher) *entry {
	id := key.String()
	e, ok := client.entries[id]
	if !ok {
		e = &entry{
			key:         NewKey(key...),
			state:       State{Status: StatusIdle},
			subscribers: make(map[*Subscription]struct{}),
		}
		client.entries[id] = e
	}
	if fetcher != nil {
		e.fetcher = fetcher
	}
	return e
}

func (client *Client) isFreshLocked(e *entry) bool {
	return e.state.HasData && client.now().Sub(e.state.UpdatedAt) < client.staleTime
}

func (client *Client) needsFetchLocked(e *entry) bool {
	return !e.state.HasData || e.state.Invalidated || !client.isFreshLocked(e)
}

// startLocked joins the entry's running fetch or starts a new one. The
// returned channel receives the outcome once.
func (client *Client) startLocked(e *entry) <-chan singleflight.Result {
	if e.flight == nil {
		if e.fetcher == nil {
			results := make(chan singleflight.Result, 1)
			results <- singleflight.Result{Err: errors.New("no fetcher registered for " + e.key.String())}
			return results
		}
		e.flight = client.newFlightLocked(e)
		e.state.Status = StatusLoading
		client.notifyLocked(e)
	}

	return client.group.DoChan(e.key.String(), e.flight.run)
}

func (client *Client) newFlightLocked(e *entry) *flight {
	ctx, cancel := context.WithCancelCause(client.ctx)
	fetcher := e.fetcher
	f := &flight{cancel: cancel}

	f.run = func() (any, error) {
		client.metrics.flightStarted()
		defer client.metrics.flightDone()

		data, err := fetcher(ctx)
		return client.complete(e, f, data, err)
	}

	client.log(slog.LevelDebug, "Fetching", "key", e.key.String())
	return f
}

// complete applies a finished fetch unless its flight was superseded, in
// which case the result is dropped and waiters are told to retry.
func (client *Client) complete(e *entry, f *flight, data any, err error) (any, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	if e.flight != f {
		client.metrics.fetched("superseded")
		client.log(slog.LevelDebug, "Dropping superseded fetch result", "key", e.key.String())
		return nil, errSuperseded
	}

	e.flight = nil
	client.group.Forget(e.key.String())
	f.cancel(nil)

	if err != nil {
		client.metrics.fetched("error")
		client.log(slog.LevelDebug, "Fetch failed", "key", e.key.String(), "error", err)
		e.state.Status = StatusError
		e.state.Err = err
	} else {
		client.metrics.fetched("success")
		e.state = State{
			Status:    StatusSuccess,
			Data:      data,
			HasData:   true,
			UpdatedAt: client.now(),
		}
	}

	client.notifyLocked(e)
	return data, err
}

func (client *Client) dropFlightLocked(e *entry) {
	if e.flight == nil {
		return
	}

	e.flight.cancel(errSuperseded)
	e.flight = nil
	client.group.Forget(e.key.String())
	e.state.Status = e.state.settled()
}

func matchesAny(key Key, prefixes []Key) bool {
	for _, prefix := range prefixes {
		if key.HasPrefix(prefix) {
			return true
		}
	}
	return false
}
