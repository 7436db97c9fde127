package query

import (
	"context"
	"log/slog"
	"time"
)

type SubscribeOptions struct {
	// RefetchInterval polls the key while the subscription is open. Zero
	// disables polling for this subscriber.
	RefetchInterval time.Duration
}

// Subscription is a mounted consumer of one key. It receives the entry's
// state on every change through Updates, keeping only the newest snapshot
// when the consumer falls behind. Nothing is delivered once Close returns.
type Subscription struct {
	client   *Client
	entry    *entry
	interval time.Duration
	updates  chan State
	closed   bool
}

// Subscribe mounts a consumer on key. The entry is fetched right away when it
// has no data or is stale or invalidated, and the consumer gets the current
// state immediately.
func (client *Client) Subscribe(key Key, fetcher Fetcher, options SubscribeOptions) (*Subscription, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	if client.closed {
		return nil, ErrClosed
	}

	e := client.entryLocked(key, fetcher)
	subscription := &Subscription{
		client:   client,
		entry:    e,
		interval: options.RefetchInterval,
		updates:  make(chan State, 1),
	}
	e.subscribers[subscription] = struct{}{}

	if client.needsFetchLocked(e) {
		client.startLocked(e)
	}
	subscription.deliverLocked(e.state)
	client.reschedulePollLocked(e)

	return subscription, nil
}

func (subscription *Subscription) Key() Key {
	return NewKey(subscription.entry.key...)
}

// Updates delivers state snapshots. The channel is closed by Close.
func (subscription *Subscription) Updates() <-chan State {
	return subscription.updates
}

// State returns the entry's current state.
func (subscription *Subscription) State() State {
	client := subscription.client
	client.mu.Lock()
	defer client.mu.Unlock()
	return subscription.entry.state
}

// Refetch fetches the key again regardless of freshness.
func (subscription *Subscription) Refetch() {
	client := subscription.client
	client.mu.Lock()
	defer client.mu.Unlock()

	if subscription.closed || client.closed {
		return
	}
	client.startLocked(subscription.entry)
}

// Close unmounts the subscription. Polling for the key stops when its last
// subscriber is closed. Safe to call more than once.
func (subscription *Subscription) Close() {
	client := subscription.client
	client.mu.Lock()
	defer client.mu.Unlock()

	subscription.closeLocked()
}

func (subscription *Subscription) closeLocked() {
	if subscription.closed {
		return
	}
	subscription.closed = true

	e := subscription.entry
	delete(e.subscribers, subscription)

	select {
	case <-subscription.updates:
	default:
	}
	close(subscription.updates)

	subscription.client.reschedulePollLocked(e)
}

func (subscription *Subscription) deliverLocked(state State) {
	if subscription.closed {
		return
	}

	select {
	case <-subscription.updates:
	default:
	}
	select {
	case subscription.updates <- state:
	default:
	}
}

func (client *Client) notifyLocked(e *entry) {
	for subscription := range e.subscribers {
		subscription.deliverLocked(e.state)
	}
}

// reschedulePollLocked keeps one poller per entry running at the smallest
// interval any open subscriber asked for, and stops it when none did.
func (client *Client) reschedulePollLocked(e *entry) {
	var interval time.Duration
	for subscription := range e.subscribers {
		if subscription.interval > 0 && (interval == 0 || subscription.interval < interval) {
			interval = subscription.interval
		}
	}

	if interval == e.pollInterval && (interval == 0 || e.pollCancel != nil) {
		return
	}

	client.stopPollLocked(e)
	if interval == 0 || client.closed {
		return
	}

	ctx, cancel := context.WithCancel(client.ctx)
	e.pollInterval = interval
	e.pollCancel = cancel

	client.log(slog.LevelDebug, "Polling started", "key", e.key.String(), "interval", interval)
	go client.poll(ctx, e, interval)
}

func (client *Client) stopPollLocked(e *entry) {
	if e.pollCancel == nil {
		return
	}

	e.pollCancel()
	e.pollCancel = nil
	e.pollInterval = 0
	client.log(slog.LevelDebug, "Polling stopped", "key", e.key.String())
}

func (client *Client) poll(ctx context.Context, e *entry, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			client.mu.Lock()
			if ctx.Err() == nil && !client.closed {
				client.startLocked(e)
			}
			client.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
