package app

import (
	"context"
	"log"
	"sync"
	"time"

	"quizhub/internal/domain"
)

// Broadcaster keeps websocket observers synchronized with ledger state.
// Observer channels are registered and removed explicitly; delivery is
// best-effort per observer and never reaches back to the submitter.
type Broadcaster struct {
	store       Store
	settleDelay time.Duration

	mu        sync.Mutex
	observers map[chan []domain.LeaderboardEntry]struct{}
}

// NewBroadcaster builds a hub that recomputes the leaderboard settleDelay
// after each ledger update, absorbing eventual-consistency lag in the store.
func NewBroadcaster(store Store, settleDelay time.Duration) *Broadcaster {
	return &Broadcaster{
		store:       store,
		settleDelay: settleDelay,
		observers:   make(map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// Subscribe registers an observer and immediately delivers the current
// leaderboard snapshot to it alone. The caller must invoke the returned
// cancel function to avoid leaks.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error) {
	snapshot, err := b.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []domain.LeaderboardEntry, 8)
	b.mu.Lock()
	b.observers[ch] = struct{}{}
	b.mu.Unlock()

	ch <- snapshot

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.observers[ch]; ok {
			delete(b.observers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel, nil
}

// Snapshot loads all users and ranks them.
func (b *Broadcaster) Snapshot(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	users, err := b.store.ListUsersByScoreDesc(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(users), nil
}

// Trigger schedules a recompute-and-publish detached from the caller. Two
// rapid triggers may race; the later recompute eventually reflects the latest
// persisted state, which is the only ordering promised.
func (b *Broadcaster) Trigger() {
	go func() {
		if b.settleDelay > 0 {
			time.Sleep(b.settleDelay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entries, err := b.Snapshot(ctx)
		if err != nil {
			log.Printf("leaderboard recompute failed: %v", err)
			return
		}
		b.publish(entries)
	}()
}

func (b *Broadcaster) publish(entries []domain.LeaderboardEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.observers {
		select {
		case ch <- entries:
		default:
			// Slow observer: drop its stale pending update in favor of
			// the fresh one rather than blocking the broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}

// ObserverCount reports the number of connected observers.
func (b *Broadcaster) ObserverCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}
