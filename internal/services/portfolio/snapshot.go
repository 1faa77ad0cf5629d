package portfolio

import (
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/valuation"
)

// Snapshot returns the current immutable view of the portfolio: a copy of
// the holdings, the reconciled summary, and the allocation projection.
// Mutating the returned value has no effect on the store.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked builds a snapshot. Caller must hold mu.
func (s *Store) snapshotLocked() models.Snapshot {
	holdings := make([]models.Holding, len(s.holdings))
	copy(holdings, s.holdings)

	return models.Snapshot{
		Holdings:     holdings,
		Summary:      s.summary,
		Allocation:   valuation.ComputeAllocation(holdings),
		IsLoading:    s.isLoading,
		IsRefreshing: s.isRefreshing,
		Error:        s.lastError,
		GeneratedAt:  s.now(),
	}
}

// Subscribe registers a consumer channel that receives a fresh snapshot
// after every settled mutation and refresh, with the loading and refreshing
// flags already lowered. Channels are buffered with capacity one and sends
// never block: a slow consumer misses intermediate snapshots and always
// observes the latest one instead, so the store can never be stalled by a
// dead subscriber.
func (s *Store) Subscribe() <-chan models.Snapshot {
	ch := make(chan models.Snapshot, 1)

	s.subMu.Lock()
	s.subs[ch] = ch
	s.subMu.Unlock()

	return ch
}

// Unsubscribe removes a consumer channel registered with Subscribe.
func (s *Store) Unsubscribe(ch <-chan models.Snapshot) {
	s.subMu.Lock()
	delete(s.subs, ch)
	s.subMu.Unlock()
}

// publish broadcasts the current snapshot to all subscribers, latest-wins.
func (s *Store) publish() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Buffer full: drop the stale snapshot, then deliver the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
