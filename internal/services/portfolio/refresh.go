package portfolio

import (
	"context"
	"sync"

	"github.com/bobmcallan/folio/internal/models"
)

// fetchedQuote pairs one symbol's refresh result with its outcome.
type fetchedQuote struct {
	symbol string
	quote  *models.Quote
	err    error
}

// RefreshPrices fetches the current price for every held symbol in parallel
// and applies all successful results as a single batch with one recompute.
// Failed symbols keep their cached prices; the UI never observes N
// intermediate summaries from a partially applied refresh.
//
// Each call claims a new refresh epoch. A superseded refresh is allowed to
// finish its network calls, but its results are discarded at apply time if a
// newer epoch has been issued — quotes must never be applied out of order.
//
// Refresh does not claim the mutation slot and is never rejected with
// ErrStoreBusy: it touches only market-owned fields, applies as a single
// atomic batch under the lock, and epoch ordering already serializes
// refresh against refresh. Holding edits therefore stay available while
// prices are in flight.
func (s *Store) RefreshPrices(ctx context.Context) error {
	s.mu.Lock()
	s.refreshEpoch++
	epoch := s.refreshEpoch
	s.isRefreshing = true
	symbols := make([]string, len(s.holdings))
	for i := range s.holdings {
		symbols[i] = s.holdings[i].Symbol
	}
	s.mu.Unlock()

	if len(symbols) == 0 {
		s.settleRefresh(epoch, nil, 0)
		return nil
	}

	results := make([]fetchedQuote, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			quote, err := s.client.GetQuote(ctx, symbol)
			results[i] = fetchedQuote{symbol: symbol, quote: quote, err: err}
		}(i, symbol)
	}
	wg.Wait()

	quotes := make(map[string]models.Quote, len(results))
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			s.logger.Warn().Err(r.err).Str("symbol", r.symbol).Msg("Price refresh failed for symbol, keeping cached price")
			continue
		}
		quotes[r.symbol] = *r.quote
	}

	applied := s.settleRefresh(epoch, quotes, failed)
	if !applied {
		s.logger.Debug().Uint64("epoch", epoch).Msg("Discarding superseded price refresh")
		return nil
	}

	s.logger.Info().
		Int("updated", len(quotes)).
		Int("failed", failed).
		Msg("Prices refreshed")

	return nil
}

// settleRefresh applies a completed refresh batch if its epoch is still
// current. Returns false when the batch was superseded and discarded. The
// refreshing flag is always cleared by the epoch that owns it, so it can
// never be left hung by a discarded batch.
func (s *Store) settleRefresh(epoch uint64, quotes map[string]models.Quote, failed int) bool {
	now := s.now()

	s.mu.Lock()
	if epoch != s.refreshEpoch {
		s.mu.Unlock()
		return false
	}

	changed := false
	for i := range s.holdings {
		if quote, ok := quotes[s.holdings[i].Symbol]; ok {
			s.holdings[i].ApplyQuote(quote, now)
			changed = true
		}
	}
	if changed {
		s.recomputeLocked()
	}

	s.isRefreshing = false
	if failed > 0 {
		s.lastError = "some prices could not be refreshed"
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	// Publish even when no price changed so subscribers observe the
	// refreshing flag settling.
	s.publish()
	return true
}
