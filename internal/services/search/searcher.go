package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Searcher debounces free-text symbol lookups against the stock API. Every
// Search call restarts the debounce window and supersedes any in-flight
// request, so a user typing quickly produces exactly one network call for
// the final query and never sees results for a stale one.
type Searcher struct {
	client   interfaces.StockAPIClient
	logger   *common.Logger
	debounce time.Duration
	limit    int

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	closed     bool

	results chan interfaces.SearchOutcome
}

// NewSearcher builds a searcher delivering at most limit results per query
// after the given debounce window.
func NewSearcher(client interfaces.StockAPIClient, debounce time.Duration, limit int, logger *common.Logger) *Searcher {
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if limit <= 0 {
		limit = 10
	}
	l := logger.With().Str("service", "search").Logger()
	return &Searcher{
		client:   client,
		logger:   &common.Logger{Logger: l},
		debounce: debounce,
		limit:    limit,
		results:  make(chan interfaces.SearchOutcome, 1),
	}
}

// Search schedules a lookup for query after the debounce window. Calling it
// again before the window elapses discards the previous query entirely. A
// blank query short-circuits: pending work is cancelled and an empty outcome
// is delivered immediately with no network call.
func (s *Searcher) Search(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.generation++
	gen := s.generation

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		s.deliverLocked(interfaces.SearchOutcome{Query: ""})
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.fire(gen, trimmed)
	})
}

// fire runs the network lookup for one debounced query. Outcomes belonging
// to a superseded generation are discarded, including the context.Canceled
// error produced by cancelling them.
func (s *Searcher) fire(gen uint64, query string) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	results, err := s.client.SearchSymbols(ctx, query, s.limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	s.cancel = nil

	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("Symbol search failed")
		s.deliverLocked(interfaces.SearchOutcome{Query: query, Err: err})
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	s.deliverLocked(interfaces.SearchOutcome{Query: query, Results: results})
}

// deliverLocked pushes an outcome latest-wins. Caller must hold mu.
func (s *Searcher) deliverLocked(out interfaces.SearchOutcome) {
	select {
	case s.results <- out:
	default:
		select {
		case <-s.results:
		default:
		}
		select {
		case s.results <- out:
		default:
		}
	}
}

// Results returns the channel on which debounced outcomes are delivered.
// Only the outcome of the most recent query is ever observable.
func (s *Searcher) Results() <-chan interfaces.SearchOutcome {
	return s.results
}

// Close cancels any pending or in-flight lookup and stops delivery. Safe to
// call more than once.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

var _ interfaces.SymbolSearcher = (*Searcher)(nil)
