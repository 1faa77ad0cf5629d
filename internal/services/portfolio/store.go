// Package portfolio provides the holdings store: the single owner of the
// portfolio collection and the only component allowed to mutate it.
package portfolio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/valuation"
)

// DuplicatePolicy controls what happens when an already-held symbol is added.
type DuplicatePolicy string

const (
	// DuplicateReject refuses the add with models.ErrDuplicateSymbol.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateMerge sums quantities and re-averages the cost basis,
	// weighted by quantity.
	DuplicateMerge DuplicatePolicy = "merge"
)

// ParseDuplicatePolicy maps a config string to a policy, defaulting to reject.
func ParseDuplicatePolicy(s string) DuplicatePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(DuplicateMerge)) {
		return DuplicateMerge
	}
	return DuplicateReject
}

// Store owns the authoritative holdings collection. All mutations are
// serialized: at most one mutation is in flight at any time, and a second
// one is rejected with models.ErrStoreBusy rather than queued, so the caller
// can surface a busy signal instead of silently reordering user actions.
//
// Reads always see a consistent collection+summary pair; the summary is
// recomputed inside the same critical section as every collection write.
type Store struct {
	client interfaces.StockAPIClient
	logger *common.Logger
	policy DuplicatePolicy

	// injectable for tests
	now   func() time.Time
	newID func() string

	mu           sync.Mutex
	holdings     []models.Holding
	summary      models.PortfolioSummary
	mutating     bool
	isLoading    bool
	isRefreshing bool
	lastError    string
	refreshEpoch uint64

	subMu sync.Mutex
	subs  map[<-chan models.Snapshot]chan models.Snapshot
}

// NewStore creates an empty holdings store.
func NewStore(client interfaces.StockAPIClient, policy DuplicatePolicy, logger *common.Logger) *Store {
	if policy != DuplicateMerge {
		policy = DuplicateReject
	}
	return &Store{
		client: client,
		logger: logger,
		policy: policy,
		now:    time.Now,
		newID:  uuid.NewString,
		subs:   make(map[<-chan models.Snapshot]chan models.Snapshot),
	}
}

// beginMutation claims the single mutation slot. It fails fast with
// ErrStoreBusy instead of blocking so an interactive caller is never stuck
// behind a slow quote fetch.
func (s *Store) beginMutation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mutating {
		return models.ErrStoreBusy
	}
	s.mutating = true
	s.isLoading = true
	return nil
}

// endMutation releases the mutation slot. A non-empty errMsg records the
// failure; an empty one leaves whatever the mutation itself recorded intact,
// so a commit that succeeded with a pending price keeps its message.
func (s *Store) endMutation(errMsg string) {
	s.mu.Lock()
	s.mutating = false
	s.isLoading = false
	if errMsg != "" {
		s.lastError = errMsg
	}
	s.mu.Unlock()
}

// StagedHolding is the output of the validation phase of an add: everything
// checked, nothing committed, no I/O performed yet.
type StagedHolding struct {
	Symbol      string
	Quantity    float64
	AvgBuyPrice float64

	// mergeID is set when the symbol is already held and the policy is
	// merge; commit folds the staged lot into that holding instead of
	// inserting a new row.
	mergeID string
}

// StageHolding validates an add without performing any I/O. Returns the
// staged holding ready for commit, or a validation/duplicate error. The
// collection is not modified.
func (s *Store) StageHolding(symbol string, quantity, avgBuyPrice float64) (*StagedHolding, error) {
	if err := models.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if err := models.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := models.ValidateAvgBuyPrice(avgBuyPrice); err != nil {
		return nil, err
	}

	normalized := models.NormalizeSymbol(symbol)

	staged := &StagedHolding{
		Symbol:      normalized,
		Quantity:    quantity,
		AvgBuyPrice: avgBuyPrice,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.holdings {
		if s.holdings[i].Symbol == normalized {
			if s.policy == DuplicateReject {
				return nil, fmt.Errorf("%s: %w", normalized, models.ErrDuplicateSymbol)
			}
			staged.mergeID = s.holdings[i].ID
			break
		}
	}

	return staged, nil
}

// CommitHolding resolves the current price for a staged holding and writes
// it into the collection. A failed quote fetch does not fail the commit: the
// holding is kept with a pending-price marker, because dropping the user's
// cost-basis entry over a transient network error is the worse outcome.
func (s *Store) CommitHolding(ctx context.Context, staged *StagedHolding) (*models.Holding, error) {
	quote, err := s.client.GetQuote(ctx, staged.Symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", staged.Symbol).Msg("Quote fetch failed, committing with pending price")
		qerr := &models.QuoteFetchError{Symbol: staged.Symbol, Err: err}
		return s.commit(staged, nil, qerr), nil
	}
	return s.commit(staged, quote, nil), nil
}

// commit applies the staged holding (insert or merge) and recomputes the
// summary in one critical section. Publication happens in AddHolding once
// the mutation slot has settled.
func (s *Store) commit(staged *StagedHolding, quote *models.Quote, qerr *models.QuoteFetchError) *models.Holding {
	now := s.now()

	s.mu.Lock()

	committedID := ""

	if staged.mergeID != "" {
		for i := range s.holdings {
			if s.holdings[i].ID != staged.mergeID {
				continue
			}
			h := &s.holdings[i]
			mergedQty := h.Quantity + staged.Quantity
			h.AvgBuyPrice = (h.Quantity*h.AvgBuyPrice + staged.Quantity*staged.AvgBuyPrice) / mergedQty
			h.Quantity = mergedQty
			if quote != nil {
				h.ApplyQuote(*quote, now)
			}
			committedID = h.ID
			break
		}
	}

	if committedID == "" {
		h := models.Holding{
			ID:          s.newID(),
			Symbol:      staged.Symbol,
			Quantity:    staged.Quantity,
			AvgBuyPrice: staged.AvgBuyPrice,
		}
		if quote != nil {
			h.ApplyQuote(*quote, now)
		} else {
			h.PricePending = true
		}
		s.holdings = append(s.holdings, h)
		committedID = h.ID
	}

	s.recomputeLocked()
	if qerr != nil {
		s.lastError = qerr.Error()
	} else {
		s.lastError = ""
	}
	// recompute replaced the backing slice, so re-find by identity
	result := *s.findLocked(committedID)
	s.mu.Unlock()

	s.logger.Info().
		Str("symbol", result.Symbol).
		Float64("quantity", result.Quantity).
		Bool("price_pending", result.PricePending).
		Msg("Holding committed")

	return &result
}

// AddHolding validates, resolves the current price, and commits a new
// holding. It composes StageHolding and CommitHolding under the single
// mutation slot.
func (s *Store) AddHolding(ctx context.Context, symbol string, quantity, avgBuyPrice float64) (*models.Holding, error) {
	if err := s.beginMutation(); err != nil {
		return nil, err
	}

	staged, err := s.StageHolding(symbol, quantity, avgBuyPrice)
	if err != nil {
		s.endMutation(err.Error())
		return nil, err
	}

	h, err := s.CommitHolding(ctx, staged)
	if err != nil {
		s.endMutation(err.Error())
		return nil, err
	}

	// Publish only after the slot settles so subscribers never end on a
	// snapshot with the loading flag still raised.
	s.endMutation("")
	s.publish()
	return h, nil
}

// UpdateHolding mutates only the user-owned fields of an existing holding by
// identity and recomputes the summary. Market fields are untouched and no
// price re-fetch happens. Unknown ids are a hard error.
func (s *Store) UpdateHolding(_ context.Context, id string, quantity, avgBuyPrice float64) (*models.Holding, error) {
	if err := models.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := models.ValidateAvgBuyPrice(avgBuyPrice); err != nil {
		return nil, err
	}

	if err := s.beginMutation(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	target := s.findLocked(id)
	if target == nil {
		s.mu.Unlock()
		s.endMutation(models.ErrHoldingNotFound.Error())
		return nil, fmt.Errorf("%s: %w", id, models.ErrHoldingNotFound)
	}
	target.Quantity = quantity
	target.AvgBuyPrice = avgBuyPrice

	s.lastError = ""
	s.recomputeLocked()
	result := *s.findLocked(id)
	s.mu.Unlock()

	s.endMutation("")
	s.publish()

	s.logger.Info().Str("symbol", result.Symbol).Msg("Holding updated")

	return &result, nil
}

// DeleteHolding removes a holding by identity. Deleting an unknown id is a
// no-op: the collection and summary are left byte-identical and no snapshot
// is published.
func (s *Store) DeleteHolding(_ context.Context, id string) error {
	if err := s.beginMutation(); err != nil {
		return err
	}

	s.mu.Lock()
	removed := false
	for i := range s.holdings {
		if s.holdings[i].ID == id {
			s.holdings = append(s.holdings[:i], s.holdings[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.lastError = ""
		s.recomputeLocked()
	}
	s.mu.Unlock()

	s.endMutation("")

	if removed {
		s.publish()
		s.logger.Info().Str("id", id).Msg("Holding deleted")
	}

	return nil
}

// recomputeLocked re-derives all holdings and the summary. Caller must hold mu.
func (s *Store) recomputeLocked() {
	s.holdings, s.summary = valuation.Recompute(s.holdings)
}

// findLocked returns the holding with the given id, or nil. Caller must hold mu.
func (s *Store) findLocked(id string) *models.Holding {
	for i := range s.holdings {
		if s.holdings[i].ID == id {
			return &s.holdings[i]
		}
	}
	return nil
}

// IsBusy reports whether a mutation is currently in flight.
func (s *Store) IsBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutating
}

// Ensure Store implements PortfolioStore
var _ interfaces.PortfolioStore = (*Store)(nil)
