// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// PortfolioStore owns the holdings collection and is the single source of
// truth for valuation. Mutations are serialized; a second mutation issued
// while one is in flight is rejected with models.ErrStoreBusy. All reads
// return immutable snapshots.
type PortfolioStore interface {
	// AddHolding validates, resolves the current price, and commits a new
	// holding. A failed quote fetch still commits the holding with a pending
	// price marker. Returns the committed holding.
	AddHolding(ctx context.Context, symbol string, quantity, avgBuyPrice float64) (*models.Holding, error)

	// UpdateHolding mutates only the user-owned fields of an existing
	// holding by identity. Unknown ids are a hard error. No price re-fetch.
	UpdateHolding(ctx context.Context, id string, quantity, avgBuyPrice float64) (*models.Holding, error)

	// DeleteHolding removes a holding by identity. Deleting an unknown id is
	// a no-op, not an error.
	DeleteHolding(ctx context.Context, id string) error

	// RefreshPrices fetches current prices for every held symbol in
	// parallel, then applies all successful results as one batch with a
	// single recompute. Partial failures leave the failed symbols at their
	// cached prices.
	RefreshPrices(ctx context.Context) error

	// Snapshot returns the current immutable view of the portfolio.
	Snapshot() models.Snapshot

	// Subscribe registers a consumer for snapshot publications. The returned
	// channel receives a fresh snapshot after every settled mutation and
	// refresh; slow consumers miss intermediate snapshots rather than
	// blocking the store.
	Subscribe() <-chan models.Snapshot

	// Unsubscribe removes a previously registered consumer channel.
	Unsubscribe(ch <-chan models.Snapshot)
}

// SymbolSearcher runs debounced, cancelable symbol searches. A response is
// delivered only if its request generation is still current — last request
// wins, not last response.
type SymbolSearcher interface {
	// Search schedules a query after the debounce quiet period, superseding
	// any pending or in-flight query.
	Search(query string)

	// Results returns the channel search outcomes are delivered on.
	Results() <-chan SearchOutcome

	// Close cancels any in-flight search and releases the searcher.
	Close()
}

// SearchOutcome is one delivered search response. Errors surface as an empty
// result set plus a message, since search is advisory.
type SearchOutcome struct {
	Query   string
	Results []models.SearchResult
	Err     error
}

// ViewState manages UI preferences and modal interaction state.
type ViewState interface {
	Settings() models.Settings
	UpdateSettings(s models.Settings) (models.Settings, error)
	Modal() models.ModalState
	OpenAdd(prefill *models.AddPrefill)
	OpenEdit(holdingID string)
	CloseModal()
}
