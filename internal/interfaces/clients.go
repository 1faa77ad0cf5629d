// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// StockAPIClient provides access to the external quote/search provider.
// Both operations are independent failure domains: a failed quote for one
// symbol says nothing about another, and search failures never affect prices.
type StockAPIClient interface {
	// GetQuote retrieves the live price and previous close for one symbol.
	// Timeouts and non-2xx responses come back as a typed *stockapi.APIError,
	// never a hang.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// SearchSymbols resolves a symbol/name query, capped at limit results.
	// The client performs no throttling; debouncing is the caller's job.
	SearchSymbols(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}
