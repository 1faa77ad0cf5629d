package models

import "time"

// PortfolioSummary is the portfolio-level aggregate. It is always recomputed
// as a fold over the holdings snapshot, never mutated directly, so it can
// never drift out of reconciliation with the holdings it summarizes.
type PortfolioSummary struct {
	TotalValue       float64 `json:"total_value"`
	TotalCost        float64 `json:"total_cost"`
	TotalGainLoss    float64 `json:"total_gain_loss"`
	TotalGainLossPct float64 `json:"total_gain_loss_pct"`
	DayGainLoss      float64 `json:"day_gain_loss"`
	DayGainLossPct   float64 `json:"day_gain_loss_pct"`
	HoldingsCount    int     `json:"holdings_count"`
}

// AllocationEntry is the presentation projection of one holding's share of
// total market value. Percentages over a non-empty portfolio sum to 100
// within floating-point tolerance; an empty portfolio produces an empty
// list, never NaN entries.
type AllocationEntry struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name,omitempty"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"` // deterministic per symbol across sessions
}

// Snapshot is the immutable view published to rendering collaborators after
// every recompute. Consumers must treat it as read-only; the store hands out
// fresh copies so no intermediate partially-updated state is observable.
type Snapshot struct {
	Holdings     []Holding         `json:"holdings"`
	Summary      PortfolioSummary  `json:"summary"`
	Allocation   []AllocationEntry `json:"allocation"`
	IsLoading    bool              `json:"is_loading"`
	IsRefreshing bool              `json:"is_refreshing"`
	Error        string            `json:"error,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
}
