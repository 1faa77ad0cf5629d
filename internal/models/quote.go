package models

import "time"

// Quote holds a live price snapshot from the quote provider
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`          // current/last price
	PreviousClose float64   `json:"previous_close"` // previous day's close
	Change        float64   `json:"change"`         // absolute change from previous close
	ChangePct     float64   `json:"change_pct"`     // percentage change from previous close
	Timestamp     time.Time `json:"timestamp"`
}

// SearchResult is one symbol/name match from the provider's search endpoint
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
}
