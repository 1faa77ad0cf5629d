package models

import (
	"math"
	"strings"
	"time"
)

// Holding represents one open position.
//
// Quantity and AvgBuyPrice are user-owned; CurrentPrice through ChangePct are
// market-owned and refreshed from the quote source. Everything below the
// derived marker is a pure function of those four owned fields — no code path
// may set a derived field independently. DeriveFields is the only writer.
type Holding struct {
	ID       string `json:"id"`       // opaque, stable across edits
	Symbol   string `json:"symbol"`   // exchange ticker, uppercase, unique per portfolio
	Name     string `json:"name,omitempty"`
	Exchange string `json:"exchange,omitempty"`

	// User-owned fields
	Quantity    float64 `json:"quantity"`
	AvgBuyPrice float64 `json:"avg_buy_price"`

	// Market-owned fields
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePct     float64 `json:"change_pct"`

	// PricePending marks a holding whose quote fetch failed at add time. The
	// position is kept (losing the cost-basis entry over a network blip is the
	// worse failure) and priced at zero until the next successful refresh.
	PricePending   bool      `json:"price_pending,omitempty"`
	PriceUpdatedAt time.Time `json:"price_updated_at,omitempty"`

	// Derived fields — recomputed by DeriveFields, never stored independently
	TotalCost      float64 `json:"total_cost"`
	TotalValue     float64 `json:"total_value"`
	GainLoss       float64 `json:"gain_loss"`
	GainLossPct    float64 `json:"gain_loss_pct"`
	DayGainLoss    float64 `json:"day_gain_loss"`
	DayGainLossPct float64 `json:"day_gain_loss_pct"`
}

// DeriveFields recomputes all derived fields from the four owned fields.
// Pure: identical inputs always produce identical outputs, and it never
// panics. Divisions by zero yield 0, not NaN or Inf — a NaN propagating into
// the portfolio summary would silently corrupt every downstream sum. Zero is
// the uniform sentinel throughout the engine.
func (h *Holding) DeriveFields() {
	h.TotalCost = h.Quantity * h.AvgBuyPrice
	h.TotalValue = h.Quantity * h.CurrentPrice
	h.GainLoss = h.TotalValue - h.TotalCost
	h.GainLossPct = safePct(h.GainLoss, h.TotalCost)
	h.DayGainLoss = h.Quantity * (h.CurrentPrice - h.PreviousClose)
	h.DayGainLossPct = safePct(h.CurrentPrice-h.PreviousClose, h.PreviousClose)
}

// ApplyQuote sets the market-owned fields from a quote and recomputes the
// derived fields. User-owned fields are untouched.
func (h *Holding) ApplyQuote(q Quote, at time.Time) {
	h.CurrentPrice = q.Price
	h.PreviousClose = q.PreviousClose
	h.Change = q.Price - q.PreviousClose
	h.ChangePct = safePct(h.Change, q.PreviousClose)
	h.PricePending = false
	h.PriceUpdatedAt = at
	h.DeriveFields()
}

// safePct returns part/whole × 100, or 0 when the denominator is zero or
// either value is not finite.
func safePct(part, whole float64) float64 {
	if whole == 0 || math.IsNaN(part) || math.IsNaN(whole) || math.IsInf(part, 0) || math.IsInf(whole, 0) {
		return 0
	}
	return part / whole * 100
}

// NormalizeSymbol uppercases and trims a ticker for identity comparison.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbol checks a ticker is non-empty after normalization.
func ValidateSymbol(symbol string) error {
	if NormalizeSymbol(symbol) == "" {
		return NewValidationError("symbol", "symbol is required")
	}
	return nil
}

// ValidateQuantity rejects NaN, Inf, and non-positive quantities.
func ValidateQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return NewValidationError("quantity", "quantity must be a number")
	}
	if quantity <= 0 {
		return NewValidationError("quantity", "quantity must be greater than zero")
	}
	return nil
}

// ValidateAvgBuyPrice rejects NaN, Inf, and non-positive prices.
func ValidateAvgBuyPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return NewValidationError("avg_buy_price", "average buy price must be a number")
	}
	if price <= 0 {
		return NewValidationError("avg_buy_price", "average buy price must be greater than zero")
	}
	return nil
}
