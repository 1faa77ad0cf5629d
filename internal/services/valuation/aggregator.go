// Package valuation provides the pure computation layer of the engine:
// derived-field recomputation, portfolio aggregation, allocation weights,
// and sort/filter projections. Nothing here performs I/O or suspends; these
// functions run on every render path.
package valuation

import "github.com/bobmcallan/folio/internal/models"

// Recompute re-derives every holding's computed fields and folds them into a
// portfolio summary. It is the single place the summary formulas live; the
// rest of the system never recomputes valuation ad hoc.
//
// Deterministic and idempotent: the same input always yields byte-identical
// output, and the returned slice is a fresh copy so callers can hand it out
// as an immutable snapshot.
func Recompute(holdings []models.Holding) ([]models.Holding, models.PortfolioSummary) {
	out := make([]models.Holding, len(holdings))
	copy(out, holdings)

	summary := models.PortfolioSummary{HoldingsCount: len(out)}

	for i := range out {
		out[i].DeriveFields()
		summary.TotalValue += out[i].TotalValue
		summary.TotalCost += out[i].TotalCost
		summary.DayGainLoss += out[i].DayGainLoss
	}

	summary.TotalGainLoss = summary.TotalValue - summary.TotalCost
	if summary.TotalCost != 0 {
		summary.TotalGainLossPct = summary.TotalGainLoss / summary.TotalCost * 100
	}

	// Day change is measured against the portfolio's value at previous close.
	openValue := summary.TotalValue - summary.DayGainLoss
	if openValue != 0 {
		summary.DayGainLossPct = summary.DayGainLoss / openValue * 100
	}

	return out, summary
}
