package valuation

import (
	"sort"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// sortKey extracts the numeric sort key for a field. Symbol sorting is
// handled separately as a lexicographic compare.
func sortKey(h *models.Holding, field models.SortField) float64 {
	switch field {
	case models.SortByValue:
		return h.TotalValue
	case models.SortByGainLoss:
		return h.GainLoss
	case models.SortByGainLossPct:
		return h.GainLossPct
	case models.SortByDayGainLoss:
		return h.DayGainLoss
	default:
		return 0
	}
}

// SortHoldings returns a sorted copy of holdings. The input is never
// mutated. Ties on the sort key are broken by symbol ascending regardless of
// direction, so the order is stable across repeated calls.
func SortHoldings(holdings []models.Holding, field models.SortField, direction models.SortDirection) []models.Holding {
	out := make([]models.Holding, len(holdings))
	copy(out, holdings)

	asc := direction != models.SortDesc

	sort.SliceStable(out, func(i, j int) bool {
		if field == models.SortBySymbol {
			if out[i].Symbol != out[j].Symbol {
				if asc {
					return out[i].Symbol < out[j].Symbol
				}
				return out[i].Symbol > out[j].Symbol
			}
			return false
		}

		ki, kj := sortKey(&out[i], field), sortKey(&out[j], field)
		if ki != kj {
			if asc {
				return ki < kj
			}
			return ki > kj
		}
		return out[i].Symbol < out[j].Symbol
	})

	return out
}

// FilterHoldings returns the holdings whose symbol or name contains term,
// case-insensitively. A blank term returns a copy of the full collection.
// This is the in-portfolio filter, distinct from the external symbol search.
func FilterHoldings(holdings []models.Holding, term string) []models.Holding {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		out := make([]models.Holding, len(holdings))
		copy(out, holdings)
		return out
	}

	out := make([]models.Holding, 0, len(holdings))
	for i := range holdings {
		haystack := strings.ToLower(holdings[i].Symbol + " " + holdings[i].Name)
		if strings.Contains(haystack, term) {
			out = append(out, holdings[i])
		}
	}
	return out
}
