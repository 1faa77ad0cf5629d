package valuation

import (
	"hash/fnv"
	"sort"

	"github.com/bobmcallan/folio/internal/models"
)

// chartPalette is the fixed set of allocation colors. Assignment is hashed
// per symbol, not positional, so a symbol keeps its color across sessions
// and across edits to the rest of the portfolio.
var chartPalette = []string{
	"#2563eb", // blue
	"#16a34a", // green
	"#d97706", // amber
	"#dc2626", // red
	"#7c3aed", // violet
	"#0891b2", // cyan
	"#db2777", // pink
	"#65a30d", // lime
	"#ea580c", // orange
	"#4f46e5", // indigo
	"#0d9488", // teal
	"#9333ea", // purple
}

// ColorForSymbol returns the deterministic chart color for a symbol.
func ColorForSymbol(symbol string) string {
	h := fnv.New32a()
	h.Write([]byte(models.NormalizeSymbol(symbol)))
	return chartPalette[h.Sum32()%uint32(len(chartPalette))]
}

// ComputeAllocation derives each holding's percentage share of total market
// value, sorted descending by percentage with ties broken by symbol ascending
// so rendering order is deterministic across re-renders.
//
// An empty portfolio (or one with zero total value) yields an empty list —
// never entries with NaN percentages.
func ComputeAllocation(holdings []models.Holding) []models.AllocationEntry {
	totalValue := 0.0
	for i := range holdings {
		totalValue += holdings[i].Quantity * holdings[i].CurrentPrice
	}

	if totalValue <= 0 {
		return []models.AllocationEntry{}
	}

	entries := make([]models.AllocationEntry, 0, len(holdings))
	for i := range holdings {
		value := holdings[i].Quantity * holdings[i].CurrentPrice
		entries = append(entries, models.AllocationEntry{
			Symbol:     holdings[i].Symbol,
			Name:       holdings[i].Name,
			Value:      value,
			Percentage: value / totalValue * 100,
			Color:      ColorForSymbol(holdings[i].Symbol),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].Symbol < entries[j].Symbol
	})

	return entries
}
