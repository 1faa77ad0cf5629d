package valuation

import (
	"math"
	"reflect"
	"testing"

	"github.com/bobmcallan/folio/internal/models"
)

func sampleHoldings() []models.Holding {
	return []models.Holding{
		{ID: "1", Symbol: "AAPL", Quantity: 10, AvgBuyPrice: 150, CurrentPrice: 165, PreviousClose: 160},
		{ID: "2", Symbol: "BHP", Quantity: 100, AvgBuyPrice: 40, CurrentPrice: 38.5, PreviousClose: 39},
		{ID: "3", Symbol: "MSFT", Quantity: 2, AvgBuyPrice: 300, CurrentPrice: 310, PreviousClose: 305},
	}
}

func TestRecompute_SummaryReconciles(t *testing.T) {
	holdings, summary := Recompute(sampleHoldings())

	var wantValue, wantCost, wantDay float64
	for _, h := range holdings {
		if h.TotalValue != h.Quantity*h.CurrentPrice {
			t.Errorf("%s: TotalValue = %v, want %v", h.Symbol, h.TotalValue, h.Quantity*h.CurrentPrice)
		}
		if h.GainLoss != h.TotalValue-h.TotalCost {
			t.Errorf("%s: GainLoss = %v, want %v", h.Symbol, h.GainLoss, h.TotalValue-h.TotalCost)
		}
		wantValue += h.TotalValue
		wantCost += h.TotalCost
		wantDay += h.DayGainLoss
	}

	if summary.TotalValue != wantValue {
		t.Errorf("summary.TotalValue = %v, want Σ holding.TotalValue = %v", summary.TotalValue, wantValue)
	}
	if summary.TotalCost != wantCost {
		t.Errorf("summary.TotalCost = %v, want %v", summary.TotalCost, wantCost)
	}
	if summary.TotalGainLoss != wantValue-wantCost {
		t.Errorf("summary.TotalGainLoss = %v, want %v", summary.TotalGainLoss, wantValue-wantCost)
	}
	if summary.DayGainLoss != wantDay {
		t.Errorf("summary.DayGainLoss = %v, want %v", summary.DayGainLoss, wantDay)
	}
	if summary.HoldingsCount != 3 {
		t.Errorf("summary.HoldingsCount = %d, want 3", summary.HoldingsCount)
	}
}

func TestRecompute_EmptySet(t *testing.T) {
	holdings, summary := Recompute(nil)

	if len(holdings) != 0 {
		t.Errorf("expected no holdings, got %d", len(holdings))
	}
	if summary != (models.PortfolioSummary{}) {
		t.Errorf("expected zero summary for empty set, got %+v", summary)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	first, firstSummary := Recompute(sampleHoldings())
	second, secondSummary := Recompute(first)

	if !reflect.DeepEqual(first, second) {
		t.Error("recompute of its own output changed the holdings")
	}
	if firstSummary != secondSummary {
		t.Errorf("recompute of its own output changed the summary: %+v vs %+v", firstSummary, secondSummary)
	}
}

func TestRecompute_DoesNotMutateInput(t *testing.T) {
	input := sampleHoldings()
	original := make([]models.Holding, len(input))
	copy(original, input)

	Recompute(input)

	if !reflect.DeepEqual(input, original) {
		t.Error("Recompute mutated its input slice")
	}
}

func TestRecompute_AddScenario(t *testing.T) {
	holdings, summary := Recompute([]models.Holding{
		{Symbol: "AAPL", Quantity: 10, AvgBuyPrice: 150, CurrentPrice: 165, PreviousClose: 160},
	})

	h := holdings[0]
	if h.TotalCost != 1500 || h.TotalValue != 1650 || h.GainLoss != 150 {
		t.Errorf("unexpected derived values: %+v", h)
	}
	if h.GainLossPct != 10.0 {
		t.Errorf("GainLossPct = %v, want 10.0", h.GainLossPct)
	}
	if h.DayGainLoss != 50 {
		t.Errorf("DayGainLoss = %v, want 50", h.DayGainLoss)
	}
	if math.Abs(h.DayGainLossPct-3.125) > 1e-9 {
		t.Errorf("DayGainLossPct = %v, want 3.125", h.DayGainLossPct)
	}

	// Portfolio of one: summary mirrors the holding.
	if summary.TotalValue != 1650 || summary.DayGainLoss != 50 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if math.Abs(summary.DayGainLossPct-3.125) > 1e-9 {
		t.Errorf("summary.DayGainLossPct = %v, want 3.125", summary.DayGainLossPct)
	}
}

func TestRecompute_ZeroCostGuard(t *testing.T) {
	// A pending-price holding carries zero prices; nothing may go NaN.
	_, summary := Recompute([]models.Holding{
		{Symbol: "NEW", Quantity: 5, AvgBuyPrice: 10, CurrentPrice: 0, PreviousClose: 0},
	})

	for name, v := range map[string]float64{
		"TotalGainLossPct": summary.TotalGainLossPct,
		"DayGainLossPct":   summary.DayGainLossPct,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("summary.%s is not finite: %v", name, v)
		}
	}
}
