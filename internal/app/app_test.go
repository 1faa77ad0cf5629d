package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/view"
)

type stubQuoteClient struct {
	mu    sync.Mutex
	calls int
}

func (c *stubQuoteClient) GetQuote(_ context.Context, symbol string) (*models.Quote, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return &models.Quote{Symbol: symbol, Price: 100, PreviousClose: 99}, nil
}

func (c *stubQuoteClient) SearchSymbols(_ context.Context, _ string, _ int) ([]models.SearchResult, error) {
	return nil, nil
}

func (c *stubQuoteClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestApp(client *stubQuoteClient) *App {
	logger := common.NewSilentLogger()
	return &App{
		Config:      common.NewDefaultConfig(),
		Logger:      logger,
		StockClient: client,
		Store:       portfolio.NewStore(client, portfolio.DuplicateReject, logger),
		View:        view.NewManager(logger),
		StartupTime: time.Now(),
	}
}

func TestViewOf_AppliesSettingsAndFilter(t *testing.T) {
	a := newTestApp(&stubQuoteClient{})
	a.Store.AddHolding(context.Background(), "BHP", 100, 40)
	a.Store.AddHolding(context.Background(), "AAPL", 10, 150)
	a.Store.AddHolding(context.Background(), "CSL", 5, 250)

	a.View.UpdateSettings(models.Settings{
		SortBy:        models.SortBySymbol,
		SortDirection: models.SortAsc,
		ViewMode:      models.ViewModeTable,
	})

	holdings := a.Store.Snapshot().Holdings

	sorted := a.ViewOf(holdings, "")
	if len(sorted) != 3 || sorted[0].Symbol != "AAPL" || sorted[2].Symbol != "CSL" {
		t.Errorf("unexpected sort order: %v", symbolsOf(sorted))
	}

	filtered := a.ViewOf(holdings, "bh")
	if len(filtered) != 1 || filtered[0].Symbol != "BHP" {
		t.Errorf("unexpected filter result: %v", symbolsOf(filtered))
	}

	// The snapshot's own order is untouched.
	if len(a.Store.Snapshot().Holdings) != 3 {
		t.Error("view projection must not modify the store")
	}
}

func TestRefreshTick_SkipsWhenFresh(t *testing.T) {
	client := &stubQuoteClient{}
	a := newTestApp(client)
	a.Store.AddHolding(context.Background(), "AAPL", 10, 150)
	callsAfterAdd := client.callCount()

	// Prices were just fetched by the add, so a tick has nothing to do.
	refreshTick(a)
	if client.callCount() != callsAfterAdd {
		t.Errorf("tick refetched fresh prices: %d calls", client.callCount()-callsAfterAdd)
	}
}

func TestRefreshTick_EmptyPortfolioNoFetch(t *testing.T) {
	client := &stubQuoteClient{}
	a := newTestApp(client)

	refreshTick(a)
	if client.callCount() != 0 {
		t.Errorf("tick fetched with no holdings: %d calls", client.callCount())
	}
}

func symbolsOf(holdings []models.Holding) []string {
	out := make([]string, len(holdings))
	for i, h := range holdings {
		out[i] = h.Symbol
	}
	return out
}
