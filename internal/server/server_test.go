package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/clients/stockapi"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/view"
)

// upstreamStub fakes the quote provider behind the stock API client.
type upstreamStub struct {
	mu     sync.Mutex
	prices map[string][2]float64 // symbol -> price, previous close
	fail   map[string]bool
}

func newUpstreamStub() *upstreamStub {
	return &upstreamStub{
		prices: map[string][2]float64{
			"AAPL": {165, 160},
			"BHP":  {38.5, 39},
		},
		fail: map[string]bool{},
	}
}

func (u *upstreamStub) setPrice(symbol string, price, prevClose float64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.prices[symbol] = [2]float64{price, prevClose}
}

func (u *upstreamStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		if strings.HasPrefix(r.URL.Path, "/api/stocks/search") {
			q := strings.ToUpper(r.URL.Query().Get("q"))
			matches := []map[string]string{}
			for symbol := range u.prices {
				if strings.Contains(symbol, q) {
					matches = append(matches, map[string]string{
						"symbol": symbol, "shortName": symbol + " Ltd", "exchange": "TEST",
					})
				}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": matches})
			return
		}

		// /api/stock/{symbol}/quote
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		symbol := parts[2]
		if u.fail[symbol] {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		price, ok := u.prices[symbol]
		if !ok {
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "unknown symbol"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"symbol":                     symbol,
				"regularMarketPrice":         price[0],
				"regularMarketPreviousClose": price[1],
			},
		})
	})
}

// newTestServer wires a full application against a stubbed quote provider.
func newTestServer(t *testing.T) (*Server, *upstreamStub) {
	t.Helper()

	upstream := newUpstreamStub()
	ts := httptest.NewServer(upstream.handler())
	t.Cleanup(ts.Close)

	config := common.NewDefaultConfig()
	config.Clients.StockAPI.BaseURL = ts.URL
	config.Clients.StockAPI.RateLimit = 1000

	logger := common.NewSilentLogger()
	client := stockapi.NewClient(
		stockapi.WithBaseURL(ts.URL),
		stockapi.WithLogger(logger),
		stockapi.WithRateLimit(1000),
	)

	a := &app.App{
		Config:      config,
		Logger:      logger,
		StockClient: client,
		Store:       portfolio.NewStore(client, portfolio.DuplicateReject, logger),
		View:        view.NewManager(logger),
		StartupTime: time.Now(),
	}

	return NewServer(a), upstream
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func addHolding(t *testing.T, s *Server, symbol string, quantity, price float64) string {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/api/holdings", map[string]interface{}{
		"symbol": symbol, "quantity": quantity, "avg_buy_price": price,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add %s: status %d body %s", symbol, rec.Code, rec.Body.String())
	}
	var h struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &h)
	return h.ID
}

func holdingsPath(id string) string {
	return fmt.Sprintf("/api/holdings/%s", id)
}
