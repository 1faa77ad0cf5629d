package server

import (
	"net/http"
	"strconv"
	"strings"
)

// --- Portfolio handlers ---

// handlePortfolioSnapshot handles GET /api/portfolio. The response is the
// full immutable snapshot: holdings (sorted and filtered per the query),
// summary, and allocation.
func (s *Server) handlePortfolioSnapshot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snap := s.app.Store.Snapshot()
	snap.Holdings = s.app.ViewOf(snap.Holdings, r.URL.Query().Get("filter"))

	WriteJSON(w, http.StatusOK, snap)
}

// handlePortfolioRefresh handles POST /api/portfolio/refresh.
func (s *Server) handlePortfolioRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.Store.RefreshPrices(r.Context()); err != nil {
		WriteStoreError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, s.app.Store.Snapshot())
}

type holdingRequest struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	AvgBuyPrice float64 `json:"avg_buy_price"`
}

// handleHoldingAdd handles POST /api/holdings.
func (s *Server) handleHoldingAdd(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req holdingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	holding, err := s.app.Store.AddHolding(r.Context(), req.Symbol, req.Quantity, req.AvgBuyPrice)
	if err != nil {
		WriteStoreError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, holding)
}

// routeHoldings dispatches /api/holdings/{id} by method.
func (s *Server) routeHoldings(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/holdings/", "")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handleHoldingUpdate(w, r, id)
	case http.MethodDelete:
		s.handleHoldingDelete(w, r, id)
	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

// handleHoldingUpdate handles PUT /api/holdings/{id}. Only the user-owned
// fields are writable; symbol and market data are not.
func (s *Server) handleHoldingUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Quantity    float64 `json:"quantity"`
		AvgBuyPrice float64 `json:"avg_buy_price"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	holding, err := s.app.Store.UpdateHolding(r.Context(), id, req.Quantity, req.AvgBuyPrice)
	if err != nil {
		WriteStoreError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, holding)
}

// handleHoldingDelete handles DELETE /api/holdings/{id}. Unknown ids delete
// nothing and still return 204.
func (s *Server) handleHoldingDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.app.Store.DeleteHolding(r.Context(), id); err != nil {
		WriteStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSearch handles GET /api/search?q=. This is the synchronous lookup
// used by one-off REST callers; interactive typing goes through the
// debounced searcher on the websocket stream instead.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"results": []interface{}{}})
		return
	}

	limit := s.app.Config.Clients.StockAPI.SearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	results, err := s.app.StockClient.SearchSymbols(r.Context(), query, limit)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "Search failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
	})
}
