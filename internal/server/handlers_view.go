package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// --- View state handlers ---

// handleSettings handles GET and PUT /api/settings.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, s.app.View.Settings())
	case http.MethodPut:
		var req models.Settings
		if !DecodeJSON(w, r, &req) {
			return
		}
		settings, err := s.app.View.UpdateSettings(req)
		if err != nil {
			WriteStoreError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, settings)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// handleModal handles GET /api/modal and DELETE /api/modal (close).
func (s *Server) handleModal(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, s.app.View.Modal())
	case http.MethodDelete:
		s.app.View.CloseModal()
		WriteJSON(w, http.StatusOK, s.app.View.Modal())
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// handleModalOpenAdd handles POST /api/modal/add. An optional body carries
// prefill data from a search result.
func (s *Server) handleModalOpenAdd(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var prefill *models.AddPrefill
	if r.Body != nil && r.ContentLength != 0 {
		var req models.AddPrefill
		if !DecodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Symbol) != "" {
			prefill = &req
		}
	}

	s.app.View.OpenAdd(prefill)
	WriteJSON(w, http.StatusOK, s.app.View.Modal())
}

// handleModalOpenEdit handles POST /api/modal/edit/{id}. The holding must
// exist; opening an editor on a deleted holding is rejected.
func (s *Server) handleModalOpenEdit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	id := PathParam(r, "/api/modal/edit/", "")
	if id == "" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	found := false
	for _, h := range s.app.Store.Snapshot().Holdings {
		if h.ID == id {
			found = true
			break
		}
	}
	if !found {
		WriteError(w, http.StatusNotFound, "Holding not found")
		return
	}

	s.app.View.OpenEdit(id)
	WriteJSON(w, http.StatusOK, s.app.View.Modal())
}
