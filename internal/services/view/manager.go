package view

import (
	"sync"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Manager holds the UI-facing state that is not derived from holdings:
// sort/view preferences and the add/edit dialog state. All access is
// serialized behind one mutex; reads return copies.
type Manager struct {
	logger *common.Logger

	mu       sync.Mutex
	settings models.Settings
	modal    models.ModalState
}

// NewManager returns a manager initialized with default preferences and no
// open dialog.
func NewManager(logger *common.Logger) *Manager {
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	l := logger.With().Str("service", "view").Logger()
	return &Manager{
		logger:   &common.Logger{Logger: l},
		settings: models.DefaultSettings(),
	}
}

// Settings returns the current view preferences.
func (m *Manager) Settings() models.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// UpdateSettings replaces the view preferences. Unknown sort fields,
// directions, or view modes are rejected and the previous settings kept.
// Returns the settings now in effect.
func (m *Manager) UpdateSettings(s models.Settings) (models.Settings, error) {
	if !models.ValidSortField(s.SortBy) {
		return m.Settings(), models.NewValidationError("sort_by", "unknown sort field")
	}
	if s.SortDirection != models.SortAsc && s.SortDirection != models.SortDesc {
		return m.Settings(), models.NewValidationError("sort_direction", "must be asc or desc")
	}
	if s.ViewMode != models.ViewModeTable && s.ViewMode != models.ViewModeCard {
		return m.Settings(), models.NewValidationError("view_mode", "must be table or card")
	}

	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()

	m.logger.Debug().
		Str("sort_by", string(s.SortBy)).
		Str("direction", string(s.SortDirection)).
		Str("view_mode", string(s.ViewMode)).
		Msg("View settings updated")

	return s, nil
}

// Modal returns the current dialog state.
func (m *Manager) Modal() models.ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.modal
	if m.modal.AddPrefill != nil {
		prefill := *m.modal.AddPrefill
		out.AddPrefill = &prefill
	}
	return out
}

// OpenAdd opens the add dialog, optionally pre-filled from a search result.
// Opening it closes any edit dialog in progress.
func (m *Manager) OpenAdd(prefill *models.AddPrefill) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modal = models.ModalState{IsAddOpen: true}
	if prefill != nil {
		p := *prefill
		p.Symbol = models.NormalizeSymbol(p.Symbol)
		m.modal.AddPrefill = &p
	}
}

// OpenEdit opens the edit dialog for one holding. Opening it closes any add
// dialog in progress.
func (m *Manager) OpenEdit(holdingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modal = models.ModalState{
		IsEditOpen:       true,
		EditingHoldingID: holdingID,
	}
}

// CloseModal resets the dialog state completely. Prefill and editing id are
// cleared together with the open flags so nothing leaks into the next open.
func (m *Manager) CloseModal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modal = models.ModalState{}
}

var _ interfaces.ViewState = (*Manager)(nil)
