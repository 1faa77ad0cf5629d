package models

// SortField selects the holdings sort key
type SortField string

const (
	SortBySymbol      SortField = "symbol"
	SortByValue       SortField = "value"
	SortByGainLoss    SortField = "gainLoss"
	SortByGainLossPct SortField = "gainLossPercent"
	SortByDayGainLoss SortField = "dayGainLoss"
)

// ValidSortField reports whether f is one of the supported sort keys.
func ValidSortField(f SortField) bool {
	switch f {
	case SortBySymbol, SortByValue, SortByGainLoss, SortByGainLossPct, SortByDayGainLoss:
		return true
	}
	return false
}

// SortDirection selects ascending or descending order
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ViewMode selects the holdings presentation layout
type ViewMode string

const (
	ViewModeTable ViewMode = "table"
	ViewModeCard  ViewMode = "card"
)

// Settings are pure UI preferences; they have no effect on stored data.
type Settings struct {
	SortBy        SortField     `json:"sort_by"`
	SortDirection SortDirection `json:"sort_direction"`
	ViewMode      ViewMode      `json:"view_mode"`
}

// DefaultSettings returns the initial view preferences.
func DefaultSettings() Settings {
	return Settings{
		SortBy:        SortByValue,
		SortDirection: SortDesc,
		ViewMode:      ViewModeTable,
	}
}

// AddPrefill carries symbol data from an external "quick add" action into the
// add dialog.
type AddPrefill struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Exchange string `json:"exchange,omitempty"`
}

// ModalState tracks which holding dialog is open and its pre-fill data. Close
// must fully reset it so stale prefill never leaks into the next open.
type ModalState struct {
	IsAddOpen        bool        `json:"is_add_open"`
	IsEditOpen       bool        `json:"is_edit_open"`
	EditingHoldingID string      `json:"editing_holding_id,omitempty"`
	AddPrefill       *AddPrefill `json:"add_prefill,omitempty"`
}
