package model

import "time"

// CellUpdate records a single successful cell patch for the audit history.
type CellUpdate struct {
	ID            string    `json:"id"`
	SpreadsheetID string    `json:"spreadsheet_id"`
	Device        string    `json:"device"`
	Column        string    `json:"column"`
	Cell          string    `json:"cell"`
	OldValue      string    `json:"old_value"`
	NewValue      string    `json:"new_value"`
	CreatedAt     time.Time `json:"created_at"`
}
