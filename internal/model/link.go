package model

import "time"

// SheetLink describes the currently linked spreadsheet.
// SpreadsheetID and LinkedAt are persisted in the link file; Title and
// SheetTitle are discovered live from the Sheets API and never stored,
// so renaming the spreadsheet or its first tab cannot break the link.
type SheetLink struct {
	SpreadsheetID string    `json:"spreadsheet_id"`
	Title         string    `json:"title,omitempty"`
	SheetTitle    string    `json:"sheet_title,omitempty"`
	LinkedAt      time.Time `json:"linked_at"`
}
