package model

// Device represents one data row of the linked spreadsheet, keyed by the
// value of its "Device" column.
type Device struct {
	// Name is the trimmed value of the Device cell.
	Name string `json:"device"`
	// Row is the 1-based sheet row the device lives on (header is row 1).
	Row int `json:"row"`
	// Status is the raw value of the Completed cell.
	Status string `json:"status"`
	// Completed is derived from Status, case-insensitively.
	Completed bool   `json:"completed"`
	Comment   string `json:"comment"`
	// Fields carries any extra columns beyond Device/Completed/Comment,
	// keyed by header name.
	Fields map[string]string `json:"fields,omitempty"`
}
