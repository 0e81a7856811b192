package sheets

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidRef marks input that is neither a spreadsheet ID nor a
// spreadsheet URL.
var ErrInvalidRef = errors.New("not a spreadsheet ID or URL")

var (
	urlIDPattern  = regexp.MustCompile(`/spreadsheets(?:/u/\d+)?/d/([a-zA-Z0-9_-]+)`)
	bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{20,}$`)
)

// ParseSpreadsheetRef extracts a spreadsheet ID from user input, which may
// be the bare ID or any Google Sheets URL containing /spreadsheets/d/<id>.
func ParseSpreadsheetRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidRef
	}
	if strings.Contains(ref, "/") {
		if m := urlIDPattern.FindStringSubmatch(ref); m != nil {
			return m[1], nil
		}
		return "", ErrInvalidRef
	}
	if bareIDPattern.MatchString(ref) {
		return ref, nil
	}
	return "", ErrInvalidRef
}
