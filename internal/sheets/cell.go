package sheets

import (
	"fmt"
	"strings"
)

// ColumnName converts a 0-based column index to its spreadsheet letter
// name: 0 -> "A", 25 -> "Z", 26 -> "AA".
func ColumnName(index int) string {
	name := ""
	for index >= 0 {
		name = string(rune('A'+index%26)) + name
		index = index/26 - 1
	}
	return name
}

// QuoteSheetTitle wraps a tab title in single quotes for use in an A1
// range, doubling any embedded quotes.
func QuoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// CellRef builds the A1 range of a single cell on the named tab.
// col is 0-based, row is the 1-based sheet row.
func CellRef(sheetTitle string, col, row int) string {
	return fmt.Sprintf("%s!%s%d", QuoteSheetTitle(sheetTitle), ColumnName(col), row)
}
