// Package a1 converts between 0-based column indexes and spreadsheet
// A1 notation.
package a1

import (
	"fmt"
	"strings"
)

// ColumnLetter converts a 0-based column index to its A1 letters:
// 0 -> "A", 25 -> "Z", 26 -> "AA".
func ColumnLetter(index int) string {
	if index < 0 {
		return ""
	}

	var b []byte
	for index >= 0 {
		b = append([]byte{byte('A' + index%26)}, b...)
		index = index/26 - 1
	}
	return string(b)
}

// ColumnIndex converts A1 column letters to a 0-based index:
// "A" -> 0, "Z" -> 25, "AA" -> 26. Returns -1 for invalid input.
func ColumnIndex(letters string) int {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	if letters == "" {
		return -1
	}

	index := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			return -1
		}
		index = index*26 + int(c-'A') + 1
	}
	return index - 1
}

// Cell builds an A1 cell reference from a 0-based column index and a
// 1-based row number: (1, 2) -> "B2".
func Cell(column, row int) string {
	return fmt.Sprintf("%s%d", ColumnLetter(column), row)
}

// ColumnRange builds an A1 range covering whole columns on a sheet:
// ("Leads", 1, 2) -> "Leads!B:C".
func ColumnRange(sheet string, from, to int) string {
	return fmt.Sprintf("%s!%s:%s", sheet, ColumnLetter(from), ColumnLetter(to))
}
