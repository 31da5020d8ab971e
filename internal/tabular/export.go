package tabular

import (
	"encoding/csv"
	"io"
)

// Column maps one CSV column to a record field.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// WriteCSV writes a header row followed by one row per item. Fields holding
// quotes, commas or line breaks are quoted with embedded quotes doubled.
func WriteCSV[T any](w io.Writer, items []T, cols []Column[T]) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	row := make([]string, len(cols))
	for _, it := range items {
		for i, c := range cols {
			row[i] = c.Value(it)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
