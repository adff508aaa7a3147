package schedule

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// ExportJSON writes the schedule back in the same envelope LoadJSON accepts.
func ExportJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(document{Schedule: entries}); err != nil {
		return fmt.Errorf("encode schedule json: %w", err)
	}
	return nil
}

// ExportCSV writes the schedule as day,time,subject,location rows.
func ExportCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"day", "time", "subject", "location"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.Day, e.Time, e.Subject, e.Location}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
