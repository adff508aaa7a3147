package schedule

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// document is the JSON envelope the schedule files use.
type document struct {
	Schedule []Entry `json:"schedule"`
}

// LoadJSON reads a schedule from a {"schedule": [...]} document. Every entry
// is normalized and validated; the first invalid entry aborts the load.
func LoadJSON(r io.Reader) ([]Entry, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode schedule json: %w", err)
	}
	if doc.Schedule == nil {
		return nil, errors.New(`schedule json must contain a "schedule" key`)
	}

	return Sanitize(doc.Schedule)
}

// LoadCSV reads a schedule from rows with a day,time,subject,location header.
// The location column is optional.
func LoadCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"day", "time", "subject"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv header missing %q column", required)
		}
	}

	var entries []Entry
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row++

		e := Entry{
			Day:     field(record, cols, "day"),
			Time:    field(record, cols, "time"),
			Subject: field(record, cols, "subject"),
		}
		if _, ok := cols["location"]; ok {
			e.Location = field(record, cols, "location")
		}

		e = e.normalize()
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("schedule row %d: %w", row, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
