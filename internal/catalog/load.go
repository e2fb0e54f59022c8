package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"tickerize/internal"
)

// LoadReferenceCSV reads a reference list from a CSV file with a header row.
// nameColumn/tickerColumn select the columns holding the display name and
// the ticker code.
func LoadReferenceCSV(path, nameColumn, tickerColumn string) ([]internal.ReferenceEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadReferenceCSV(f, nameColumn, tickerColumn)
}

// ReadReferenceCSV parses reference entries from CSV content, preserving row
// order. Rows with a blank name or ticker are skipped.
func ReadReferenceCSV(r io.Reader, nameColumn, tickerColumn string) ([]internal.ReferenceEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reference csv is empty")
	}

	nameIdx, tickerIdx := -1, -1
	for i, h := range records[0] {
		switch strings.TrimSpace(h) {
		case nameColumn:
			nameIdx = i
		case tickerColumn:
			tickerIdx = i
		}
	}
	if nameIdx < 0 || tickerIdx < 0 {
		return nil, fmt.Errorf("reference csv missing columns %q and/or %q", nameColumn, tickerColumn)
	}

	var out []internal.ReferenceEntry
	for _, record := range records[1:] {
		if nameIdx >= len(record) || tickerIdx >= len(record) {
			continue
		}
		name := strings.TrimSpace(record[nameIdx])
		ticker := strings.TrimSpace(record[tickerIdx])
		if name == "" || ticker == "" {
			continue
		}
		out = append(out, internal.ReferenceEntry{Name: name, Ticker: ticker})
	}
	return out, nil
}
