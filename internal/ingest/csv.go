package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/reservation_insight/backend/internal/models"
)

type Table struct {
	Header []string             `json:"header"`
	Rows   []models.RawEventRow `json:"rows"`
	Errors []string             `json:"errors,omitempty"`
}

// Parse reads a comma separated event export. The first record is the header.
// Parsing is tolerant: bad records are reported in Errors and skipped, and
// whatever rows were read are returned.
func Parse(r io.Reader) Table {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var table Table
	headers, err := readHeader(reader)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			table.Errors = append(table.Errors, fmt.Sprintf("failed to read header: %v", err))
		}
		return table
	}
	table.Header = headers

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			table.Errors = append(table.Errors, err.Error())
			continue
		}
		if blankRecord(rec) {
			continue
		}
		if len(rec) > len(headers) {
			line, _ := reader.FieldPos(0)
			table.Errors = append(table.Errors, fmt.Sprintf("line %d: %d extra fields dropped", line, len(rec)-len(headers)))
		}
		table.Rows = append(table.Rows, toRow(headers, rec))
	}
	return table
}

func readHeader(reader *csv.Reader) ([]string, error) {
	for {
		rec, err := reader.Read()
		if err != nil {
			return nil, err
		}
		if blankRecord(rec) {
			continue
		}
		out := make([]string, len(rec))
		copy(out, rec)
		out[0] = strings.TrimPrefix(out[0], "\ufeff")
		return out, nil
	}
}

func toRow(headers []string, rec []string) models.RawEventRow {
	row := make(models.RawEventRow, len(headers))
	for i, h := range headers {
		if i >= len(rec) {
			break
		}
		row[h] = rec[i]
	}
	return row
}

// blankRecord reports lines that carry nothing but whitespace. encoding/csv
// already drops truly empty lines.
func blankRecord(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}
