package records

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/iafilius/OrderLogCharts/src/logging"
)

// normalizeHeader trims names, strips a UTF-8 BOM and names empty columns column_N.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		out[i] = h
	}
	return out
}

// rowRecord pairs header names with parsed cells. Missing trailing cells are null.
func rowRecord(header, row []string) Record {
	fields := make([]Field, len(header))
	for i, name := range header {
		v := Null()
		if i < len(row) {
			v = ParseValue(row[i])
		}
		fields[i] = Field{Name: name, Value: v}
	}
	return NewRecord(fields...)
}

func loadCSV(ds *Dataset, data []byte, mode Mode) error {
	r := csv.NewReader(bytes.NewReader(data))
	if mode == Tolerant {
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
	}
	header, err := r.Read()
	if err != nil {
		return newLoadError(ds.Path, 1, "cannot read csv header", errors.Mark(err, ErrMalformed))
	}
	header = normalizeHeader(header)
	ds.addFields(header, map[string]bool{})

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			if mode == Tolerant {
				ds.Skipped++
				logging.Debugf("[load] %s line %d skipped: %v", ds.Path, line, err)
				continue
			}
			return newLoadError(ds.Path, line, "malformed csv row", errors.Mark(err, ErrMalformed))
		}
		line, _ := r.FieldPos(0)
		if len(row) != len(header) {
			// only reachable in tolerant mode; strict mode gets csv.ErrFieldCount above
			ds.Skipped++
			logging.Debugf("[load] %s line %d skipped: %d fields, header has %d", ds.Path, line, len(row), len(header))
			continue
		}
		ds.Records = append(ds.Records, rowRecord(header, row))
	}
	return nil
}
