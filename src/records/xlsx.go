package records

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/iafilius/OrderLogCharts/src/logging"
)

// loadXLSX reads the first worksheet: first row is the header, each later row one
// record. Rows shorter than the header are padded with nulls (excelize drops
// trailing empty cells); rows longer than the header are malformed.
func loadXLSX(ds *Dataset, data []byte, mode Mode) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return newLoadError(ds.Path, 0, "cannot open workbook", errors.Mark(err, ErrMalformed))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return newLoadError(ds.Path, 0, "workbook has no sheets", ErrEmpty)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return newLoadError(ds.Path, 0, "cannot read sheet "+sheets[0], errors.Mark(err, ErrMalformed))
	}
	if len(rows) == 0 {
		return newLoadError(ds.Path, 0, "sheet "+sheets[0]+" is empty", ErrEmpty)
	}
	header := normalizeHeader(rows[0])
	ds.addFields(header, map[string]bool{})
	for i, row := range rows[1:] {
		line := i + 2
		if len(row) == 0 {
			continue
		}
		if len(row) > len(header) {
			if mode == Tolerant {
				ds.Skipped++
				logging.Debugf("[load] %s row %d skipped: %d cells, header has %d", ds.Path, line, len(row), len(header))
				continue
			}
			return newLoadError(ds.Path, line, "row wider than header", ErrMalformed)
		}
		ds.Records = append(ds.Records, rowRecord(header, row))
	}
	return nil
}
