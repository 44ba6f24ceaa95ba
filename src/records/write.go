package records

import (
	"bufio"
	"encoding/csv"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/ohler55/ojg/oj"
)

// Write serialises ds in the given format using the raw source text of every value.
// CSV columns follow ds.Fields; JSONL keys follow each record's own field order.
func Write(w io.Writer, ds *Dataset, format Format) error {
	switch format {
	case FormatJSONL:
		return writeJSONL(w, ds.Records)
	case FormatCSV:
		return writeCSV(w, ds.Fields, ds.Records)
	}
	return errors.Newf("cannot write format %s", format)
}

func writeCSV(w io.Writer, header []string, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	row := make([]string, len(header))
	for i, rec := range recs {
		for j, name := range header {
			row[j] = ""
			if v, ok := rec.Get(name); ok {
				row[j] = v.Text()
			}
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write csv record %d", i+1)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// jsonLiteral renders v as a JSON value.
func jsonLiteral(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindNumber, KindJSON:
		return v.Raw
	default:
		return oj.JSON(v.Text())
	}
}

// AppendJSON appends rec as a single-line JSON object to dst.
func AppendJSON(dst []byte, rec Record) []byte {
	dst = append(dst, '{')
	for i, f := range rec.Fields() {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, oj.JSON(f.Name)...)
		dst = append(dst, ':')
		dst = append(dst, jsonLiteral(f.Value)...)
	}
	return append(dst, '}')
}

func writeJSONL(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	var line []byte
	for i, rec := range recs {
		line = AppendJSON(line[:0], rec)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return errors.Wrapf(err, "write jsonl record %d", i+1)
		}
	}
	return errors.Wrap(bw.Flush(), "flush jsonl")
}
