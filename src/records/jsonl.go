package records

import (
	"bytes"

	"github.com/tidwall/gjson"

	"github.com/iafilius/OrderLogCharts/src/logging"
)

// jsonValue converts one gjson value into a Value. Nested objects and arrays are kept
// as their raw JSON text.
func jsonValue(v gjson.Result) Value {
	switch v.Type {
	case gjson.Null:
		return Value{Kind: KindNull, Raw: "null"}
	case gjson.Number:
		return Number(v.Float(), v.Raw)
	case gjson.String:
		s := v.String()
		if t, ok := ParseTime(s); ok {
			return Timestamp(t, s)
		}
		return String(s)
	default: // true, false, objects, arrays
		return Value{Kind: KindJSON, Raw: v.Raw}
	}
}

// parseJSONLine parses a single line into a Record; reason is non-empty when the
// line is not a JSON object.
func parseJSONLine(line []byte) (rec Record, reason string) {
	if !gjson.ValidBytes(line) {
		return Record{}, "invalid JSON"
	}
	res := gjson.ParseBytes(line)
	if !res.IsObject() {
		return Record{}, "not a JSON object"
	}
	var fields []Field
	res.ForEach(func(key, value gjson.Result) bool {
		fields = append(fields, Field{Name: key.String(), Value: jsonValue(value)})
		return true
	})
	return NewRecord(fields...), ""
}

// loadJSONL parses each non-blank line as an independent JSON object, keeping key
// order. In tolerant mode malformed lines are skipped and counted.
func loadJSONL(ds *Dataset, data []byte, mode Mode) error {
	seen := map[string]bool{}
	lineNo := 0
	for len(data) > 0 {
		lineNo++
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		rec, reason := parseJSONLine(line)
		if reason != "" {
			if mode == Tolerant {
				ds.Skipped++
				logging.Debugf("[load] %s line %d skipped: %s", ds.Path, lineNo, reason)
				continue
			}
			return newLoadError(ds.Path, lineNo, reason, ErrMalformed)
		}
		ds.addFields(rec.Names(), seen)
		ds.Records = append(ds.Records, rec)
	}
	return nil
}
