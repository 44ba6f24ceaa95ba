// Package records loads tabular log files (CSV, JSON lines, XLSX, optionally
// compressed) into ordered in-memory records and writes them back.
package records

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a field value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindTime
	// KindJSON holds a JSON literal that is not a scalar string or number
	// (true, false, nested objects and arrays); Raw is the literal text.
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindJSON:
		return "json"
	default:
		return "null"
	}
}

// Value is a single field value. Raw always holds the source text so a record can
// be written back without reformatting numbers or timestamps.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Time time.Time
	Raw  string
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Number builds a numeric value; raw is the source text (formatted from n if empty).
func Number(n float64, raw string) Value {
	if raw == "" {
		raw = strconv.FormatFloat(n, 'f', -1, 64)
	}
	return Value{Kind: KindNumber, Num: n, Raw: raw}
}

// String builds a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s, Raw: s} }

// Timestamp builds a time value keeping the original text.
func Timestamp(t time.Time, raw string) Value {
	return Value{Kind: KindTime, Time: t, Str: raw, Raw: raw}
}

// ParseValue classifies a text cell: number where convertible, timestamp when it
// matches one of the known layouts, otherwise string. Empty cells are null.
func ParseValue(s string) Value {
	ts := strings.TrimSpace(s)
	if ts == "" {
		return Value{Kind: KindNull, Raw: s}
	}
	if n, err := strconv.ParseFloat(ts, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return Value{Kind: KindNumber, Num: n, Raw: s}
	}
	if t, ok := ParseTime(ts); ok {
		return Value{Kind: KindTime, Time: t, Str: s, Raw: s}
	}
	return String(s)
}

// Float returns the numeric content of v. Numeric strings are accepted so that
// quoted JSON numbers still feed numeric series.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Text returns the value as text (the raw source form).
func (v Value) Text() string {
	if v.Kind == KindString {
		return v.Str
	}
	return v.Raw
}

// IsNull reports whether the value is absent/empty.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Field is one named value of a record.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered mapping from field name to value, in source order.
type Record struct {
	fields []Field
}

// NewRecord builds a record from fields in the given order.
func NewRecord(fields ...Field) Record {
	return Record{fields: fields}
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Fields returns the fields in order. The slice must not be modified.
func (r Record) Fields() []Field { return r.fields }

// Names returns the field names in order.
func (r Record) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// Get returns the value for name. Null values count as absent.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			if f.Value.IsNull() {
				return f.Value, false
			}
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value of name, appending the field when not present.
func (r *Record) Set(name string, v Value) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = v
			return
		}
	}
	r.fields = append(r.fields, Field{Name: name, Value: v})
}

// Dataset is the result of loading one file.
type Dataset struct {
	Path    string
	Format  Format
	Fields  []string // field names in first-seen order
	Records []Record
	Skipped int // malformed lines/rows skipped in tolerant mode
}

// Len returns the number of loaded records.
func (d *Dataset) Len() int { return len(d.Records) }

// addFields merges names into Fields keeping first-seen order.
func (d *Dataset) addFields(names []string, seen map[string]bool) {
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			d.Fields = append(d.Fields, n)
		}
	}
}
