package records

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Format is the on-disk record layout.
type Format int

const (
	FormatAuto Format = iota
	FormatCSV
	FormatJSONL
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSONL:
		return "jsonl"
	case FormatXLSX:
		return "xlsx"
	default:
		return "auto"
	}
}

// ParseFormat maps a flag/config name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "csv":
		return FormatCSV, nil
	case "jsonl", "ndjson", "json":
		return FormatJSONL, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return FormatAuto, errors.Newf("unknown format %q (want auto, csv, jsonl or xlsx)", s)
}

// UnmarshalYAML lets job profiles spell formats by name.
func (f *Format) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Mode selects how malformed or incomplete input is handled.
type Mode int

const (
	// Strict fails on the first malformed line or missing field.
	Strict Mode = iota
	// Tolerant skips malformed lines/incomplete records and logs how many were skipped.
	Tolerant
)

func (m Mode) String() string {
	if m == Tolerant {
		return "tolerant"
	}
	return "strict"
}

// ParseMode maps a name to a Mode; empty means Strict.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "tolerant", "lenient":
		return Tolerant, nil
	}
	return Strict, errors.Newf("unknown mode %q (want strict or tolerant)", s)
}

// UnmarshalYAML lets job profiles spell modes by name.
func (m *Mode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// compressionExtensions maps compression extensions to their Compression
var compressionExtensions = map[string]Compression{
	".gz":  CompressionGzip,
	".bz2": CompressionBzip2,
	".xz":  CompressionXZ,
	".sz":  CompressionSnappy,
}

// StripExtensions removes a compression extension (if any) and the data extension,
// e.g. "run/orders.jsonl.gz" -> "run/orders".
func StripExtensions(path string) string {
	lower := strings.ToLower(path)
	if c, ok := compressionExtensions[filepath.Ext(lower)]; ok && c != CompressionNone {
		path = path[:len(path)-len(filepath.Ext(path))]
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// DetectFormat determines the record format from the extension, ignoring a
// trailing compression extension. Unknown extensions default to CSV.
func DetectFormat(path string) Format {
	lower := strings.ToLower(path)
	if _, ok := compressionExtensions[filepath.Ext(lower)]; ok {
		lower = strings.TrimSuffix(lower, filepath.Ext(lower))
	}
	switch filepath.Ext(lower) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatCSV
	}
}
