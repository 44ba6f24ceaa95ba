// Package fixlog extracts order events and round-trip latencies from FIX gateway
// logs into the CSV and JSON lines files the charting pipeline reads.
package fixlog

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/iafilius/OrderLogCharts/src/records"
)

var (
	// log lines start with "Dnnnn MM/DD/YYYY hh:mm:ss.uuuuuu"
	reTime      = regexp.MustCompile(`^D\d{4} (\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}\.\d{6})`)
	reClOrderID = regexp.MustCompile(`\|11=([^|]+)\|`)
	reAccount   = regexp.MustCompile(`\|1=([^|]+)\|`)
	reSymbol    = regexp.MustCompile(`\|55=([^|]+)\|`)
	reMsgType   = regexp.MustCompile(`\|35=([^|]+)\|`)
)

const maxLineBytes = 4 << 20

// normalize replaces the FIX field separator (SOH) with '|'.
func normalize(line string) string {
	return strings.ReplaceAll(line, "\x01", "|")
}

func submatch(re *regexp.Regexp, line string) (string, bool) {
	m := re.FindStringSubmatch(line)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// scanLines calls fn for every line of path, SOH already normalised. Line numbers
// are 1-based.
func scanLines(fs afero.Fs, path string, fn func(n int, line string) bool) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	n := 0
	for sc.Scan() {
		n++
		if !fn(n, normalize(sc.Text())) {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrapf(err, "read %s line %d", path, n+1)
	}
	return nil
}

// logTime extracts and parses the line timestamp.
func logTime(line string) (string, bool) {
	raw, ok := submatch(reTime, line)
	if !ok {
		return "", false
	}
	if _, ok := records.ParseTimeLayout(raw, records.LogTimeLayout); !ok {
		return "", false
	}
	return raw, true
}
