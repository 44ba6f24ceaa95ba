package fixlog

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/iafilius/OrderLogCharts/src/logging"
)

// ErrStartNotFound is returned by Cut when no line contains the start marker.
var ErrStartNotFound = errors.New("start marker not found")

// Cut copies the lines of logPath from the first one containing start through the
// first later (or same) line containing end. Lines are copied verbatim. When end
// never appears the copy runs to the end of the file.
func Cut(fs afero.Fs, logPath string, w io.Writer, start, end string) (int, error) {
	if start == "" || end == "" {
		return 0, errors.New("cut needs both a start and an end marker")
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(logPath)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", logPath)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	bw := bufio.NewWriter(w)
	copied := 0
	capture, done := false, false
	for sc.Scan() {
		line := sc.Text()
		if !capture && strings.Contains(line, start) {
			capture = true
		}
		if !capture {
			continue
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return copied, errors.Wrap(err, "write cut output")
		}
		copied++
		if strings.Contains(line, end) {
			done = true
			break
		}
	}
	if err := sc.Err(); err != nil {
		return copied, errors.Wrapf(err, "read %s", logPath)
	}
	if err := bw.Flush(); err != nil {
		return copied, errors.Wrap(err, "write cut output")
	}
	if !capture {
		return 0, errors.Wrapf(ErrStartNotFound, "%s: %q", logPath, start)
	}
	if !done {
		logging.Warnf("[cut] %s: end marker %q not found, copied to end of file", logPath, end)
	}
	return copied, nil
}
