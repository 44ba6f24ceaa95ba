package records

import (
	"bytes"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/iafilius/OrderLogCharts/src/logging"
)

// Options controls Load.
type Options struct {
	Format Format
	Mode   Mode
}

// Load reads path into an ordered Dataset. The file is read once; compressed
// inputs are decompressed first. Errors are *LoadError.
func Load(fs afero.Fs, path string, opts Options) (*Dataset, error) {
	defer logging.TimeTrack(time.Now(), "load "+path)
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, comp, err := readAll(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, newLoadError(path, 0, "file does not exist", err)
		}
		return nil, newLoadError(path, 0, "read failed", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newLoadError(path, 0, "file is empty", ErrEmpty)
	}
	format := opts.Format
	if format == FormatAuto {
		format = DetectFormat(path)
	}
	logging.Debugf("[load] %s format=%s compression=%s mode=%s bytes=%d", path, format, comp, opts.Mode, len(data))

	ds := &Dataset{Path: path, Format: format}
	switch format {
	case FormatJSONL:
		err = loadJSONL(ds, data, opts.Mode)
	case FormatXLSX:
		err = loadXLSX(ds, data, opts.Mode)
	default:
		err = loadCSV(ds, data, opts.Mode)
	}
	if err != nil {
		return nil, err
	}
	if len(ds.Records) == 0 {
		reason := "no data records"
		if ds.Skipped > 0 {
			reason = "no valid data records"
		}
		return nil, newLoadError(path, 0, reason, ErrEmpty)
	}
	if ds.Skipped > 0 {
		logging.Warnf("[load] %s: skipped %d malformed %s line(s), kept %d", path, ds.Skipped, format, len(ds.Records))
	}
	return ds, nil
}
