package records

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

// Compression represents the compression format of an input file
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
	CompressionSnappy
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionSnappy:
		return "snappy"
	default:
		return "none"
	}
}

// Magic byte signatures for compression detection
var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}                   // "BZh"
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00} // "\xfd7zXZ\x00"
	// framed snappy stream identifier chunk
	snappyMagic = []byte{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59}
)

// detectCompression checks the extension first, then the leading bytes.
func detectCompression(path string, head []byte) Compression {
	if c, ok := compressionExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return c
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(head, bzip2Magic):
		return CompressionBzip2
	case bytes.HasPrefix(head, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(head, snappyMagic):
		return CompressionSnappy
	}
	return CompressionNone
}

// readAll reads the whole file, decompressing it when needed.
func readAll(fs afero.Fs, path string) ([]byte, Compression, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, CompressionNone, err
	}
	head := raw
	if len(head) > len(snappyMagic) {
		head = head[:len(snappyMagic)]
	}
	c := detectCompression(path, head)
	if c == CompressionNone {
		return raw, c, nil
	}
	var r io.Reader
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, c, errors.Wrap(err, "gzip")
		}
		defer gz.Close()
		r = gz
	case CompressionBzip2:
		r = bzip2.NewReader(bytes.NewReader(raw))
	case CompressionXZ:
		xr, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, c, errors.Wrap(err, "xz")
		}
		r = xr
	case CompressionSnappy:
		r = snappy.NewReader(bytes.NewReader(raw))
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, c, errors.Wrapf(err, "decompress %s", c)
	}
	return buf.Bytes(), c, nil
}
