package proof

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// compressedWriter chains the compressor and the underlying file so both
// are closed in order.
type compressedWriter struct {
	io.Writer
	closers []io.Closer
}

func (w *compressedWriter) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenFile opens a proof trace file for writing. Files ending in .gz or
// .zst are compressed transparently.
func OpenFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open proof trace %q", path)
	}
	switch {
	case strings.HasSuffix(path, ".gz"):
		zw := gzip.NewWriter(f)
		return &compressedWriter{Writer: zw, closers: []io.Closer{zw, f}}, nil
	case strings.HasSuffix(path, ".zst"):
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "cannot compress proof trace %q", path)
		}
		return &compressedWriter{Writer: zw, closers: []io.Closer{zw, f}}, nil
	default:
		return f, nil
	}
}
