// Package source opens record inputs, decompressing them when needed.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec identifies the compression applied to an input.
type Codec int

const (
	// Auto picks the codec from the file extension.
	Auto Codec = iota
	// None reads the input as is.
	None
	// Gzip decodes gzip streams.
	Gzip
	// Zstd decodes zstandard streams.
	Zstd
)

func (c Codec) String() string {
	switch c {
	case Auto:
		return "auto"
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// ParseCodec converts a codec name to a Codec.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return Auto, nil
	case "none", "plain":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	}
	return Auto, fmt.Errorf("source: unknown codec %q", s)
}

// Detect picks a codec from the extension of path.
func Detect(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	default:
		return None
	}
}

// IsStdin reports whether path names standard input.
func IsStdin(path string) bool {
	return path == "" || path == "-"
}

// Open opens path for reading, "-" or "" meaning stdin. With Auto the codec
// comes from the extension; stdin is read as is unless a codec is forced.
// Closing the result closes the decoder and the file but never stdin.
func Open(path string, codec Codec) (io.ReadCloser, error) {
	var rc io.ReadCloser
	if IsStdin(path) {
		rc = io.NopCloser(os.Stdin)
		if codec == Auto {
			codec = None
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		rc = f
		if codec == Auto {
			codec = Detect(path)
		}
	}
	return Wrap(rc, codec)
}

// Wrap layers the decoder for codec over rc. On error rc is closed.
func Wrap(rc io.ReadCloser, codec Codec) (io.ReadCloser, error) {
	switch codec {
	case Auto, None:
		return rc, nil
	case Gzip:
		zr, err := gzip.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("source: gzip: %w", err)
		}
		return &decoder{Reader: zr, closers: []func() error{zr.Close, rc.Close}}, nil
	case Zstd:
		// One goroutine: the consumer is a single sequential loop.
		zr, err := zstd.NewReader(rc, zstd.WithDecoderConcurrency(1))
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("source: zstd: %w", err)
		}
		return &decoder{Reader: zr, closers: []func() error{
			func() error { zr.Close(); return nil },
			rc.Close,
		}}, nil
	default:
		_ = rc.Close()
		return nil, fmt.Errorf("source: unsupported codec %v", codec)
	}
}

type decoder struct {
	io.Reader
	closers []func() error
}

func (d *decoder) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
