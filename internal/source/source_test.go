package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "VendorID,tpep_pickup_datetime,passenger_count\n1,2019-01-01 00:46:40,1\n2,2019-01-01 00:59:47,2\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		data  func(t *testing.T) []byte
		codec Codec
	}{
		{name: "plain", file: "trips.csv", data: func(*testing.T) []byte { return []byte(sample) }},
		{name: "gzip by extension", file: "trips.csv.gz", data: func(t *testing.T) []byte { return gzipBytes(t, sample) }},
		{name: "zstd by extension", file: "trips.csv.zst", data: func(t *testing.T) []byte { return zstdBytes(t, sample) }},
		{name: "forced gzip", file: "trips.bin", data: func(t *testing.T) []byte { return gzipBytes(t, sample) }, codec: Gzip},
		{name: "forced none", file: "trips.csv.gz", data: func(*testing.T) []byte { return []byte(sample) }, codec: None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.data(t))

			rc, err := Open(path, tt.codec)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, sample, string(got))
		})
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.csv"), Auto)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeFile(t, "broken.csv.gz", []byte("not gzip at all"))
	_, err = Open(path, Auto)
	assert.Error(t, err)

	_, err = Wrap(io.NopCloser(bytes.NewReader(nil)), Codec(42))
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, Gzip, Detect("a/b/trips.csv.GZ"))
	assert.Equal(t, Zstd, Detect("trips.zstd"))
	assert.Equal(t, None, Detect("trips.csv"))
	assert.Equal(t, None, Detect("-"))
}

func TestParseCodec(t *testing.T) {
	for in, want := range map[string]Codec{"": Auto, "auto": Auto, "plain": None, "GZ": Gzip, "zstd": Zstd} {
		got, err := ParseCodec(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCodec("lz4")
	assert.Error(t, err)
	assert.Equal(t, "gzip", Gzip.String())
}

func TestIsStdin(t *testing.T) {
	assert.True(t, IsStdin("-"))
	assert.True(t, IsStdin(""))
	assert.False(t, IsStdin("./-"))
}
