package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleg578/swiftselect"
)

func TestParseFields(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr error
	}{
		{name: "single", input: "2", want: []int{2}},
		{name: "list keeps order", input: "6,2", want: []int{6, 2}},
		{name: "range", input: "0-4", want: []int{0, 1, 2, 3, 4}},
		{name: "mixed with spaces", input: " 7 , 1-3 ", want: []int{7, 1, 2, 3}},
		{name: "repeat", input: "1,1", want: []int{1, 1}},
		{name: "empty", input: "", wantErr: swiftselect.ErrNoFields},
		{name: "negative", input: "-1", wantErr: swiftselect.ErrInvalidField},
		{name: "not a number", input: "a", wantErr: swiftselect.ErrInvalidField},
		{name: "descending", input: "4-2", wantErr: swiftselect.ErrInvalidField},
		{name: "open range", input: "3-", wantErr: swiftselect.ErrInvalidField},
		{name: "beyond limit", input: "0-10", wantErr: swiftselect.ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFields(tt.input, 10)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		input   string
		want    byte
		wantErr bool
	}{
		{input: "", want: 0},
		{input: ",", want: ','},
		{input: "|", want: '|'},
		{input: "tab", want: '\t'},
		{input: "TAB", want: '\t'},
		{input: `\t`, want: '\t'},
		{input: `\x1f`, want: 0x1f},
		{input: "us", want: 0x1f},
		{input: "::", wantErr: true},
		{input: `\n`, wantErr: true},
		{input: `\x00`, wantErr: true},
		{input: `\q`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDelimiter(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSize(t *testing.T) {
	n, err := ParseSize("5MiB")
	require.NoError(t, err)
	assert.Equal(t, 5<<20, n)

	n, err = ParseSize("4096")
	require.NoError(t, err)
	assert.Equal(t, 4096, n)

	n, err = ParseSize("")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = ParseSize("0")
	assert.ErrorIs(t, err, swiftselect.ErrInvalidSize)

	_, err = ParseSize("lots")
	assert.Error(t, err)
}

func TestDefaultToSelect(t *testing.T) {
	cfg := Default()
	cfg.Fields = "2,6"

	sel, err := cfg.ToSelect()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 6}, sel.Fields)
	assert.Equal(t, byte(','), sel.Delimiter)
	assert.Equal(t, byte(','), sel.Separator)
	assert.Equal(t, swiftselect.DefaultMaxFields, sel.MaxFields)
	assert.Equal(t, swiftselect.DefaultMaxRecordSize, sel.MaxRecordSize)
	assert.Equal(t, swiftselect.DefaultBufferSize, sel.BufferSize)
	assert.Equal(t, swiftselect.MissingFail, sel.Missing)
}

func TestToSelectErrors(t *testing.T) {
	cfg := Default()
	_, err := cfg.ToSelect()
	assert.ErrorIs(t, err, swiftselect.ErrNoFields)

	cfg.Fields = "1"
	cfg.Missing = "pad"
	_, err = cfg.ToSelect()
	assert.Error(t, err)

	cfg.Missing = "empty"
	cfg.MaxFields = 1
	_, err = cfg.ToSelect()
	assert.ErrorIs(t, err, swiftselect.ErrInvalidField)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "select.yaml")
	content := `
fields: "0-2,5"
delimiter: tab
separator: "|"
max_fields: 32
max_record_size: 1MiB
missing: empty
inputs:
  - a.csv.gz
  - b.csv
log:
  level: debug
  format: json
metrics:
  textfile: /tmp/swiftselect.prom
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv.gz", "b.csv"}, cfg.Inputs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/swiftselect.prom", cfg.Metrics.Textfile)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "-", cfg.Output)
	assert.Equal(t, "auto", cfg.Codec)

	sel, err := cfg.ToSelect()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 5}, sel.Fields)
	assert.Equal(t, byte('\t'), sel.Delimiter)
	assert.Equal(t, byte('|'), sel.Separator)
	assert.Equal(t, 32, sel.MaxFields)
	assert.Equal(t, 1<<20, sel.MaxRecordSize)
	assert.Equal(t, swiftselect.MissingEmpty, sel.Missing)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("felds: 1\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyFileAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
