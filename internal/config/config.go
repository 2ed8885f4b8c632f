// Package config loads swiftselect settings from defaults, an optional YAML
// file and command-line overrides, in that order, and converts them to a
// swiftselect.Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/oleg578/swiftselect"
)

// Config is the complete CLI configuration.
type Config struct {
	// Fields is a cut-like, 0-based field list such as "2,6" or "0-4,7".
	Fields string `yaml:"fields"`
	// Delimiter separates input fields: one byte, an escape such as `\t`, or a name like "tab".
	Delimiter string `yaml:"delimiter"`
	// Separator joins output fields, same syntax as Delimiter.
	Separator string `yaml:"separator"`
	// MaxFields is the per-record field capacity.
	MaxFields int `yaml:"max_fields"`
	// MaxRecordSize bounds one record, e.g. "5MiB".
	MaxRecordSize string `yaml:"max_record_size"`
	// BufferSize is the output buffer size, e.g. "64KiB".
	BufferSize string `yaml:"buffer_size"`
	// Missing is "fail" or "empty".
	Missing string `yaml:"missing"`

	// Inputs are read in order; "-" is stdin.
	Inputs []string `yaml:"inputs"`
	// Codec forces input decompression: auto, none, gzip or zstd.
	Codec string `yaml:"codec"`
	// Output is the destination file; "-" is stdout.
	Output string `yaml:"output"`

	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
}

// MetricsConfig configures the run metrics.
type MetricsConfig struct {
	// Textfile, when set, receives the run counters in Prometheus text format.
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Delimiter:     ",",
		Separator:     ",",
		MaxFields:     swiftselect.DefaultMaxFields,
		MaxRecordSize: humanize.IBytes(swiftselect.DefaultMaxRecordSize),
		BufferSize:    humanize.IBytes(swiftselect.DefaultBufferSize),
		Missing:       swiftselect.MissingFail.String(),
		Codec:         "auto",
		Output:        "-",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ToSelect converts the textual settings into a validated swiftselect.Config.
func (c Config) ToSelect() (swiftselect.Config, error) {
	var out swiftselect.Config
	var err error

	out.MaxFields = c.MaxFields
	if out.MaxFields == 0 {
		out.MaxFields = swiftselect.DefaultMaxFields
	}
	if out.Fields, err = ParseFields(c.Fields, out.MaxFields); err != nil {
		return out, err
	}
	if out.Delimiter, err = ParseDelimiter(c.Delimiter); err != nil {
		return out, fmt.Errorf("config: delimiter: %w", err)
	}
	if out.Separator, err = ParseDelimiter(c.Separator); err != nil {
		return out, fmt.Errorf("config: separator: %w", err)
	}
	if out.MaxRecordSize, err = ParseSize(c.MaxRecordSize); err != nil {
		return out, fmt.Errorf("config: max_record_size: %w", err)
	}
	if out.BufferSize, err = ParseSize(c.BufferSize); err != nil {
		return out, fmt.Errorf("config: buffer_size: %w", err)
	}
	if out.Missing, err = swiftselect.ParseMissingPolicy(c.Missing); err != nil {
		return out, err
	}
	return out, out.Validate()
}

// ParseFields parses a comma-separated list of 0-based indices and inclusive
// ranges ("2,6", "0-4", "7,1-3"). Order and repeats are kept. Every index must
// be below limit.
func ParseFields(s string, limit int) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, swiftselect.ErrNoFields
	}
	var fields []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := parseIndex(lo, limit)
		if err != nil {
			return nil, fmt.Errorf("config: fields %q: %w", part, err)
		}
		end := start
		if isRange {
			if end, err = parseIndex(hi, limit); err != nil {
				return nil, fmt.Errorf("config: fields %q: %w", part, err)
			}
			if end < start {
				return nil, fmt.Errorf("config: fields %q: %w: descending range", part, swiftselect.ErrInvalidField)
			}
		}
		for i := start; i <= end; i++ {
			fields = append(fields, i)
		}
	}
	return fields, nil
}

func parseIndex(s string, limit int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", swiftselect.ErrInvalidField, s)
	}
	if n < 0 || n >= limit {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", swiftselect.ErrInvalidField, n, limit)
	}
	return n, nil
}

var namedDelimiters = map[string]byte{
	"comma":     ',',
	"tab":       '\t',
	"space":     ' ',
	"pipe":      '|',
	"semicolon": ';',
	"colon":     ':',
	"us":        0x1f,
}

// ParseDelimiter converts a delimiter setting into a single byte. It accepts a
// literal byte, a Go escape such as `\t` or `\x1f`, or a name from
// namedDelimiters. The empty string yields 0, which selects the default.
func ParseDelimiter(s string) (byte, error) {
	if s == "" {
		return 0, nil
	}
	if b, ok := namedDelimiters[strings.ToLower(s)]; ok {
		return b, nil
	}
	if strings.HasPrefix(s, `\`) {
		unq, err := strconv.Unquote(`"` + s + `"`)
		if err != nil {
			return 0, fmt.Errorf("bad escape %q", s)
		}
		s = unq
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("%q is not a single byte", s)
	}
	switch s[0] {
	case '\n':
		return 0, swiftselect.ErrInvalidDelimiter
	case 0:
		return 0, errors.New("NUL is reserved for the default delimiter")
	}
	return s[0], nil
}

// ParseSize parses a human byte size such as "5MiB", "64k" or "4096".
// The empty string yields 0, which selects the default.
func ParseSize(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n == 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s", swiftselect.ErrInvalidSize, s)
	}
	return int(n), nil
}
