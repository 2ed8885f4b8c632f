package swiftselect

import (
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultMaxFields is the field table capacity used when Config.MaxFields is zero.
	DefaultMaxFields = 1 << 16
	// DefaultMaxRecordSize bounds a record when no explicit limit is set.
	DefaultMaxRecordSize = 5 << 20
	// DefaultBufferSize is the output buffer size used when Config.BufferSize is zero.
	DefaultBufferSize = 64 << 10
)

// Config describes one projection. Zero values select the defaults.
type Config struct {
	// Fields lists the 0-based field indices to emit, in output order.
	// Repeats are allowed.
	Fields []int
	// Delimiter separates input fields. Default is ','.
	Delimiter byte
	// Separator joins output fields. Default is ','.
	Separator byte
	// MaxFields is the field table capacity. Default is DefaultMaxFields.
	MaxFields int
	// MaxRecordSize bounds one input record in bytes. Default is DefaultMaxRecordSize.
	MaxRecordSize int
	// BufferSize is the output buffer size. Default is DefaultBufferSize.
	BufferSize int
	// Missing decides what happens when a record lacks a selected field.
	Missing MissingPolicy
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Delimiter == 0 {
		c.Delimiter = ','
	}
	if c.Separator == 0 {
		c.Separator = ','
	}
	if c.MaxFields == 0 {
		c.MaxFields = DefaultMaxFields
	}
	if c.MaxRecordSize == 0 {
		c.MaxRecordSize = DefaultMaxRecordSize
	}
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	return c
}

// Validate reports whether c, after defaults, describes a usable projection.
func (c Config) Validate() error {
	c = c.WithDefaults()
	if len(c.Fields) == 0 {
		return ErrNoFields
	}
	if c.MaxFields < 0 || c.MaxRecordSize < 0 || c.BufferSize < 0 {
		return ErrInvalidSize
	}
	for _, f := range c.Fields {
		if f < 0 || f >= c.MaxFields {
			return fmt.Errorf("%w: %d (max fields %d)", ErrInvalidField, f, c.MaxFields)
		}
	}
	if c.Delimiter == '\n' || c.Separator == '\n' {
		return ErrInvalidDelimiter
	}
	if c.Missing != MissingFail && c.Missing != MissingEmpty {
		return fmt.Errorf("swiftselect: invalid missing-field policy %v", c.Missing)
	}
	return nil
}

// Stats counts the work done by a Selector.
type Stats struct {
	// Records is the number of input records, empty ones included.
	Records int64
	// Emitted is the number of output records.
	Emitted int64
	// Skipped is the number of empty input records.
	Skipped int64
	// BytesRead is the number of bytes consumed from the sources.
	BytesRead int64
	// BytesWritten is the number of bytes emitted, flushed or not.
	BytesWritten int64
}

// Selector runs the read, split and emit loop over one or more sources into
// a single destination. It owns one record buffer, one field table and one
// output buffer for its whole lifetime.
type Selector struct {
	cfg    Config
	reader *Reader
	table  *FieldTable
	proj   *Projector
	stats  Stats
}

// NewSelector validates cfg and prepares a Selector writing to dst.
func NewSelector(dst io.Writer, cfg Config) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	proj := NewProjectorSize(dst, cfg.Fields, cfg.BufferSize)
	proj.Separator = cfg.Separator
	proj.Missing = cfg.Missing

	reader := &Reader{MaxRecordSize: cfg.MaxRecordSize}
	reader.buf = make([]byte, min(defaultReadSize, cfg.MaxRecordSize+1))

	return &Selector{
		cfg:    cfg,
		reader: reader,
		table:  NewFieldTable(cfg.MaxFields),
		proj:   proj,
	}, nil
}

// Run projects every record of src until end of input. It does not flush;
// call Flush once all sources are done. Any error is fatal for the Selector.
func (s *Selector) Run(src io.Reader) error {
	if err := s.proj.Error(); err != nil {
		return err
	}
	s.reader.Reset(src)
	defer func() { s.stats.BytesRead += s.reader.BytesRead() }()

	for {
		record, err := s.reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		s.stats.Records++

		if len(record) == 0 {
			s.stats.Skipped++
			continue
		}
		if _, err := s.table.Split(record, s.cfg.Delimiter); err != nil {
			return s.atRecord(err)
		}
		if err := s.proj.Emit(record, s.table); err != nil {
			return s.atRecord(err)
		}
		s.stats.Emitted++
	}
}

// Flush writes any buffered output to the destination.
func (s *Selector) Flush() error {
	return s.proj.Flush()
}

// Stats returns the counters accumulated so far.
func (s *Selector) Stats() Stats {
	st := s.stats
	st.BytesWritten = s.proj.Written()
	return st
}

// Config returns the effective configuration, defaults applied.
func (s *Selector) Config() Config {
	return s.cfg
}

// atRecord stamps the current record number on errors raised by the
// splitter or projector, which do not track lines themselves.
func (s *Selector) atRecord(err error) error {
	var perr *ParseError
	if errors.As(err, &perr) && perr.Line == 0 {
		perr.Line = s.reader.Line()
	}
	return err
}

// Select projects every record of src onto dst according to cfg and flushes
// dst before returning, on success and on failure alike.
func Select(dst io.Writer, src io.Reader, cfg Config) (Stats, error) {
	s, err := NewSelector(dst, cfg)
	if err != nil {
		return Stats{}, err
	}
	err = s.Run(src)
	return s.Stats(), JoinFlush(err, s.Flush())
}

// JoinFlush combines a run error with the error of the flush that follows it.
// A flush error that is already part of err is not repeated.
func JoinFlush(err, flushErr error) error {
	switch {
	case flushErr == nil:
		return err
	case err == nil:
		return flushErr
	case errors.Is(err, flushErr):
		return err
	default:
		return errors.Join(err, flushErr)
	}
}
