package swiftselect

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
)

// MissingPolicy decides what Projector does when a selected field is absent
// from a record.
type MissingPolicy int

const (
	// MissingFail rejects the record with ErrMissingField before writing any of it.
	MissingFail MissingPolicy = iota
	// MissingEmpty writes an absent field as a zero-length field.
	MissingEmpty
)

func (p MissingPolicy) String() string {
	switch p {
	case MissingFail:
		return "fail"
	case MissingEmpty:
		return "empty"
	default:
		return fmt.Sprintf("MissingPolicy(%d)", int(p))
	}
}

// ParseMissingPolicy converts "fail" or "empty" to a MissingPolicy.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(s) {
	case "fail", "":
		return MissingFail, nil
	case "empty":
		return MissingEmpty, nil
	}
	return MissingFail, fmt.Errorf("swiftselect: unknown missing-field policy %q", s)
}

// Projector writes a fixed selection of fields from each record.
type Projector struct {
	dst *bufio.Writer

	// Separator is written between projected fields. Default is ','.
	Separator byte
	// Missing controls how absent fields are handled. Default is MissingFail.
	Missing MissingPolicy

	fields  []int
	written int64
	err     error
}

// NewProjector creates a Projector emitting fields, in order, to w.
func NewProjector(w io.Writer, fields []int) *Projector {
	return NewProjectorSize(w, fields, DefaultBufferSize)
}

// NewProjectorSize creates a Projector whose output buffer holds size bytes.
func NewProjectorSize(w io.Writer, fields []int, size int) *Projector {
	if w == nil {
		panic(errNoTarget.Error())
	}
	return &Projector{
		dst:       bufio.NewWriterSize(w, size),
		Separator: ',',
		fields:    slices.Clone(fields),
	}
}

// Reset updates the underlying writer while preserving the selection and flags.
// Buffered data that was not flushed is discarded.
func (p *Projector) Reset(dst io.Writer) {
	if p == nil {
		panic(errNilProjector.Error())
	}
	if dst == nil {
		panic(errNoTarget.Error())
	}
	if p.dst == nil {
		p.dst = bufio.NewWriterSize(dst, DefaultBufferSize)
	} else {
		p.dst.Reset(dst)
	}
	p.written = 0
	p.err = nil
}

// Fields returns a copy of the selected field indices.
func (p *Projector) Fields() []int {
	return slices.Clone(p.fields)
}

// Emit writes the selected fields of record, as indexed by t, followed by a
// newline. An empty record produces no output.
func (p *Projector) Emit(record []byte, t *FieldTable) error {
	if p == nil {
		return errNilProjector
	}
	if p.dst == nil {
		return errNoTarget
	}
	if p.err != nil {
		return p.err
	}
	if len(record) == 0 {
		return nil
	}

	if p.Missing == MissingFail {
		n := t.Len()
		for _, idx := range p.fields {
			if idx < 0 || idx >= n {
				return &ParseError{Err: fmt.Errorf("%w: field %d of %d", ErrMissingField, idx, n)}
			}
		}
	}

	sep := p.Separator
	if sep == 0 {
		sep = ','
	}

	var written int64
	for i, idx := range p.fields {
		if i > 0 {
			if err := p.dst.WriteByte(sep); err != nil {
				return p.fail(err)
			}
			written++
		}
		// Absent fields are nil here only under MissingEmpty.
		field, _ := t.Field(record, idx)
		if _, err := p.dst.Write(field); err != nil {
			return p.fail(err)
		}
		written += int64(len(field))
	}
	if err := p.dst.WriteByte('\n'); err != nil {
		return p.fail(err)
	}
	p.written += written + 1
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (p *Projector) Flush() error {
	if p == nil {
		return errNilProjector
	}
	if p.dst == nil {
		return errNoTarget
	}
	if p.err != nil {
		return p.err
	}
	if err := p.dst.Flush(); err != nil {
		return p.fail(err)
	}
	return nil
}

// Error reports the first write error encountered by the projector.
func (p *Projector) Error() error {
	if p == nil {
		return errNilProjector
	}
	return p.err
}

// Written returns the number of bytes accepted by Emit since the last Reset,
// flushed or not.
func (p *Projector) Written() int64 {
	return p.written
}

func (p *Projector) fail(err error) error {
	p.err = &WriteError{Err: err}
	return p.err
}
