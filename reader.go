package swiftselect

import (
	"bytes"
	"io"
)

const (
	defaultReadSize          = 4 << 10 // 4096 bytes
	minReadSize              = 16
	maxConsecutiveEmptyReads = 100
)

// Reader splits a byte stream into newline-terminated records.
//
// Read returns slices into a single buffer owned by the Reader. The buffer
// grows only to fit the longest record seen, never with the number of
// records, and its contents are overwritten by the next call to Read.
type Reader struct {
	src io.Reader

	// MaxRecordSize bounds the length of one record, excluding its terminator.
	// Zero selects DefaultMaxRecordSize.
	MaxRecordSize int

	buf     []byte
	bufPos  int
	scanPos int
	bufLen  int
	bufErr  error

	err       error
	line      int
	bytesRead int64
}

// NewReader creates a Reader that consumes records from r, panicking if r is nil.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, defaultReadSize)
}

// NewReaderSize creates a Reader whose buffer starts at size bytes.
// The buffer still grows when a record does not fit.
func NewReaderSize(r io.Reader, size int) *Reader {
	if r == nil {
		panic("swiftselect: reader source cannot be nil")
	}
	if size < minReadSize {
		size = minReadSize
	}
	return &Reader{
		src: r,
		buf: make([]byte, size),
	}
}

// Reset discards any buffered data and switches the Reader to src.
// The grown buffer and MaxRecordSize are kept.
func (r *Reader) Reset(src io.Reader) {
	if src == nil {
		panic("swiftselect: reader source cannot be nil")
	}
	if r.buf == nil {
		r.buf = make([]byte, defaultReadSize)
	}
	r.src = src
	r.bufPos = 0
	r.scanPos = 0
	r.bufLen = 0
	r.bufErr = nil
	r.err = nil
	r.line = 0
	r.bytesRead = 0
}

// Read returns the next record with its trailing newline removed.
// An empty line yields a non-nil empty slice; io.EOF signals that the
// source is exhausted. The slice is only valid until the next call.
// Errors other than io.EOF are *ReadError or *ParseError and are sticky.
func (r *Reader) Read() ([]byte, error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if r.err != nil {
		return nil, r.err
	}

	for {
		// Bytes before scanPos were already searched for a terminator.
		if i := bytes.IndexByte(r.buf[r.scanPos:r.bufLen], '\n'); i >= 0 {
			end := r.scanPos + i
			record := r.buf[r.bufPos:end:end]
			r.bufPos = end + 1
			r.scanPos = r.bufPos
			return r.accept(record)
		}
		r.scanPos = r.bufLen

		if r.bufErr != nil {
			err := r.bufErr
			r.bufErr = nil
			if err == io.EOF {
				r.err = io.EOF
				// Final record without a terminator.
				if r.bufPos < r.bufLen {
					record := r.buf[r.bufPos:r.bufLen:r.bufLen]
					r.bufPos = r.bufLen
					r.scanPos = r.bufLen
					return r.accept(record)
				}
				return nil, io.EOF
			}
			r.err = &ReadError{Line: r.line + 1, Err: err}
			return nil, r.err
		}

		if err := r.fill(); err != nil {
			r.err = err
			return nil, err
		}
	}
}

// ReadAll reads the remaining records and returns copies of them.
func (r *Reader) ReadAll() (records [][]byte, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, append([]byte{}, record...))
	}
}

// Line returns the number of records returned since the last Reset.
func (r *Reader) Line() int {
	return r.line
}

// BytesRead returns the number of bytes consumed from the source since the last Reset.
func (r *Reader) BytesRead() int64 {
	return r.bytesRead
}

func (r *Reader) maxRecordSize() int {
	if r.MaxRecordSize > 0 {
		return r.MaxRecordSize
	}
	return DefaultMaxRecordSize
}

func (r *Reader) accept(record []byte) ([]byte, error) {
	r.line++
	if limit := r.maxRecordSize(); len(record) > limit {
		r.err = &ParseError{Line: r.line, Column: limit + 1, Err: ErrRecordTooLong}
		return nil, r.err
	}
	return record, nil
}

// fill moves the pending partial record to the front of the buffer, grows
// the buffer if the record already fills it, and reads more from src.
func (r *Reader) fill() error {
	if r.bufPos > 0 {
		n := copy(r.buf, r.buf[r.bufPos:r.bufLen])
		r.scanPos -= r.bufPos
		r.bufLen = n
		r.bufPos = 0
	}

	if r.bufLen == len(r.buf) {
		limit := r.maxRecordSize()
		if r.bufLen > limit {
			return &ParseError{Line: r.line + 1, Column: limit + 1, Err: ErrRecordTooLong}
		}
		// limit+1 leaves room for the terminator of a maximal record.
		grown := make([]byte, min(2*len(r.buf), limit+1))
		copy(grown, r.buf[:r.bufLen])
		r.buf = grown
	}

	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := r.src.Read(r.buf[r.bufLen:])
		r.bufLen += n
		r.bytesRead += int64(n)
		if err != nil {
			r.bufErr = err
			return nil
		}
		if n > 0 {
			return nil
		}
	}
	return &ReadError{Line: r.line + 1, Err: io.ErrNoProgress}
}
