package swiftselect

import "bytes"

type span struct {
	off int
	n   int
}

// FieldTable holds the positions of the fields of the current record.
//
// The table has a fixed capacity chosen at construction and is overwritten
// in place by every Split. Only the first Len entries describe the current
// record; lookups past Len report the field as absent.
type FieldTable struct {
	spans []span
	n     int
}

// NewFieldTable allocates a table for records of at most capacity fields.
// A non-positive capacity selects DefaultMaxFields.
func NewFieldTable(capacity int) *FieldTable {
	if capacity <= 0 {
		capacity = DefaultMaxFields
	}
	return &FieldTable{spans: make([]span, capacity)}
}

// Split indexes record on delim and returns the field count, which is
// always the number of delim bytes plus one. Adjacent delimiters and a
// trailing delimiter produce zero-length fields.
//
// If the record has more fields than Cap, Split returns a *ParseError
// wrapping ErrFieldOverflow and the table is left empty.
func (t *FieldTable) Split(record []byte, delim byte) (int, error) {
	t.n = 0
	spans := t.spans
	k := 0
	start := 0
	for {
		if k == len(spans) {
			// start-1 is the delimiter that opened the extra field.
			return 0, &ParseError{Column: start, Err: ErrFieldOverflow}
		}
		i := bytes.IndexByte(record[start:], delim)
		if i < 0 {
			spans[k] = span{off: start, n: len(record) - start}
			k++
			break
		}
		spans[k] = span{off: start, n: i}
		k++
		start += i + 1
	}
	t.n = k
	return k, nil
}

// Len returns the number of fields in the current record.
func (t *FieldTable) Len() int {
	return t.n
}

// Cap returns the maximum number of fields per record.
func (t *FieldTable) Cap() int {
	return len(t.spans)
}

// Reset forgets the current record.
func (t *FieldTable) Reset() {
	t.n = 0
}

// Span returns the offset and length of field i. ok is false when the
// current record has no field i.
func (t *FieldTable) Span(i int) (offset, length int, ok bool) {
	if i < 0 || i >= t.n {
		return 0, 0, false
	}
	s := t.spans[i]
	return s.off, s.n, true
}

// Field returns field i of record as a subslice of record.
// record must be the slice last passed to Split.
func (t *FieldTable) Field(record []byte, i int) ([]byte, bool) {
	if i < 0 || i >= t.n {
		return nil, false
	}
	s := t.spans[i]
	return record[s.off : s.off+s.n], true
}
