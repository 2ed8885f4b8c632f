// # SwiftSelect: Streaming Field Projection for Delimited Records
//
// SwiftSelect streams newline-terminated, delimiter-separated records from a
// source to a sink and keeps a fixed subset of fields from each one. It is a
// building block for ETL stages and log processors where throughput and a
// flat memory profile on unbounded input matter more than CSV generality.
//
// # Features
//
// - `Reader` returns one record at a time as a slice into a single reusable buffer.
// - `FieldTable` indexes a record into a fixed-capacity table of spans without copying bytes.
// - `Projector` writes the selected fields, in order, through a buffered writer.
// - `Select` wires the three together and always flushes output, even on error.
// - Structured errors: `ReadError`, `WriteError`, and `ParseError` wrapping
//   `ErrFieldOverflow`, `ErrRecordTooLong` or `ErrMissingField`.
//
// Quoting is not recognised: a delimiter byte always ends a field and a
// newline byte always ends a record.
//
// # Getting Started
//
//	stats, err := swiftselect.Select(os.Stdout, os.Stdin, swiftselect.Config{
//		Fields: []int{2, 6},
//	})
//
// The `cmd/swiftselect` binary exposes the same loop on the command line.
package swiftselect
