// Package record defines the per-kind record types the ingest pipeline
// moves from the streaming decoder to the batched inserter, along with the
// bulk-insert capability (§4.1) every kind must expose: a table name, an
// ordered column list, a field count, and a positional value binder. The
// ordering of ColumnNames and the ordering Bind appends in MUST agree; that
// is the only contract coupling a record type to its target table.
package record

import "fmt"

// Insertable is the capability the batched inserter (C3) needs from a
// record kind. It is implemented by value receivers so a slice of records
// can be passed by value without the inserter caring about the concrete
// type underneath.
type Insertable interface {
	// TableName is the target table identifier.
	TableName() string
	// ColumnNames is the ordered list of target columns.
	ColumnNames() []string
	// FieldCount is len(ColumnNames()); kept explicit so the inserter does
	// not need to call ColumnNames() on every record just to size buffers.
	FieldCount() int
	// Bind appends this record's values, in column order, to args.
	Bind(args []any) []any
	// ConflictClause returns the ON CONFLICT fragment to append after the
	// VALUES list, or "" if the kind uses a plain insert.
	ConflictClause() string
	// Validate reports a missing or malformed required field. Go's
	// encoding/json zero-values absent fields rather than erroring, so this
	// is what turns a structurally-valid-but-incomplete JSON object into a
	// rejected record, preserving spec's "every record has all required
	// fields present and well-typed, or the request fails" invariant.
	Validate() error
}

// MissingFieldError reports a required field that was empty or zero after
// JSON decoding.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}
