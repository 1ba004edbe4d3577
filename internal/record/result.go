package record

import "encoding/json"

// Result is the generic-stream record (spec §3.1): its primary identity is
// (run_id, task_id, shard), with a separate uniqueness constraint on
// idempotency_key. Both conflicts are non-fatal no-ops.
type Result struct {
	RunID          string          `json:"run_id"`
	TaskID         string          `json:"task_id"`
	Shard          int32           `json:"shard"`
	IdempotencyKey string          `json:"idempotency_key"`
	SchemaVersion  int32           `json:"schema_version"`
	Payload        json.RawMessage `json:"payload"`
}

var resultColumns = []string{
	"run_id", "task_id", "shard", "idempotency_key", "schema_version", "payload",
}

func (r Result) TableName() string     { return "results" }
func (r Result) ColumnNames() []string { return resultColumns }
func (r Result) FieldCount() int       { return len(resultColumns) }

func (r Result) Bind(args []any) []any {
	payload := r.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return append(args, r.RunID, r.TaskID, r.Shard, r.IdempotencyKey, r.SchemaVersion, []byte(payload))
}

// ConflictClause implements the double-dedup policy spec §3 calls for:
// insertions conflicting on the primary identity (run_id, task_id, shard)
// or on the separate idempotency_key unique index (migrations/001) are both
// silently ignored. Postgres allows only one ON CONFLICT target per
// statement, so this omits the target entirely — an untargeted DO NOTHING
// applies to any unique-violation on the table, covering both constraints
// in one clause.
func (r Result) ConflictClause() string {
	return "ON CONFLICT DO NOTHING"
}

func (r Result) Validate() error {
	if r.RunID == "" {
		return &MissingFieldError{Field: "run_id"}
	}
	if r.TaskID == "" {
		return &MissingFieldError{Field: "task_id"}
	}
	if r.IdempotencyKey == "" {
		return &MissingFieldError{Field: "idempotency_key"}
	}
	if len(r.Payload) == 0 {
		return &MissingFieldError{Field: "payload"}
	}
	return nil
}
