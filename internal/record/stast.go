package record

// StastHit is an alignment-hit record (spec §3.3), append-only with a
// surrogate id and server-assigned created_at.
type StastHit struct {
	Task      string  `json:"task"`
	SampleID  string  `json:"sample_id"`
	Qseqid    string  `json:"qseqid"`
	Sseqid    string  `json:"sseqid"`
	Stitle    string  `json:"stitle"`
	Sscinames string  `json:"sscinames"`
	Staxids   string  `json:"staxids"`
	Rank      string  `json:"rank"`
	Qlen      int64   `json:"qlen"`
	Length    int64   `json:"length"`
	Pident    float64 `json:"pident"`
	Evalue    float64 `json:"evalue"`
	Bitscore  float64 `json:"bitscore"`
}

var stastColumns = []string{
	"task", "sample_id", "qseqid", "sseqid", "stitle", "sscinames", "staxids",
	"rank", "qlen", "length", "pident", "evalue", "bitscore",
}

func (s StastHit) TableName() string      { return "stast_hits" }
func (s StastHit) ColumnNames() []string  { return stastColumns }
func (s StastHit) FieldCount() int        { return len(stastColumns) }
func (s StastHit) ConflictClause() string { return "" }

func (s StastHit) Bind(args []any) []any {
	return append(args,
		s.Task, s.SampleID, s.Qseqid, s.Sseqid, s.Stitle, s.Sscinames, s.Staxids,
		s.Rank, s.Qlen, s.Length, s.Pident, s.Evalue, s.Bitscore,
	)
}

func (s StastHit) Validate() error {
	if s.Task == "" {
		return &MissingFieldError{Field: "task"}
	}
	if s.SampleID == "" {
		return &MissingFieldError{Field: "sample_id"}
	}
	if s.Qseqid == "" {
		return &MissingFieldError{Field: "qseqid"}
	}
	if s.Sseqid == "" {
		return &MissingFieldError{Field: "sseqid"}
	}
	return nil
}
