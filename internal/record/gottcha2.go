package record

// Gottcha2Hit is a taxonomic-abundance record (spec §3.2). It has no
// natural primary key; the table carries a surrogate id and a
// server-assigned created_at. The stream is append-only.
type Gottcha2Hit struct {
	SampleID      string  `json:"sample_id"`
	Level         string  `json:"level"`
	Name          string  `json:"name"`
	Taxid         string  `json:"taxid"`
	ReadCount     int64   `json:"read_count"`
	TotalBpMapped int64   `json:"total_bp_mapped"`
	CoveredSigLen int64   `json:"covered_sig_len"`
	AniCI95       float64 `json:"ani_ci95"`
	BestSigCov    float64 `json:"best_sig_cov"`
	Depth         float64 `json:"depth"`
	RelAbundance  float64 `json:"rel_abundance"`
}

var gottcha2Columns = []string{
	"sample_id", "level", "name", "taxid", "read_count", "total_bp_mapped",
	"covered_sig_len", "ani_ci95", "best_sig_cov", "depth", "rel_abundance",
}

func (g Gottcha2Hit) TableName() string     { return "gottcha2_hits" }
func (g Gottcha2Hit) ColumnNames() []string { return gottcha2Columns }
func (g Gottcha2Hit) FieldCount() int       { return len(gottcha2Columns) }
func (g Gottcha2Hit) ConflictClause() string { return "" }

func (g Gottcha2Hit) Bind(args []any) []any {
	return append(args,
		g.SampleID, g.Level, g.Name, g.Taxid, g.ReadCount, g.TotalBpMapped,
		g.CoveredSigLen, g.AniCI95, g.BestSigCov, g.Depth, g.RelAbundance,
	)
}

func (g Gottcha2Hit) Validate() error {
	if g.SampleID == "" {
		return &MissingFieldError{Field: "sample_id"}
	}
	if g.Level == "" {
		return &MissingFieldError{Field: "level"}
	}
	if g.Name == "" {
		return &MissingFieldError{Field: "name"}
	}
	if g.Taxid == "" {
		return &MissingFieldError{Field: "taxid"}
	}
	return nil
}
