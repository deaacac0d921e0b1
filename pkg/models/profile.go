package models

// SemanticType is the inferred meaning of a column, decided by an ordered
// rule chain (boolean before numeric before date before identifier before
// text). Ties always resolve to the earlier type.
type SemanticType string

const (
	TypeBoolean    SemanticType = "boolean"
	TypeNumeric    SemanticType = "numeric"
	TypeDate       SemanticType = "date"
	TypeIdentifier SemanticType = "identifier"
	TypeText       SemanticType = "text"
)

// ValidSemanticTypes contains all valid semantic type values.
var ValidSemanticTypes = []SemanticType{
	TypeBoolean,
	TypeNumeric,
	TypeDate,
	TypeIdentifier,
	TypeText,
}

// IsValidSemanticType checks if the given type is valid.
func IsValidSemanticType(t SemanticType) bool {
	for _, v := range ValidSemanticTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ColumnProfile holds per-column statistics for one canonical dataset.
// Profiles are never mutated after creation; re-analysis supersedes them
// with fresh ones.
type ColumnProfile struct {
	DatasetName  string       `json:"dataset_name" yaml:"dataset_name"`
	ColumnName   string       `json:"column_name" yaml:"column_name"`
	SemanticType SemanticType `json:"semantic_type" yaml:"semantic_type"`

	RowCount      int     `json:"row_count" yaml:"row_count"`
	MissingCount  int     `json:"missing_count" yaml:"missing_count"`
	MissingRatio  float64 `json:"missing_ratio" yaml:"missing_ratio"`
	DistinctCount int     `json:"distinct_count" yaml:"distinct_count"`
	// DistinctRatio is distinct count over non-missing count, 0 when the
	// column has no non-missing values.
	DistinctRatio float64 `json:"distinct_ratio" yaml:"distinct_ratio"`

	// AvgTextLength is the mean length of non-missing values in canonical
	// string form. Used by the identifier-like rule.
	AvgTextLength float64 `json:"avg_text_length" yaml:"avg_text_length"`

	// SampleValues is a small bounded set of distinct canonical values.
	SampleValues []string `json:"sample_values,omitempty" yaml:"sample_values,omitempty"`

	// Note records silent degrades, e.g. a column left as text because
	// numeric coercion was ambiguous.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// NonMissingCount returns row count minus missing count.
func (p *ColumnProfile) NonMissingCount() int {
	return p.RowCount - p.MissingCount
}
