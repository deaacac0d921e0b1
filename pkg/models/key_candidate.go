package models

import "strings"

// KeyCandidate is a column (or ordered column set) hypothesized to uniquely
// identify rows of a dataset. Candidates are derived from profiles and
// recomputed on every run; multiple candidates per dataset coexist, ranked
// by confidence descending.
type KeyCandidate struct {
	DatasetName string   `json:"dataset_name" yaml:"dataset_name"`
	Columns     []string `json:"columns" yaml:"columns"`

	UniquenessRatio float64 `json:"uniqueness_ratio" yaml:"uniqueness_ratio"`
	MissingRatio    float64 `json:"missing_ratio" yaml:"missing_ratio"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`
}

// IsComposite reports whether the candidate spans more than one column.
func (k *KeyCandidate) IsComposite() bool {
	return len(k.Columns) > 1
}

// Covers reports whether the candidate includes the named column.
func (k *KeyCandidate) Covers(column string) bool {
	for _, c := range k.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Label renders the candidate's column set for display, e.g. "order_id" or
// "region+customer_id".
func (k *KeyCandidate) Label() string {
	return strings.Join(k.Columns, "+")
}
