package models

// DataDictionaryEntry is the human-readable description of one column,
// synthesized from its profile and key-candidate membership. Entries are
// purely derived and regenerated wholesale on each run.
type DataDictionaryEntry struct {
	DatasetName     string `json:"dataset_name" yaml:"dataset_name"`
	ColumnName      string `json:"column_name" yaml:"column_name"`
	RoleDescription string `json:"role_description" yaml:"role_description"`
	UniquenessNote  string `json:"uniqueness_note" yaml:"uniqueness_note"`
	SampleNote      string `json:"sample_note" yaml:"sample_note"`
}
