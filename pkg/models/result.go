package models

import (
	"time"

	"github.com/google/uuid"
)

// DatasetState is the processing outcome for one dataset within a run.
type DatasetState string

const (
	DatasetStateOK     DatasetState = "ok"
	DatasetStateFailed DatasetState = "failed"
)

// DatasetStatus records the per-dataset processing outcome. A failed
// dataset never aborts the session; its status carries the error while the
// other datasets continue. Notes record silent degrades (e.g. ambiguous
// numeric coercion) so no degrade is ever dropped unreported.
type DatasetStatus struct {
	DatasetName string       `json:"dataset_name" yaml:"dataset_name"`
	State       DatasetState `json:"state" yaml:"state"`
	Error       string       `json:"error,omitempty" yaml:"error,omitempty"`
	Notes       []string     `json:"notes,omitempty" yaml:"notes,omitempty"`

	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`
	MissingCells      int `json:"missing_cells" yaml:"missing_cells"`
}

// AnalysisResult is the complete output bundle of one analysis run,
// consumed by the diagram renderer, the export routine, and the display
// layer. Maps are keyed by dataset name; DatasetNames preserves the
// deterministic processing order.
type AnalysisResult struct {
	RunID      uuid.UUID `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	DatasetNames []string `json:"dataset_names" yaml:"dataset_names"`

	Datasets      map[string]*Dataset              `json:"-" yaml:"-"`
	Profiles      map[string][]ColumnProfile       `json:"profiles" yaml:"profiles"`
	KeyCandidates map[string][]KeyCandidate        `json:"key_candidates" yaml:"key_candidates"`
	Roles         map[string]RoleAssignment        `json:"roles" yaml:"roles"`
	Dictionary    map[string][]DataDictionaryEntry `json:"dictionary" yaml:"dictionary"`
	Statuses      map[string]DatasetStatus         `json:"statuses" yaml:"statuses"`

	// Relationships is the edge set of the relationship graph: no
	// self-loops, at most one edge per unordered column pair.
	Relationships []RelationshipCandidate `json:"relationships" yaml:"relationships"`
}

// OKDatasetNames returns, in processing order, the datasets that survived
// cleaning and profiling.
func (r *AnalysisResult) OKDatasetNames() []string {
	names := make([]string, 0, len(r.DatasetNames))
	for _, name := range r.DatasetNames {
		if r.Statuses[name].State == DatasetStateOK {
			names = append(names, name)
		}
	}
	return names
}
