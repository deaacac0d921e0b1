// Package report serializes the analysis output bundle for the display and
// export layers.
package report

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wolfdata/schemascan/pkg/models"
	"github.com/wolfdata/schemascan/pkg/services"
)

// Bundle is the YAML-friendly view of an analysis run: maps flattened into
// deterministically ordered lists.
type Bundle struct {
	RunID      string    `yaml:"run_id"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`

	Datasets      []DatasetReport                `yaml:"datasets"`
	Relationships []models.RelationshipCandidate `yaml:"relationships"`

	// ConnectedGroups lists datasets linked by candidate edges; Islands
	// are datasets with no detected relationships at all.
	ConnectedGroups [][]string `yaml:"connected_groups,omitempty"`
	Islands         []string   `yaml:"islands,omitempty"`
}

// DatasetReport is the per-dataset section of the bundle.
type DatasetReport struct {
	Name          string                       `yaml:"name"`
	Status        models.DatasetStatus         `yaml:"status"`
	Role          string                       `yaml:"role,omitempty"`
	RoleRationale string                       `yaml:"role_rationale,omitempty"`
	Profiles      []models.ColumnProfile       `yaml:"profiles,omitempty"`
	KeyCandidates []models.KeyCandidate        `yaml:"key_candidates,omitempty"`
	Dictionary    []models.DataDictionaryEntry `yaml:"dictionary,omitempty"`
}

// Build flattens an analysis result into a Bundle.
func Build(result *models.AnalysisResult) *Bundle {
	bundle := &Bundle{
		RunID:         result.RunID.String(),
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		Relationships: result.Relationships,
	}

	for _, name := range result.DatasetNames {
		section := DatasetReport{
			Name:          name,
			Status:        result.Statuses[name],
			Profiles:      result.Profiles[name],
			KeyCandidates: result.KeyCandidates[name],
			Dictionary:    result.Dictionary[name],
		}
		if role, ok := result.Roles[name]; ok {
			section.Role = string(role.Role)
			section.RoleRationale = role.Rationale
		}
		bundle.Datasets = append(bundle.Datasets, section)
	}

	graph := services.NewRelationshipGraph()
	for _, name := range result.OKDatasetNames() {
		graph.AddDataset(name)
	}
	for _, rel := range result.Relationships {
		graph.Add(rel)
	}
	components, islands := graph.FindConnectedComponents()
	for _, component := range components {
		bundle.ConnectedGroups = append(bundle.ConnectedGroups, component.Datasets)
	}
	bundle.Islands = islands

	return bundle
}

// Write encodes the bundle as YAML.
func Write(w io.Writer, result *models.AnalysisResult) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(Build(result)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return encoder.Close()
}
