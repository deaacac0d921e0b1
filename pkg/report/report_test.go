package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wolfdata/schemascan/pkg/models"
)

func resultFixture() *models.AnalysisResult {
	started := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	return &models.AnalysisResult{
		RunID:        uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		StartedAt:    started,
		FinishedAt:   started.Add(time.Second),
		DatasetNames: []string{"customers", "orders", "scrap"},
		Statuses: map[string]models.DatasetStatus{
			"customers": {DatasetName: "customers", State: models.DatasetStateOK},
			"orders":    {DatasetName: "orders", State: models.DatasetStateOK, DuplicatesRemoved: 2},
			"scrap":     {DatasetName: "scrap", State: models.DatasetStateFailed, Error: "dataset has no columns"},
		},
		Profiles: map[string][]models.ColumnProfile{
			"orders": {{DatasetName: "orders", ColumnName: "order_id", SemanticType: models.TypeNumeric}},
		},
		KeyCandidates: map[string][]models.KeyCandidate{
			"orders": {{DatasetName: "orders", Columns: []string{"order_id"}, UniquenessRatio: 1, Confidence: 1}},
		},
		Roles: map[string]models.RoleAssignment{
			"customers": {DatasetName: "customers", Role: models.RoleDimension, Rationale: "confident unique key"},
			"orders":    {DatasetName: "orders", Role: models.RoleFact, Rationale: "mostly numeric"},
		},
		Dictionary: map[string][]models.DataDictionaryEntry{
			"orders": {{DatasetName: "orders", ColumnName: "order_id", RoleDescription: "likely identifier (candidate key)"}},
		},
		Relationships: []models.RelationshipCandidate{
			{
				SourceDataset: "orders", SourceColumn: "customer_id",
				TargetDataset: "customers", TargetColumn: "customer_id",
				MatchStrength: 0.95, Direction: models.DirectionTarget,
			},
		},
	}
}

func TestBuild(t *testing.T) {
	bundle := Build(resultFixture())

	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", bundle.RunID)
	require.Len(t, bundle.Datasets, 3)

	// Sections follow the deterministic dataset order.
	assert.Equal(t, "customers", bundle.Datasets[0].Name)
	assert.Equal(t, "orders", bundle.Datasets[1].Name)
	assert.Equal(t, "scrap", bundle.Datasets[2].Name)

	orders := bundle.Datasets[1]
	assert.Equal(t, "fact", orders.Role)
	assert.Len(t, orders.KeyCandidates, 1)
	assert.Len(t, orders.Dictionary, 1)

	scrap := bundle.Datasets[2]
	assert.Empty(t, scrap.Role)
	assert.Equal(t, models.DatasetStateFailed, scrap.Status.State)

	require.Len(t, bundle.ConnectedGroups, 1)
	assert.Equal(t, []string{"customers", "orders"}, bundle.ConnectedGroups[0])
	assert.Empty(t, bundle.Islands)
}

func TestBuildIslands(t *testing.T) {
	result := resultFixture()
	result.Relationships = nil

	bundle := Build(result)
	assert.Empty(t, bundle.ConnectedGroups)
	assert.Equal(t, []string{"customers", "orders"}, bundle.Islands)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, resultFixture()))

	out := buf.String()
	assert.Contains(t, out, "run_id: 6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Contains(t, out, "source_dataset: orders")

	// The document must round-trip as valid YAML.
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "datasets")
	assert.Contains(t, decoded, "relationships")
}
