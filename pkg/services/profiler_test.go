package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/config"
	"github.com/wolfdata/schemascan/pkg/models"
)

func newProfiler(t *testing.T) ProfileService {
	t.Helper()
	return NewProfileService(config.Default().Profile, zap.NewNop())
}

func TestProfileCounts(t *testing.T) {
	svc := newProfiler(t)

	dataset := &models.Dataset{
		Name:    "orders",
		Columns: []string{"amount"},
		Rows:    [][]any{{10.0}, {20.0}, {nil}, {10.0}},
	}

	profiles := svc.Profile(dataset)
	require.Len(t, profiles, 1)

	p := profiles[0]
	assert.Equal(t, "orders", p.DatasetName)
	assert.Equal(t, "amount", p.ColumnName)
	assert.Equal(t, 4, p.RowCount)
	assert.Equal(t, 1, p.MissingCount)
	assert.Equal(t, 3, p.NonMissingCount())
	assert.InDelta(t, 0.25, p.MissingRatio, 1e-9)
	assert.Equal(t, 2, p.DistinctCount)
	assert.InDelta(t, 2.0/3.0, p.DistinctRatio, 1e-9)
}

func TestProfileSemanticTypes(t *testing.T) {
	svc := newProfiler(t)

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dataset := &models.Dataset{
		Name:        "mixed",
		Columns:     []string{"active", "amount", "day", "code", "status"},
		DateColumns: map[string]bool{"day": true},
		Rows: [][]any{
			{true, 10.5, day, "A-100", "open"},
			{false, 11.0, day.AddDate(0, 0, 1), "A-101", "open"},
			{true, 12.0, day.AddDate(0, 0, 2), "A-102", "closed"},
			{false, 13.0, day.AddDate(0, 0, 3), "A-103", "open"},
		},
	}

	profiles := svc.Profile(dataset)
	require.Len(t, profiles, 5)

	byName := make(map[string]models.ColumnProfile, len(profiles))
	for _, p := range profiles {
		byName[p.ColumnName] = p
	}
	assert.Equal(t, models.TypeBoolean, byName["active"].SemanticType)
	assert.Equal(t, models.TypeNumeric, byName["amount"].SemanticType)
	assert.Equal(t, models.TypeDate, byName["day"].SemanticType)
	assert.Equal(t, models.TypeIdentifier, byName["code"].SemanticType)
	assert.Equal(t, models.TypeText, byName["status"].SemanticType)
}

func TestProfileIdentifierNeedsHighDistinctRatio(t *testing.T) {
	svc := newProfiler(t)

	// Short strings, but heavily repeated: text, not identifier.
	dataset := &models.Dataset{
		Name:    "repeats",
		Columns: []string{"region"},
		Rows:    [][]any{{"north"}, {"north"}, {"south"}, {"north"}},
	}

	profiles := svc.Profile(dataset)
	require.Len(t, profiles, 1)
	assert.Equal(t, models.TypeText, profiles[0].SemanticType)
}

func TestProfileIdentifierLengthCeiling(t *testing.T) {
	svc := newProfiler(t)

	long := func(i int) string {
		return fmt.Sprintf("%039d", i)
	}
	dataset := &models.Dataset{
		Name:    "hashes",
		Columns: []string{"digest"},
		Rows:    [][]any{{long(1)}, {long(2)}, {long(3)}},
	}

	profiles := svc.Profile(dataset)
	require.Len(t, profiles, 1)
	// Unique but too long on average to be identifier-like.
	assert.Equal(t, models.TypeText, profiles[0].SemanticType)
}

func TestProfileEmptyAndAllMissing(t *testing.T) {
	svc := newProfiler(t)

	dataset := &models.Dataset{
		Name:    "sparse",
		Columns: []string{"empty"},
		Rows:    [][]any{{nil}, {nil}},
	}

	profiles := svc.Profile(dataset)
	require.Len(t, profiles, 1)

	p := profiles[0]
	assert.Equal(t, models.TypeText, p.SemanticType)
	assert.Equal(t, 2, p.MissingCount)
	assert.Zero(t, p.DistinctCount)
	assert.Zero(t, p.DistinctRatio)
	assert.Zero(t, p.AvgTextLength)
}

func TestProfileZeroRows(t *testing.T) {
	svc := newProfiler(t)

	dataset := &models.Dataset{Name: "empty", Columns: []string{"a", "b"}}

	profiles := svc.Profile(dataset)
	require.Len(t, profiles, 2)
	for _, p := range profiles {
		assert.Zero(t, p.RowCount)
		assert.Zero(t, p.MissingRatio)
		assert.Zero(t, p.DistinctRatio)
	}
}

func TestProfileSampleValuesBounded(t *testing.T) {
	cfg := config.Default().Profile
	cfg.SampleSize = 3
	svc := NewProfileService(cfg, zap.NewNop())

	dataset := &models.Dataset{
		Name:    "many",
		Columns: []string{"v"},
		Rows:    [][]any{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}},
	}

	profiles := svc.Profile(dataset)
	require.Len(t, profiles, 1)
	assert.Equal(t, []string{"a", "b", "c"}, profiles[0].SampleValues)
}

func TestProfileCarriesCoercionNote(t *testing.T) {
	svc := newProfiler(t)

	dataset := &models.Dataset{
		Name:             "mixed",
		Columns:          []string{"value"},
		CoercionFailures: map[string]int{"value": 2},
		Rows:             [][]any{{"12"}, {"abc"}, {"xyz"}},
	}

	profiles := svc.Profile(dataset)
	require.Len(t, profiles, 1)
	assert.Contains(t, profiles[0].Note, "failed numeric coercion")
}
