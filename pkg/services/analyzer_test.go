package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/config"
	"github.com/wolfdata/schemascan/pkg/models"
)

// rawSession builds uncleaned orders and customers datasets the way a
// loader would deliver them: every cell a string, with duplicates and
// missing markers mixed in.
func rawSession() map[string]*models.Dataset {
	orders := &models.Dataset{
		Name:    "orders",
		Columns: []string{"order_id", "customer_id", "amount"},
	}
	for i := 0; i < 150; i++ {
		orders.Rows = append(orders.Rows, []any{
			fmt.Sprintf("%d", 1000+i),
			fmt.Sprintf("%d", 1+i%20),
			fmt.Sprintf("$%d.50", 10+i%40),
		})
	}
	// Exact duplicate of the first row.
	orders.Rows = append(orders.Rows, []any{"1000", "1", "$10.50"})

	customers := &models.Dataset{
		Name:    "customers",
		Columns: []string{"customer_id", "name", "region"},
	}
	for i := 0; i < 20; i++ {
		region := []string{"north", "south"}[i%2]
		if i == 19 {
			region = "NA"
		}
		customers.Rows = append(customers.Rows, []any{
			fmt.Sprintf("%d", 1+i),
			fmt.Sprintf("customer %02d", i),
			region,
		})
	}
	return map[string]*models.Dataset{"orders": orders, "customers": customers}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	analyzer := NewAnalyzer(config.Default(), zap.NewNop())

	result, err := analyzer.Analyze(context.Background(), rawSession())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.RunID)
	assert.Equal(t, []string{"customers", "orders"}, result.DatasetNames)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	ordersStatus := result.Statuses["orders"]
	assert.Equal(t, models.DatasetStateOK, ordersStatus.State)
	assert.Equal(t, 1, ordersStatus.DuplicatesRemoved)

	customersStatus := result.Statuses["customers"]
	assert.Equal(t, models.DatasetStateOK, customersStatus.State)
	assert.Equal(t, 1, customersStatus.MissingCells)

	// Currency strings coerced to numbers upstream of profiling.
	require.Contains(t, result.Profiles, "orders")
	for _, p := range result.Profiles["orders"] {
		if p.ColumnName == "amount" {
			assert.Equal(t, models.TypeNumeric, p.SemanticType)
		}
	}

	require.Contains(t, result.KeyCandidates, "orders")
	topKey := result.KeyCandidates["orders"][0]
	assert.Equal(t, []string{"order_id"}, topKey.Columns)

	assert.Equal(t, models.RoleFact, result.Roles["orders"].Role)
	assert.Equal(t, models.RoleDimension, result.Roles["customers"].Role)

	require.Len(t, result.Relationships, 1)
	rel := result.Relationships[0]
	assert.Equal(t, "orders", rel.SourceDataset)
	assert.Equal(t, "customers", rel.TargetDataset)
	assert.Equal(t, "customer_id", rel.SourceColumn)
	assert.Equal(t, "customer_id", rel.TargetColumn)
	assert.Equal(t, models.DirectionTarget, rel.Direction)
	assert.GreaterOrEqual(t, rel.MatchStrength, 0.9)

	require.Len(t, result.Dictionary["orders"], 3)
	require.Len(t, result.Dictionary["customers"], 3)
}

func TestAnalyzePartialFailure(t *testing.T) {
	analyzer := NewAnalyzer(config.Default(), zap.NewNop())

	session := rawSession()
	session["broken"] = &models.Dataset{Name: "broken"}

	result, err := analyzer.Analyze(context.Background(), session)
	require.NoError(t, err)

	broken := result.Statuses["broken"]
	assert.Equal(t, models.DatasetStateFailed, broken.State)
	assert.NotEmpty(t, broken.Error)
	assert.NotContains(t, result.Datasets, "broken")

	// The surviving datasets still produce full output.
	assert.Equal(t, models.DatasetStateOK, result.Statuses["orders"].State)
	assert.Equal(t, models.DatasetStateOK, result.Statuses["customers"].State)
	assert.Len(t, result.Relationships, 1)
}

func TestAnalyzeEmptySession(t *testing.T) {
	analyzer := NewAnalyzer(config.Default(), zap.NewNop())

	result, err := analyzer.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.DatasetNames)
	assert.Empty(t, result.Relationships)
}

func TestAnalyzeCancelledContext(t *testing.T) {
	analyzer := NewAnalyzer(config.Default(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analyzer.Analyze(ctx, rawSession())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeSingleWorkerDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 1
	analyzer := NewAnalyzer(cfg, zap.NewNop())

	first, err := analyzer.Analyze(context.Background(), rawSession())
	require.NoError(t, err)
	second, err := analyzer.Analyze(context.Background(), rawSession())
	require.NoError(t, err)

	assert.Equal(t, first.DatasetNames, second.DatasetNames)
	assert.Equal(t, first.Relationships, second.Relationships)
	assert.Equal(t, first.KeyCandidates, second.KeyCandidates)
	assert.Equal(t, first.Roles, second.Roles)
}
