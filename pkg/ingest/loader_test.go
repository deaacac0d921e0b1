package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/apperrors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	path := writeFile(t, t.TempDir(), "orders.csv",
		"order_id,customer_id,amount\n1,10,5.00\n2,11,6.50\n3,10,\n")

	dataset, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "orders", dataset.Name)
	assert.Equal(t, []string{"order_id", "customer_id", "amount"}, dataset.Columns)
	require.Len(t, dataset.Rows, 3)
	// Cells stay raw strings; coercion belongs to the cleaning stage.
	assert.Equal(t, "1", dataset.Rows[0][0])
	assert.Equal(t, "", dataset.Rows[2][2])
}

func TestLoadCSVRaggedRows(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	path := writeFile(t, t.TempDir(), "ragged.csv", "a,b,c\n1,2\n")

	dataset, err := loader.Load(path)
	require.NoError(t, err)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "2", dataset.Rows[0][1])
	assert.Nil(t, dataset.Rows[0][2])
}

func TestLoadJSON(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	path := writeFile(t, t.TempDir(), "customers.json",
		`[{"id": 1, "name": "ada", "tags": ["a", "b"]}, {"id": 2, "active": true}]`)

	dataset, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "customers", dataset.Name)
	// Columns are the sorted union of object keys.
	assert.Equal(t, []string{"active", "id", "name", "tags"}, dataset.Columns)
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, 1.0, dataset.Rows[0][1])
	// Nested values flatten to their JSON text.
	assert.Equal(t, `["a","b"]`, dataset.Rows[0][3])
	assert.Equal(t, true, dataset.Rows[1][0])
	assert.Nil(t, dataset.Rows[1][2])
}

func TestLoadUnsupportedExtension(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	path := writeFile(t, t.TempDir(), "notes.txt", "hello")

	_, err := loader.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoadEmptyCSV(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	path := writeFile(t, t.TempDir(), "empty.csv", "")

	_, err := loader.Load(path)
	require.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestLoadAllSkipsBadFiles(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", "a\n1\n")
	bad := writeFile(t, dir, "bad.txt", "nope")

	datasets, skipped, err := loader.LoadAll([]string{good, bad, filepath.Join(dir, "missing.csv")})
	require.NoError(t, err)
	assert.Len(t, datasets, 1)
	assert.Contains(t, datasets, "good")
	assert.Len(t, skipped, 2)
}

func TestLoadAllRejectsDuplicateNames(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	dir := t.TempDir()
	a := writeFile(t, dir, "orders.csv", "a\n1\n")

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	b := writeFile(t, sub, "orders.csv", "b\n2\n")

	_, _, err := loader.LoadAll([]string{a, b})
	require.ErrorIs(t, err, apperrors.ErrDuplicateDataset)
}
