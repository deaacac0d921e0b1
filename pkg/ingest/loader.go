// Package ingest loads delimited text and JSON files into in-memory
// datasets. Parsing stops at the raw table: all normalization and type
// coercion belongs to the engine's cleaning stage.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/apperrors"
	"github.com/wolfdata/schemascan/pkg/models"
)

// Loader reads dataset files from disk.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger.Named("ingest")}
}

// Load reads a single file into a raw dataset named after the file. CSV and
// JSON are supported; anything else is an error.
func (l *Loader) Load(path string) (*models.Dataset, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch ext {
	case ".csv":
		return l.loadCSV(path, name)
	case ".json":
		return l.loadJSON(path, name)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

// LoadAll reads every given path. Unreadable or unsupported files are
// skipped with a warning and returned by name; a duplicate dataset name is
// an error because dataset identity within a session is its name.
func (l *Loader) LoadAll(paths []string) (map[string]*models.Dataset, []string, error) {
	datasets := make(map[string]*models.Dataset, len(paths))
	var skipped []string

	for _, path := range paths {
		dataset, err := l.Load(path)
		if err != nil {
			l.logger.Warn("Skipping file",
				zap.String("path", path),
				zap.Error(err))
			skipped = append(skipped, path)
			continue
		}
		if _, exists := datasets[dataset.Name]; exists {
			return nil, nil, fmt.Errorf("dataset %q: %w", dataset.Name, apperrors.ErrDuplicateDataset)
		}
		datasets[dataset.Name] = dataset
	}
	return datasets, skipped, nil
}

func (l *Loader) loadCSV(path, name string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %q: %w", name, apperrors.ErrEmptyDataset)
	}

	dataset := &models.Dataset{
		Name:    name,
		Columns: records[0],
	}
	for _, record := range records[1:] {
		row := make([]any, len(dataset.Columns))
		for i := range dataset.Columns {
			if i < len(record) {
				row[i] = record[i]
			}
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset, nil
}

// loadJSON reads an array of flat objects. Column order is the sorted
// union of keys so loading is deterministic regardless of map iteration.
func (l *Loader) loadJSON(path, name string) (*models.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	keySet := make(map[string]bool)
	for _, record := range records {
		for key := range record {
			keySet[key] = true
		}
	}
	columns := make([]string, 0, len(keySet))
	for key := range keySet {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset %q: %w", name, apperrors.ErrEmptyDataset)
	}

	dataset := &models.Dataset{
		Name:    name,
		Columns: columns,
	}
	for _, record := range records {
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = jsonCell(record[col])
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset, nil
}

// jsonCell keeps scalars and flattens anything nested to its JSON text so
// the table stays scalar-valued.
func jsonCell(v any) any {
	switch v.(type) {
	case nil, string, float64, bool:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(raw)
	}
}
