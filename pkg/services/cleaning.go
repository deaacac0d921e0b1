package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/apperrors"
	"github.com/wolfdata/schemascan/pkg/config"
	"github.com/wolfdata/schemascan/pkg/models"
)

// CleaningOutcome bundles the canonical dataset with the per-dataset
// metrics surfaced in the run status.
type CleaningOutcome struct {
	Dataset           *models.Dataset
	DuplicatesRemoved int
	MissingCells      int
	// Notes records silent degrades, e.g. columns left as text because
	// numeric coercion was ambiguous.
	Notes []string
}

// CleaningService normalizes a raw dataset into its canonical form:
// whitespace trimmed, exact duplicate rows removed, unambiguously numeric
// text columns coerced, date-like text columns tagged. The input dataset is
// never mutated. Cleaning is idempotent: re-cleaning a canonical dataset
// changes nothing.
type CleaningService interface {
	Clean(raw *models.Dataset) (*CleaningOutcome, error)
}

type cleaningService struct {
	cfg    config.CleaningConfig
	logger *zap.Logger
}

// NewCleaningService creates a new CleaningService.
func NewCleaningService(cfg config.CleaningConfig, logger *zap.Logger) CleaningService {
	return &cleaningService{
		cfg:    cfg,
		logger: logger.Named("cleaning"),
	}
}

var _ CleaningService = (*cleaningService)(nil)

// missingMarkers are text values treated as missing after trimming.
var missingMarkers = map[string]bool{
	"": true, "na": true, "n/a": true, "null": true, "none": true, "nan": true,
}

// dateLayouts are tried in order when tagging date-candidate columns.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// numericJunk is stripped before a numeric coercion attempt (currency
// symbols, thousands separators, percent signs).
var numericJunk = strings.NewReplacer("$", "", "€", "", "£", "", "₹", "", ",", "", "%", "", " ", "")

func (s *cleaningService) Clean(raw *models.Dataset) (*CleaningOutcome, error) {
	if len(raw.Columns) == 0 {
		return nil, fmt.Errorf("dataset %q: %w", raw.Name, apperrors.ErrEmptyDataset)
	}

	canonical := &models.Dataset{
		Name:             raw.Name,
		Columns:          make([]string, len(raw.Columns)),
		DateColumns:      make(map[string]bool),
		CoercionFailures: make(map[string]int),
	}
	for i, c := range raw.Columns {
		canonical.Columns[i] = strings.TrimSpace(c)
	}

	for _, row := range raw.Rows {
		normalized := make([]any, len(canonical.Columns))
		for i := range canonical.Columns {
			var cell any
			if i < len(row) {
				cell = normalizeCell(row[i])
			}
			normalized[i] = cell
		}
		canonical.Rows = append(canonical.Rows, normalized)
	}

	var notes []string
	for i, col := range canonical.Columns {
		note := s.coerceColumn(canonical, i, col)
		if note != "" {
			notes = append(notes, note)
		}
	}

	// Row equality is judged on canonical values, so dedup runs after
	// coercion: "1.0" and "1" are the same row once both become numbers.
	seen := make(map[string]bool, len(canonical.Rows))
	kept := canonical.Rows[:0]
	duplicates := 0
	for _, row := range canonical.Rows {
		sig := rowSignature(row)
		if seen[sig] {
			duplicates++
			continue
		}
		seen[sig] = true
		kept = append(kept, row)
	}
	canonical.Rows = kept

	missing := 0
	for _, row := range canonical.Rows {
		for _, cell := range row {
			if cell == nil {
				missing++
			}
		}
	}

	s.logger.Debug("Dataset cleaned",
		zap.String("dataset", canonical.Name),
		zap.Int("rows", len(canonical.Rows)),
		zap.Int("duplicates_removed", duplicates),
		zap.Int("missing_cells", missing))

	return &CleaningOutcome{
		Dataset:           canonical,
		DuplicatesRemoved: duplicates,
		MissingCells:      missing,
		Notes:             notes,
	}, nil
}

// coerceColumn applies the all-or-nothing numeric coercion, boolean
// coercion, and date tagging to column i. Returns a note when the column
// was left as text after an ambiguous coercion attempt.
func (s *cleaningService) coerceColumn(d *models.Dataset, i int, col string) string {
	// Already-canonical date columns keep their tag so cleaning stays
	// idempotent.
	if allNonMissingAre[time.Time](d, i) {
		d.DateColumns[col] = true
		return ""
	}
	if !allNonMissingAre[string](d, i) {
		return ""
	}

	if coerceBoolColumn(d, i) {
		return ""
	}

	parsed, failures := tryNumericColumn(d, i)
	if failures == 0 && parsed > 0 {
		applyNumericColumn(d, i)
		return ""
	}
	if failures > 0 && parsed > 0 {
		// Ambiguous: some values look numeric, some do not. Leave the
		// column as text and record the degrade.
		d.CoercionFailures[col] = failures
		return fmt.Sprintf("column %q left as text: %d of %d values failed numeric coercion",
			col, failures, parsed+failures)
	}

	if s.tagDateColumn(d, i, col) {
		d.DateColumns[col] = true
	}
	return ""
}

func normalizeCell(v any) any {
	str, ok := v.(string)
	if !ok {
		return v
	}
	str = strings.ReplaceAll(str, "\r", " ")
	str = strings.ReplaceAll(str, "\n", " ")
	str = strings.TrimSpace(str)
	if missingMarkers[strings.ToLower(str)] {
		return nil
	}
	return str
}

func rowSignature(row []any) string {
	var sb strings.Builder
	for i, cell := range row {
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		sb.WriteString(cellKind(cell))
		sb.WriteByte(':')
		sb.WriteString(models.FormatValue(cell))
	}
	return sb.String()
}

func cellKind(v any) string {
	switch v.(type) {
	case nil:
		return "_"
	case string:
		return "s"
	case float64:
		return "f"
	case bool:
		return "b"
	case time.Time:
		return "t"
	default:
		return "?"
	}
}

// allNonMissingAre reports whether every non-missing cell of column i has
// type T and at least one non-missing cell exists.
func allNonMissingAre[T any](d *models.Dataset, i int) bool {
	found := false
	for _, row := range d.Rows {
		if row[i] == nil {
			continue
		}
		if _, ok := row[i].(T); !ok {
			return false
		}
		found = true
	}
	return found
}

func coerceBoolColumn(d *models.Dataset, i int) bool {
	for _, row := range d.Rows {
		if row[i] == nil {
			continue
		}
		str := strings.ToLower(row[i].(string))
		if str != "true" && str != "false" {
			return false
		}
	}
	applied := false
	for _, row := range d.Rows {
		if row[i] == nil {
			continue
		}
		row[i] = strings.EqualFold(row[i].(string), "true")
		applied = true
	}
	return applied
}

func tryNumericColumn(d *models.Dataset, i int) (parsed, failures int) {
	for _, row := range d.Rows {
		if row[i] == nil {
			continue
		}
		if _, err := parseNumeric(row[i].(string)); err != nil {
			failures++
		} else {
			parsed++
		}
	}
	return parsed, failures
}

func applyNumericColumn(d *models.Dataset, i int) {
	for _, row := range d.Rows {
		if row[i] == nil {
			continue
		}
		n, err := parseNumeric(row[i].(string))
		if err != nil {
			row[i] = nil
			continue
		}
		row[i] = n
	}
}

func parseNumeric(s string) (float64, error) {
	return strconv.ParseFloat(numericJunk.Replace(s), 64)
}

// tagDateColumn tags column i as a date-candidate when at least the
// configured fraction of its non-missing values parse as dates. Parsed
// values become time.Time; failed parses in a tagged column become missing
// rather than raising.
func (s *cleaningService) tagDateColumn(d *models.Dataset, i int, col string) bool {
	total := 0
	ok := 0
	for _, row := range d.Rows {
		if row[i] == nil {
			continue
		}
		total++
		if _, err := parseDate(row[i].(string)); err == nil {
			ok++
		}
	}
	if total == 0 || float64(ok)/float64(total) < s.cfg.DateTagThreshold {
		return false
	}
	for _, row := range d.Rows {
		if row[i] == nil {
			continue
		}
		t, err := parseDate(row[i].(string))
		if err != nil {
			row[i] = nil
			continue
		}
		row[i] = t
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no date layout matched %q", s)
}
