package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/config"
	"github.com/wolfdata/schemascan/pkg/models"
)

// ProfileService computes per-column statistics for a canonical dataset.
// Profiling is deterministic and side-effect-free; every downstream stage
// consumes its output.
type ProfileService interface {
	Profile(dataset *models.Dataset) []models.ColumnProfile
}

type profileService struct {
	cfg    config.ProfileConfig
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(cfg config.ProfileConfig, logger *zap.Logger) ProfileService {
	return &profileService{
		cfg:    cfg,
		logger: logger.Named("profiler"),
	}
}

var _ ProfileService = (*profileService)(nil)

// typeRule is one step of the ordered semantic-type decision chain. The
// first matching rule wins; the chain is explicit so it can be audited and
// tested as data.
type typeRule struct {
	outcome models.SemanticType
	match   func(*profileService, *columnStats) bool
}

var typeRules = []typeRule{
	{models.TypeBoolean, func(_ *profileService, c *columnStats) bool {
		return c.nonMissing > 0 && c.boolCount == c.nonMissing
	}},
	{models.TypeNumeric, func(_ *profileService, c *columnStats) bool {
		return c.nonMissing > 0 && c.numericCount == c.nonMissing
	}},
	{models.TypeDate, func(_ *profileService, c *columnStats) bool {
		return c.dateTagged || (c.nonMissing > 0 && c.dateCount == c.nonMissing)
	}},
	{models.TypeIdentifier, func(s *profileService, c *columnStats) bool {
		return c.distinctRatio >= s.cfg.IdentifierDistinctRatio &&
			c.avgLength > 0 && c.avgLength <= s.cfg.IdentifierMaxAvgLength
	}},
	{models.TypeText, func(_ *profileService, _ *columnStats) bool {
		return true
	}},
}

// columnStats is the raw material a typeRule decides on.
type columnStats struct {
	nonMissing    int
	boolCount     int
	numericCount  int
	dateCount     int
	dateTagged    bool
	distinctRatio float64
	avgLength     float64
}

func (s *profileService) Profile(dataset *models.Dataset) []models.ColumnProfile {
	profiles := make([]models.ColumnProfile, 0, len(dataset.Columns))
	rowCount := dataset.RowCount()

	for i, col := range dataset.Columns {
		stats := columnStats{dateTagged: dataset.IsDateColumn(col)}
		distinct := make(map[string]struct{})
		var samples []string
		totalLength := 0
		missing := 0

		for _, row := range dataset.Rows {
			cell := row[i]
			if cell == nil {
				missing++
				continue
			}
			stats.nonMissing++
			switch cell.(type) {
			case bool:
				stats.boolCount++
			case float64:
				stats.numericCount++
			case time.Time:
				stats.dateCount++
			}
			formatted := models.FormatValue(cell)
			totalLength += len(formatted)
			if _, ok := distinct[formatted]; !ok {
				distinct[formatted] = struct{}{}
				if len(samples) < s.cfg.SampleSize {
					samples = append(samples, formatted)
				}
			}
		}

		// Ratios are defined as 0 when the denominator is 0 so single-row
		// and empty datasets never divide by zero.
		missingRatio := 0.0
		if rowCount > 0 {
			missingRatio = float64(missing) / float64(rowCount)
		}
		if stats.nonMissing > 0 {
			stats.distinctRatio = float64(len(distinct)) / float64(stats.nonMissing)
			stats.avgLength = float64(totalLength) / float64(stats.nonMissing)
		}

		profile := models.ColumnProfile{
			DatasetName:   dataset.Name,
			ColumnName:    col,
			SemanticType:  s.decideType(&stats),
			RowCount:      rowCount,
			MissingCount:  missing,
			MissingRatio:  missingRatio,
			DistinctCount: len(distinct),
			DistinctRatio: stats.distinctRatio,
			AvgTextLength: stats.avgLength,
			SampleValues:  samples,
		}
		if failures := dataset.CoercionFailures[col]; failures > 0 {
			profile.Note = fmt.Sprintf("left as text: %d values failed numeric coercion", failures)
		}
		profiles = append(profiles, profile)
	}

	s.logger.Debug("Dataset profiled",
		zap.String("dataset", dataset.Name),
		zap.Int("columns", len(profiles)))
	return profiles
}

func (s *profileService) decideType(stats *columnStats) models.SemanticType {
	for _, rule := range typeRules {
		if rule.match(s, stats) {
			return rule.outcome
		}
	}
	return models.TypeText
}
