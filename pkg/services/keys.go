package services

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/config"
	"github.com/wolfdata/schemascan/pkg/models"
)

// KeyService ranks columns (and, when needed, column pairs) by suitability
// as a unique identifier. It is the anchor for relationship direction
// hints, so detection is deterministic given the same input. An empty
// result is valid; datasets with fewer than two rows yield no candidates.
type KeyService interface {
	Detect(dataset *models.Dataset, profiles []models.ColumnProfile) []models.KeyCandidate
}

type keyService struct {
	cfg    config.KeyConfig
	logger *zap.Logger
}

// NewKeyService creates a new KeyService.
func NewKeyService(cfg config.KeyConfig, logger *zap.Logger) KeyService {
	return &keyService{
		cfg:    cfg,
		logger: logger.Named("key-detection"),
	}
}

var _ KeyService = (*keyService)(nil)

// IsConfident reports whether a candidate clears the high-confidence bar:
// full (or near-full) uniqueness with no missing values.
func (s *keyService) isConfident(c models.KeyCandidate) bool {
	return c.UniquenessRatio >= s.cfg.ConfidenceThreshold && c.MissingRatio == 0
}

func (s *keyService) Detect(dataset *models.Dataset, profiles []models.ColumnProfile) []models.KeyCandidate {
	if dataset.RowCount() < 2 {
		return nil
	}

	var candidates []models.KeyCandidate
	confident := false
	for _, p := range profiles {
		// A key field should not be null: columns above the missing
		// ceiling are excluded outright.
		if p.MissingRatio > s.cfg.MissingRatioCeiling {
			continue
		}
		confidence := p.DistinctRatio - s.cfg.MissingPenaltyWeight*p.MissingRatio
		if confidence < 0 {
			confidence = 0
		}
		candidate := models.KeyCandidate{
			DatasetName:     dataset.Name,
			Columns:         []string{p.ColumnName},
			UniquenessRatio: p.DistinctRatio,
			MissingRatio:    p.MissingRatio,
			Confidence:      confidence,
		}
		if s.isConfident(candidate) {
			confident = true
		}
		if confidence >= s.cfg.MinConfidence {
			candidates = append(candidates, candidate)
		}
	}

	// Composite candidacy is only attempted when no single column is
	// confident on its own.
	if !confident {
		if pair, ok := s.findPairCandidate(dataset, profiles); ok {
			candidates = append(candidates, pair)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Label() < candidates[j].Label()
	})

	s.logger.Debug("Key candidates detected",
		zap.String("dataset", dataset.Name),
		zap.Int("candidates", len(candidates)))
	return candidates
}

// findPairCandidate tests column pairs ordered by individual uniqueness
// descending, up to the configured combination budget, and accepts the
// first pair whose combined uniqueness clears the confidence threshold.
func (s *keyService) findPairCandidate(dataset *models.Dataset, profiles []models.ColumnProfile) (models.KeyCandidate, bool) {
	eligible := make([]models.ColumnProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.MissingRatio <= s.cfg.MissingRatioCeiling {
			eligible = append(eligible, p)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].DistinctRatio > eligible[j].DistinctRatio
	})

	tested := 0
	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			if tested >= s.cfg.MaxPairCombinations {
				return models.KeyCandidate{}, false
			}
			tested++

			colA, colB := eligible[i].ColumnName, eligible[j].ColumnName
			uniqueness, missingRatio := pairStats(dataset, colA, colB)
			if missingRatio > s.cfg.MissingRatioCeiling {
				continue
			}
			if uniqueness < s.cfg.ConfidenceThreshold {
				continue
			}
			return models.KeyCandidate{
				DatasetName:     dataset.Name,
				Columns:         []string{colA, colB},
				UniquenessRatio: uniqueness,
				MissingRatio:    missingRatio,
				Confidence:      uniqueness - s.cfg.MissingPenaltyWeight*missingRatio,
			}, true
		}
	}
	return models.KeyCandidate{}, false
}

// pairStats returns the combined uniqueness ratio (distinct pairs over row
// count) and the fraction of rows where either side is missing.
func pairStats(dataset *models.Dataset, colA, colB string) (uniqueness, missingRatio float64) {
	idxA := dataset.ColumnIndex(colA)
	idxB := dataset.ColumnIndex(colB)
	rowCount := dataset.RowCount()
	if idxA < 0 || idxB < 0 || rowCount == 0 {
		return 0, 0
	}

	distinct := make(map[string]struct{}, rowCount)
	missing := 0
	for _, row := range dataset.Rows {
		if row[idxA] == nil || row[idxB] == nil {
			missing++
			continue
		}
		var sb strings.Builder
		sb.WriteString(models.FormatValue(row[idxA]))
		sb.WriteByte('\x1f')
		sb.WriteString(models.FormatValue(row[idxB]))
		distinct[sb.String()] = struct{}{}
	}
	return float64(len(distinct)) / float64(rowCount), float64(missing) / float64(rowCount)
}
