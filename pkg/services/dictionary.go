package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/models"
)

// DictionaryService synthesizes a human-readable data dictionary entry per
// column from the profile and key-candidate output. It is a pure, stateless
// transform with no failure path: every column gets an entry, falling back
// to a generic description when no strong signal exists.
type DictionaryService interface {
	Build(profiles []models.ColumnProfile, keys []models.KeyCandidate) []models.DataDictionaryEntry
}

type dictionaryService struct {
	logger *zap.Logger
}

// NewDictionaryService creates a new DictionaryService.
func NewDictionaryService(logger *zap.Logger) DictionaryService {
	return &dictionaryService{logger: logger.Named("dictionary")}
}

var _ DictionaryService = (*dictionaryService)(nil)

func (s *dictionaryService) Build(profiles []models.ColumnProfile, keys []models.KeyCandidate) []models.DataDictionaryEntry {
	entries := make([]models.DataDictionaryEntry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, models.DataDictionaryEntry{
			DatasetName:     p.DatasetName,
			ColumnName:      p.ColumnName,
			RoleDescription: roleDescription(&p, keys),
			UniquenessNote:  uniquenessNote(&p),
			SampleNote:      sampleNote(&p),
		})
	}
	return entries
}

func roleDescription(p *models.ColumnProfile, keys []models.KeyCandidate) string {
	for _, k := range keys {
		if !k.Covers(p.ColumnName) {
			continue
		}
		if k.IsComposite() {
			return fmt.Sprintf("likely identifier (part of candidate key %s)", k.Label())
		}
		return "likely identifier (candidate key)"
	}

	switch p.SemanticType {
	case models.TypeIdentifier:
		return "likely identifier"
	case models.TypeNumeric:
		return "likely measure"
	case models.TypeDate:
		return "likely date or time attribute"
	case models.TypeBoolean:
		return "likely flag"
	}
	if p.DistinctCount > 0 && p.DistinctRatio < 0.2 {
		return "likely categorical attribute"
	}
	return "general attribute"
}

func uniquenessNote(p *models.ColumnProfile) string {
	if p.NonMissingCount() == 0 {
		return "no non-missing values"
	}
	return fmt.Sprintf("%d distinct across %d non-missing values (ratio %.2f)",
		p.DistinctCount, p.NonMissingCount(), p.DistinctRatio)
}

func sampleNote(p *models.ColumnProfile) string {
	if len(p.SampleValues) == 0 {
		return "no sample values available"
	}
	n := len(p.SampleValues)
	if n > 3 {
		n = 3
	}
	return "e.g. " + strings.Join(p.SampleValues[:n], ", ")
}
