package services

import (
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/config"
	"github.com/wolfdata/schemascan/pkg/models"
)

// Snapshot is the read-only session-wide input to relationship detection:
// every canonical dataset with its profiles and key candidates, gathered in
// deterministic order before the cross-dataset scan begins.
type Snapshot struct {
	DatasetNames []string
	Datasets     map[string]*models.Dataset
	Profiles     map[string][]models.ColumnProfile
	Keys         map[string][]models.KeyCandidate
}

// RelationshipService pairs columns across datasets, estimates join
// compatibility, and produces the candidate-relationship graph. Detection
// is a pure function of the snapshot; incompatible column pairs are
// skipped, never an error.
type RelationshipService interface {
	Detect(snapshot *Snapshot) *RelationshipGraph
}

type relationshipService struct {
	cfg    config.RelationshipConfig
	logger *zap.Logger
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(cfg config.RelationshipConfig, logger *zap.Logger) RelationshipService {
	return &relationshipService{
		cfg:    cfg,
		logger: logger.Named("relationship-detection"),
	}
}

var _ RelationshipService = (*relationshipService)(nil)

func (s *relationshipService) Detect(snapshot *Snapshot) *RelationshipGraph {
	graph := NewRelationshipGraph()
	for _, name := range snapshot.DatasetNames {
		graph.AddDataset(name)
	}

	// Distinct-value sets are the expensive part of the scan; they are
	// memoized per (dataset, column) so each column is materialized once,
	// not once per dataset pair.
	cache := newValueSetCache(snapshot.Datasets)

	emitted := 0
	for i := 0; i < len(snapshot.DatasetNames); i++ {
		for j := i + 1; j < len(snapshot.DatasetNames); j++ {
			emitted += s.scanPair(snapshot, graph, cache, snapshot.DatasetNames[i], snapshot.DatasetNames[j])
		}
	}

	s.logger.Debug("Relationship scan complete",
		zap.Int("datasets", len(snapshot.DatasetNames)),
		zap.Int("candidates", emitted))
	return graph
}

func (s *relationshipService) scanPair(snapshot *Snapshot, graph *RelationshipGraph, cache *valueSetCache, nameA, nameB string) int {
	emitted := 0
	for _, pa := range snapshot.Profiles[nameA] {
		for _, pb := range snapshot.Profiles[nameB] {
			// The type prefilter bounds work: value overlap is only
			// computed for compatible pairs.
			if !s.typesCompatible(&pa, &pb) {
				continue
			}
			if isMeasureName(pa.ColumnName) || isMeasureName(pb.ColumnName) {
				continue
			}

			nameSim := nameSimilarity(pa.ColumnName, pb.ColumnName)
			overlap := overlapScore(
				cache.valueSet(nameA, pa.ColumnName),
				cache.valueSet(nameB, pb.ColumnName))

			strength := s.cfg.NameWeight*nameSim + s.cfg.OverlapWeight*overlap
			if strength < s.cfg.MinMatchStrength {
				continue
			}

			candidate := s.orient(snapshot, models.RelationshipCandidate{
				SourceDataset:  nameA,
				SourceColumn:   pa.ColumnName,
				TargetDataset:  nameB,
				TargetColumn:   pb.ColumnName,
				MatchStrength:  strength,
				NameSimilarity: nameSim,
				ValueOverlap:   overlap,
			})
			if graph.Add(candidate) {
				emitted++
			}
		}
	}
	return emitted
}

// orient sets the directionality hint and normalizes the candidate so the
// keyed ("one") side is the target. If neither or both sides are keyed the
// hint stays undetermined and the original orientation is kept.
func (s *relationshipService) orient(snapshot *Snapshot, c models.RelationshipCandidate) models.RelationshipCandidate {
	sourceKeyed := columnKeyed(snapshot.Keys[c.SourceDataset], c.SourceColumn)
	targetKeyed := columnKeyed(snapshot.Keys[c.TargetDataset], c.TargetColumn)

	switch {
	case sourceKeyed == targetKeyed:
		c.Direction = models.DirectionUndetermined
	case sourceKeyed:
		c.SourceDataset, c.TargetDataset = c.TargetDataset, c.SourceDataset
		c.SourceColumn, c.TargetColumn = c.TargetColumn, c.SourceColumn
		c.Direction = models.DirectionTarget
	default:
		c.Direction = models.DirectionTarget
	}
	return c
}

func columnKeyed(keys []models.KeyCandidate, column string) bool {
	for _, k := range keys {
		if k.Covers(column) {
			return true
		}
	}
	return false
}

// typesCompatible gates column pairings: numeric-numeric,
// identifier-identifier, or text-text with similar cardinality. Boolean and
// date columns never represent join relationships.
func (s *relationshipService) typesCompatible(a, b *models.ColumnProfile) bool {
	switch {
	case a.SemanticType == models.TypeNumeric && b.SemanticType == models.TypeNumeric:
		return true
	case a.SemanticType == models.TypeIdentifier && b.SemanticType == models.TypeIdentifier:
		return true
	case a.SemanticType == models.TypeText && b.SemanticType == models.TypeText:
		lo, hi := a.DistinctCount, b.DistinctCount
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo == 0 {
			return false
		}
		return float64(hi)/float64(lo) <= s.cfg.TextCardinalityRatioMax
	default:
		return false
	}
}

// isMeasureName filters out column names that describe measures or
// aggregates; such columns cause false-positive links even when their
// values overlap.
func isMeasureName(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "num_") || strings.HasPrefix(lower, "total_") {
		return true
	}
	for _, suffix := range []string{"_count", "_amount", "_total", "_sum", "_avg", "_min", "_max", "rating", "score"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// nameSimilarity compares two column names after case folding, punctuation
// stripping, and singularization. Exact matches score 1.0, substring
// matches 0.6, everything else 0.
func nameSimilarity(a, b string) float64 {
	na := normalizeName(a)
	nb := normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	shorter, longer := na, nb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) >= 3 && strings.Contains(longer, shorter) {
		return 0.6
	}
	return 0
}

func normalizeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return inflection.Singular(sb.String())
}

// overlapScore is the harmonic mean of the two directional containment
// fractions of the distinct value sets.
func overlapScore(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for v := range small {
		if _, ok := large[v]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	fracA := float64(shared) / float64(len(a))
	fracB := float64(shared) / float64(len(b))
	return 2 * fracA * fracB / (fracA + fracB)
}

// valueSetCache memoizes each column's distinct non-missing value set,
// keyed by (dataset, column). No eviction: the cache is bounded by the
// session's dataset and column count.
type valueSetCache struct {
	datasets map[string]*models.Dataset
	sets     map[string]map[string]struct{}
}

func newValueSetCache(datasets map[string]*models.Dataset) *valueSetCache {
	return &valueSetCache{
		datasets: datasets,
		sets:     make(map[string]map[string]struct{}),
	}
}

func (c *valueSetCache) valueSet(dataset, column string) map[string]struct{} {
	key := dataset + "\x00" + column
	if set, ok := c.sets[key]; ok {
		return set
	}
	set := make(map[string]struct{})
	if d, ok := c.datasets[dataset]; ok {
		for _, v := range d.ColumnValues(column) {
			if v == nil {
				continue
			}
			set[models.FormatValue(v)] = struct{}{}
		}
	}
	c.sets[key] = set
	return set
}
