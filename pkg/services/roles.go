package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wolfdata/schemascan/pkg/config"
	"github.com/wolfdata/schemascan/pkg/models"
)

// RoleService labels a dataset as fact, dimension, or reference. The
// heuristic is advisory: it is a pure function of profiles and key
// candidates, never errors, and falls back to unclassified with a
// rationale naming the inconclusive signals.
type RoleService interface {
	Classify(datasetName string, profiles []models.ColumnProfile, keys []models.KeyCandidate) models.RoleAssignment
}

type roleService struct {
	cfg     config.RoleConfig
	keysCfg config.KeyConfig
	logger  *zap.Logger
}

// NewRoleService creates a new RoleService. The key configuration supplies
// the confidence threshold used to decide whether a dataset is keyed.
func NewRoleService(cfg config.RoleConfig, keysCfg config.KeyConfig, logger *zap.Logger) RoleService {
	return &roleService{
		cfg:     cfg,
		keysCfg: keysCfg,
		logger:  logger.Named("role-classifier"),
	}
}

var _ RoleService = (*roleService)(nil)

// roleSignals are the structural facts the rule chain decides on.
type roleSignals struct {
	rowCount     int
	columnCount  int
	numericRatio float64
	// avgNonNumericDistinct is the mean distinct ratio across non-numeric
	// columns, 0 when there are none.
	avgNonNumericDistinct float64
	// hasConfidentKey: some candidate clears the confidence threshold
	// with no missing values.
	hasConfidentKey bool
	// hasWholeRowKey: the only confident key spans every column, i.e.
	// nothing short of the whole row is unique.
	hasWholeRowKey bool
}

// roleRule is one step of the ordered classification chain; the first
// matching rule wins.
type roleRule struct {
	role      models.TableRole
	match     func(*roleService, roleSignals) bool
	rationale func(roleSignals) string
}

var roleRules = []roleRule{
	{
		role: models.RoleReference,
		match: func(s *roleService, sig roleSignals) bool {
			return sig.rowCount < s.cfg.ReferenceRowFloor && !sig.hasConfidentKey
		},
		rationale: func(sig roleSignals) string {
			return fmt.Sprintf("only %d rows and no confident key", sig.rowCount)
		},
	},
	{
		role: models.RoleFact,
		match: func(s *roleService, sig roleSignals) bool {
			return sig.numericRatio > s.cfg.FactNumericRatio &&
				sig.rowCount > s.cfg.FactRowFloor &&
				!sig.hasWholeRowKey
		},
		rationale: func(sig roleSignals) string {
			return fmt.Sprintf("%.0f%% numeric columns across %d rows", sig.numericRatio*100, sig.rowCount)
		},
	},
	{
		role: models.RoleDimension,
		match: func(s *roleService, sig roleSignals) bool {
			return sig.hasConfidentKey && sig.numericRatio <= s.cfg.FactNumericRatio
		},
		rationale: func(sig roleSignals) string {
			return fmt.Sprintf("confident unique key with %.0f%% numeric columns", sig.numericRatio*100)
		},
	},
}

func (s *roleService) Classify(datasetName string, profiles []models.ColumnProfile, keys []models.KeyCandidate) models.RoleAssignment {
	sig := s.signals(profiles, keys)

	for _, rule := range roleRules {
		if rule.match(s, sig) {
			assignment := models.RoleAssignment{
				DatasetName: datasetName,
				Role:        rule.role,
				Rationale:   rule.rationale(sig),
			}
			s.logger.Debug("Dataset classified",
				zap.String("dataset", datasetName),
				zap.String("role", string(assignment.Role)))
			return assignment
		}
	}

	return models.RoleAssignment{
		DatasetName: datasetName,
		Role:        models.RoleUnclassified,
		Rationale: fmt.Sprintf(
			"inconclusive signals: %d rows, %.0f%% numeric columns, confident key=%t, avg non-numeric distinct ratio %.2f",
			sig.rowCount, sig.numericRatio*100, sig.hasConfidentKey, sig.avgNonNumericDistinct),
	}
}

func (s *roleService) signals(profiles []models.ColumnProfile, keys []models.KeyCandidate) roleSignals {
	sig := roleSignals{columnCount: len(profiles)}
	if len(profiles) == 0 {
		return sig
	}
	sig.rowCount = profiles[0].RowCount

	numeric := 0
	nonNumeric := 0
	distinctSum := 0.0
	for _, p := range profiles {
		if p.SemanticType == models.TypeNumeric {
			numeric++
			continue
		}
		nonNumeric++
		distinctSum += p.DistinctRatio
	}
	sig.numericRatio = float64(numeric) / float64(len(profiles))
	if nonNumeric > 0 {
		sig.avgNonNumericDistinct = distinctSum / float64(nonNumeric)
	}

	wholeRowOnly := true
	for _, k := range keys {
		if k.UniquenessRatio >= s.keysCfg.ConfidenceThreshold && k.MissingRatio == 0 {
			sig.hasConfidentKey = true
			if len(k.Columns) < len(profiles) {
				wholeRowOnly = false
			}
		}
	}
	sig.hasWholeRowKey = sig.hasConfidentKey && wholeRowOnly
	return sig
}
