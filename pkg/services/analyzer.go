package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wolfdata/schemascan/pkg/config"
	"github.com/wolfdata/schemascan/pkg/models"
)

// Analyzer runs the full inference pipeline over a session's datasets:
// cleaning, profiling, key detection, and role classification per dataset
// (parallelized across datasets), then relationship detection over the
// complete cross-dataset snapshot, then dictionary building.
//
// A failure local to one dataset is recorded in that dataset's status and
// never aborts the session; the result always carries whatever partial
// output the surviving datasets produced.
type Analyzer interface {
	Analyze(ctx context.Context, raw map[string]*models.Dataset) (*models.AnalysisResult, error)
}

type analyzer struct {
	cfg           *config.Config
	cleaning      CleaningService
	profiler      ProfileService
	keys          KeyService
	roles         RoleService
	relationships RelationshipService
	dictionary    DictionaryService
	logger        *zap.Logger
}

// NewAnalyzer creates an Analyzer with all pipeline stages wired from the
// given configuration.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) Analyzer {
	return &analyzer{
		cfg:           cfg,
		cleaning:      NewCleaningService(cfg.Cleaning, logger),
		profiler:      NewProfileService(cfg.Profile, logger),
		keys:          NewKeyService(cfg.Keys, logger),
		roles:         NewRoleService(cfg.Roles, cfg.Keys, logger),
		relationships: NewRelationshipService(cfg.Relationships, logger),
		dictionary:    NewDictionaryService(logger),
		logger:        logger.Named("analyzer"),
	}
}

var _ Analyzer = (*analyzer)(nil)

// datasetSlot holds one dataset's per-stage output so parallel workers can
// write without shared mutable state; results are gathered in dataset
// order afterwards.
type datasetSlot struct {
	status   models.DatasetStatus
	dataset  *models.Dataset
	profiles []models.ColumnProfile
	keys     []models.KeyCandidate
	role     models.RoleAssignment
}

func (a *analyzer) Analyze(ctx context.Context, raw map[string]*models.Dataset) (*models.AnalysisResult, error) {
	started := time.Now()

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	a.logger.Info("Starting analysis run",
		zap.Int("datasets", len(names)),
		zap.Int("workers", a.cfg.Workers))

	// Stages 1-4 are independent per dataset: read-only inputs, one
	// output slot each, gathered in order before the cross-dataset scan.
	slots := make([]datasetSlot, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = a.analyzeDataset(name, raw[name])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	result := &models.AnalysisResult{
		RunID:         uuid.New(),
		StartedAt:     started,
		DatasetNames:  names,
		Datasets:      make(map[string]*models.Dataset, len(names)),
		Profiles:      make(map[string][]models.ColumnProfile, len(names)),
		KeyCandidates: make(map[string][]models.KeyCandidate, len(names)),
		Roles:         make(map[string]models.RoleAssignment, len(names)),
		Dictionary:    make(map[string][]models.DataDictionaryEntry, len(names)),
		Statuses:      make(map[string]models.DatasetStatus, len(names)),
	}

	snapshot := &Snapshot{
		Datasets: make(map[string]*models.Dataset),
		Profiles: make(map[string][]models.ColumnProfile),
		Keys:     make(map[string][]models.KeyCandidate),
	}
	for i, name := range names {
		slot := slots[i]
		result.Statuses[name] = slot.status
		if slot.status.State != models.DatasetStateOK {
			continue
		}
		result.Datasets[name] = slot.dataset
		result.Profiles[name] = slot.profiles
		result.KeyCandidates[name] = slot.keys
		result.Roles[name] = slot.role

		snapshot.DatasetNames = append(snapshot.DatasetNames, name)
		snapshot.Datasets[name] = slot.dataset
		snapshot.Profiles[name] = slot.profiles
		snapshot.Keys[name] = slot.keys
	}

	// Cancellation is coarse: finished stages stand, the next one is
	// simply not started.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	graph := a.relationships.Detect(snapshot)
	result.Relationships = graph.Edges()

	for _, name := range snapshot.DatasetNames {
		result.Dictionary[name] = a.dictionary.Build(snapshot.Profiles[name], snapshot.Keys[name])
	}

	result.FinishedAt = time.Now()
	a.logger.Info("Analysis run complete",
		zap.String("run_id", result.RunID.String()),
		zap.Int("datasets_ok", len(snapshot.DatasetNames)),
		zap.Int("relationships", len(result.Relationships)),
		zap.Duration("duration", result.FinishedAt.Sub(started)))
	return result, nil
}

// analyzeDataset runs stages 1-4 for a single dataset. Errors become a
// failed status; they never propagate.
func (a *analyzer) analyzeDataset(name string, raw *models.Dataset) datasetSlot {
	slot := datasetSlot{
		status: models.DatasetStatus{DatasetName: name, State: models.DatasetStateOK},
	}

	outcome, err := a.cleaning.Clean(raw)
	if err != nil {
		a.logger.Warn("Dataset failed cleaning",
			zap.String("dataset", name),
			zap.Error(err))
		slot.status.State = models.DatasetStateFailed
		slot.status.Error = err.Error()
		return slot
	}
	slot.status.DuplicatesRemoved = outcome.DuplicatesRemoved
	slot.status.MissingCells = outcome.MissingCells
	slot.status.Notes = outcome.Notes

	slot.dataset = outcome.Dataset
	slot.profiles = a.profiler.Profile(outcome.Dataset)
	slot.keys = a.keys.Detect(outcome.Dataset, slot.profiles)
	slot.role = a.roles.Classify(name, slot.profiles, slot.keys)
	return slot
}
