package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"showdown/internal/catalog"
	"showdown/internal/config"
	"showdown/internal/kometa"
	"showdown/internal/logging"
	"showdown/internal/notifications"
	"showdown/internal/rotation"
	"showdown/internal/services"
	"showdown/internal/services/letterboxd"
	"showdown/internal/services/plex"
)

// CatalogSource yields the showdown snapshot a run consumes.
type CatalogSource interface {
	Refresh(ctx context.Context, previous catalog.Snapshot, force bool) (catalog.Snapshot, error)
}

// LibraryMatcher indexes the local film library for membership checks.
type LibraryMatcher interface {
	BuildIndex(ctx context.Context) (*plex.Index, error)
}

// StateStore persists the rotation window between runs.
type StateStore interface {
	Load(ctx context.Context) (rotation.State, error)
	Save(ctx context.Context, st rotation.State) error
}

// ManifestRenderer writes the Kometa collection manifest.
type ManifestRenderer interface {
	Write(manifest kometa.Manifest) error
}

// AssetFetcher downloads collection artwork referenced by the manifest.
type AssetFetcher interface {
	Download(ctx context.Context, manifest kometa.Manifest) int
}

// Options control a single rotation run.
type Options struct {
	// Refresh forces a catalog re-scrape even when a snapshot is cached.
	Refresh bool
	// DryRun computes the transition and reports it without persisting
	// state, writing the manifest, or notifying.
	DryRun bool
}

// Report summarizes one rotation run.
type Report struct {
	RunID       string   `json:"run_id"`
	RunNumber   int64    `json:"run_number"`
	DryRun      bool     `json:"dry_run"`
	Spotlight   string   `json:"spotlight,omitempty"`
	Admitted    []string `json:"admitted,omitempty"`
	Promoted    string   `json:"promoted,omitempty"`
	Evicted     []string `json:"evicted,omitempty"`
	Expired     []string `json:"expired,omitempty"`
	Directives  int      `json:"directives"`
	Collections int      `json:"collections"`
	Deleted     []string `json:"deleted,omitempty"`
	Skipped     []string `json:"skipped,omitempty"`
	Assets      int      `json:"assets"`
}

// Runner executes rotation runs end to end: lock, state load, snapshot,
// library index, window transition, state save, manifest render, assets,
// notification.
type Runner struct {
	cfg      *config.Config
	store    StateStore
	logger   *slog.Logger
	catalog  CatalogSource
	library  LibraryMatcher
	renderer ManifestRenderer
	assets   AssetFetcher
	notifier notifications.Service
	now      func() time.Time
}

// Option overrides a runner collaborator, primarily for tests.
type Option func(*Runner)

// WithCatalogSource substitutes the Letterboxd probe.
func WithCatalogSource(src CatalogSource) Option {
	return func(r *Runner) { r.catalog = src }
}

// WithLibraryMatcher substitutes the Plex index builder.
func WithLibraryMatcher(m LibraryMatcher) Option {
	return func(r *Runner) { r.library = m }
}

// WithRenderer substitutes the manifest renderer.
func WithRenderer(renderer ManifestRenderer) Option {
	return func(r *Runner) { r.renderer = renderer }
}

// WithAssetFetcher substitutes the artwork downloader.
func WithAssetFetcher(fetcher AssetFetcher) Option {
	return func(r *Runner) { r.assets = fetcher }
}

// WithNotifier substitutes the notification service.
func WithNotifier(n notifications.Service) Option {
	return func(r *Runner) { r.notifier = n }
}

// WithClock substitutes the time source stamped into manifests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New wires a runner with the default collaborators. Plex credentials are
// resolved here so a misconfigured server fails before a lock is taken or a
// scrape begins.
func New(cfg *config.Config, store StateStore, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "runner"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		r.catalog = letterboxd.NewService(cfg, nil, logger)
	}
	if r.library == nil {
		svc, err := plex.NewService(cfg, nil, logger)
		if err != nil {
			return nil, err
		}
		r.library = svc
	}
	if r.renderer == nil {
		r.renderer = kometa.NewRenderer(cfg, logger)
	}
	if r.assets == nil {
		r.assets = kometa.NewAssets(cfg, nil, logger)
	}
	if r.notifier == nil {
		r.notifier = notifications.NewService(cfg)
	}
	return r, nil
}

// Run performs one rotation run. Concurrent runs are excluded by a lock file
// under the data directory; a held lock fails fast instead of queueing.
func (r *Runner) Run(ctx context.Context, opts Options) (Report, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	log := r.logger.With(logging.String(logging.FieldRunID, runID))

	if err := r.cfg.EnsureDirectories(); err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "runner", "setup", "ensure directories", err)
	}

	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Report{}, services.Wrap(services.ErrTransient, "runner", "lock", "acquire run lock", err)
	}
	if !locked {
		return Report{}, services.Wrap(services.ErrTransient, "runner", "lock", "another showdown run is already in progress", nil)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			log.Warn("failed to release run lock", logging.Error(unlockErr))
		}
	}()

	report, phase, err := r.execute(ctx, log, runID, opts)
	if err != nil {
		log.Error("rotation run failed",
			logging.String("phase", phase),
			logging.Alert("run_failure"),
			logging.Error(err))
		if notifyErr := r.notifier.NotifyRunFailed(ctx, err, phase); notifyErr != nil {
			log.Warn("failure notification not delivered", logging.Error(notifyErr))
		}
		return Report{}, err
	}
	if !opts.DryRun {
		if notifyErr := r.notifier.NotifyRunCompleted(ctx, report.RunNumber, report.Spotlight, report.Collections); notifyErr != nil {
			log.Warn("completion notification not delivered", logging.Error(notifyErr))
		}
	}
	return report, nil
}

func (r *Runner) execute(ctx context.Context, log *slog.Logger, runID string, opts Options) (Report, string, error) {
	prev, err := r.store.Load(ctx)
	if err != nil {
		return Report{}, "state load", err
	}

	snapshot, cached, err := catalog.Load(r.cfg.SnapshotPath())
	if err != nil {
		return Report{}, "snapshot load", services.Wrap(services.ErrStateLoad, "runner", "snapshot", "load cached snapshot", err)
	}
	if opts.Refresh || !cached || snapshot.Len() == 0 {
		refreshed, refreshErr := r.catalog.Refresh(ctx, snapshot, opts.Refresh)
		if refreshErr != nil {
			return Report{}, "catalog refresh", refreshErr
		}
		snapshot = refreshed
		if !opts.DryRun {
			if saveErr := catalog.Save(r.cfg.SnapshotPath(), snapshot); saveErr != nil {
				return Report{}, "snapshot save", services.Wrap(services.ErrStateSave, "runner", "snapshot", "save refreshed snapshot", saveErr)
			}
		}
		log.Info("catalog refreshed", logging.Int("showdowns", snapshot.Len()))
	}

	index, err := r.library.BuildIndex(ctx)
	if err != nil {
		return Report{}, "plex index", err
	}
	log.Info("library indexed", logging.Int("films", index.Len()))

	sortKey, err := rotation.ParseSortKey(r.cfg.Rotation.SortKey)
	if err != nil {
		return Report{}, "config", services.Wrap(services.ErrConfiguration, "runner", "candidates", "parse rotation.sort_key", err)
	}
	candidates := rotation.BuildCandidates(snapshot, index, rotation.BuildParams{
		Threshold: r.cfg.Rotation.Threshold,
		SortKey:   sortKey,
	})

	outcome := rotation.Transition(prev, candidates, rotation.Params{
		WindowSize:      r.cfg.Rotation.WindowSize,
		VisibleDuration: r.cfg.Rotation.VisibleDuration,
	})
	outcome.State.SnapshotHash = snapshot.Hash()
	for _, directive := range outcome.Directives {
		log.Debug("visibility directive",
			logging.String(logging.FieldList, directive.Slug),
			logging.String(logging.FieldStage, string(directive.Stage)),
			logging.String(logging.FieldDirective, directive.Describe()))
	}

	manifest := kometa.BuildManifest(outcome.Directives, snapshot, index, kometa.Meta{
		RunID:       runID,
		RunNumber:   outcome.State.RunCounter,
		GeneratedAt: r.now().UTC(),
		Label:       r.cfg.Kometa.Label,
	})

	report := Report{
		RunID:       runID,
		RunNumber:   outcome.State.RunCounter,
		DryRun:      opts.DryRun,
		Spotlight:   manifest.Spotlight,
		Admitted:    outcome.Admitted,
		Promoted:    outcome.Promoted,
		Evicted:     outcome.Evicted,
		Expired:     outcome.Expired,
		Directives:  len(outcome.Directives),
		Collections: len(manifest.Collections),
		Deleted:     manifest.Deleted,
		Skipped:     manifest.Skipped,
	}

	if opts.DryRun {
		log.Info("dry run complete",
			logging.Int64(logging.FieldRun, report.RunNumber),
			logging.Int("candidates", len(candidates)),
			logging.Int("collections", report.Collections),
			logging.String("spotlight", report.Spotlight))
		return report, "", nil
	}

	// State persists before the manifest render. A crash between the two
	// leaves the manifest one run behind, which the next run repairs; the
	// reverse order could replay a transition against stale state.
	if err := r.store.Save(ctx, outcome.State); err != nil {
		return Report{}, "state save", err
	}
	if err := r.renderer.Write(manifest); err != nil {
		return Report{}, "render", err
	}
	report.Assets = r.assets.Download(ctx, manifest)

	log.Info("rotation run complete",
		logging.Int64(logging.FieldRun, report.RunNumber),
		logging.String("spotlight", report.Spotlight),
		logging.Int("admitted", len(report.Admitted)),
		logging.Int("expired", len(report.Expired)),
		logging.Int("collections", report.Collections),
		logging.Int("assets", report.Assets))
	return report, "", nil
}
