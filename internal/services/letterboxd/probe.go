package letterboxd

import (
	"context"
	"log/slog"
	"strings"

	"showdown/internal/catalog"
	"showdown/internal/config"
	"showdown/internal/logging"
	"showdown/internal/services"
)

// Service orchestrates showdown catalog refreshes on top of the previous
// snapshot, so film page fetches are reused across runs.
type Service struct {
	cfg    *config.Config
	client *Client
	logger *slog.Logger
}

// NewService constructs the catalog probe. A nil doer uses a default HTTP
// client; a nil logger discards output.
func NewService(cfg *config.Config, doer HTTPDoer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		client: NewClient(cfg, doer),
		logger: logging.NewComponentLogger(logger, "letterboxd"),
	}
}

// Client exposes the underlying page fetcher, mainly for preflight checks.
func (s *Service) Client() *Client { return s.client }

// Refresh rebuilds the showdown snapshot. The index fetch is load-bearing and
// aborts the refresh; individual showdown pages degrade to warnings so one
// broken page cannot stall the rotation. When force is set, cached crew lists
// are ignored and everything is scraped fresh.
func (s *Service) Refresh(ctx context.Context, previous catalog.Snapshot, force bool) (catalog.Snapshot, error) {
	data, err := s.client.Fetch(ctx, s.client.IndexURL())
	if err != nil {
		return catalog.Snapshot{}, err
	}
	summaries, err := ParseIndex(data, s.client.BaseURL())
	if err != nil {
		return catalog.Snapshot{}, services.Wrap(services.ErrFetch, "letterboxd", "refresh", "parse index", err)
	}
	if limit := s.cfg.Letterboxd.Limit; limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	s.logger.Info("fetched showdown index", logging.Int("showdowns", len(summaries)))

	refreshed := make([]catalog.Dataset, 0, len(summaries))
	for _, summary := range summaries {
		listCtx := services.WithList(ctx, summary.Slug)
		log := logging.WithContext(listCtx, s.logger)
		refreshed = append(refreshed, s.collect(listCtx, log, summary, previous, force))
	}

	// Showdowns without entries never enter the snapshot; the previous
	// snapshot's version of an untouched or failed slug is retained so a
	// transient page problem does not erase prior scrape work.
	next := catalog.Snapshot{}
	touched := make(map[string]bool, len(refreshed))
	for _, dataset := range refreshed {
		if dataset.EntryCount() == 0 {
			continue
		}
		next.Showdowns = append(next.Showdowns, dataset)
		touched[dataset.Summary.Slug] = true
	}
	if !force {
		for _, prior := range previous.Showdowns {
			if !touched[prior.Summary.Slug] {
				next.Showdowns = append(next.Showdowns, prior)
			}
		}
	}
	return next, nil
}

func (s *Service) collect(ctx context.Context, log *slog.Logger, summary catalog.Summary, previous catalog.Snapshot, force bool) catalog.Dataset {
	dataset := catalog.Dataset{Summary: summary}
	if dataset.InProgress() {
		log.Info("showdown in progress, skipping entries scrape")
		return dataset
	}

	if !force {
		if prior, ok := previous.BySlug(summary.Slug); ok && prior.EntryCount() > 0 {
			cached := prior
			if cached.HasMissingTMDBIDs() {
				s.populateTMDBIDs(ctx, log, &cached)
			}
			s.populateDetail(ctx, log, &cached)
			log.Debug("reused cached crew list", logging.Int("entries", cached.EntryCount()))
			return cached
		}
	}

	crewData, err := s.client.Fetch(ctx, summary.CrewListURL)
	if err != nil {
		log.Warn("crew list fetch failed", logging.Error(err))
		return dataset
	}
	publishedAt, entries, err := ParseCrewList(crewData, s.client.BaseURL())
	if err != nil {
		log.Warn("crew list parse failed", logging.Error(err))
		return dataset
	}
	dataset.PublishedAt = publishedAt
	dataset.Entries = entries

	if dataset.EntryCount() > 0 {
		s.populateTMDBIDs(ctx, log, &dataset)
		log.Info("collected crew list", logging.Int("entries", dataset.EntryCount()))
	} else {
		log.Warn("no entries parsed from crew list")
	}
	s.populateDetail(ctx, log, &dataset)
	return dataset
}

// populateTMDBIDs fetches film pages for entries that still lack a TMDB id.
// Entries sharing a film URL are resolved with a single fetch.
func (s *Service) populateTMDBIDs(ctx context.Context, log *slog.Logger, dataset *catalog.Dataset) {
	films := make(map[string][]int)
	order := make([]string, 0)
	for i := range dataset.Entries {
		entry := dataset.Entries[i]
		if strings.TrimSpace(entry.TMDBID) != "" {
			continue
		}
		filmURL := entry.EnsureFilmURL(s.client.BaseURL())
		if filmURL == "" {
			continue
		}
		if _, ok := films[filmURL]; !ok {
			order = append(order, filmURL)
		}
		films[filmURL] = append(films[filmURL], i)
	}

	for _, filmURL := range order {
		data, err := s.client.Fetch(ctx, filmURL)
		if err != nil {
			log.Warn("film page fetch failed", logging.String("film_url", filmURL), logging.Error(err))
			continue
		}
		tmdbID := ParseFilmTMDBID(data)
		if tmdbID == "" {
			log.Debug("film page carries no tmdb id", logging.String("film_url", filmURL))
			continue
		}
		for _, idx := range films[filmURL] {
			dataset.Entries[idx].TMDBID = tmdbID
		}
	}
}

// populateDetail fills the description and background artwork from the
// showdown page when the snapshot does not carry them yet.
func (s *Service) populateDetail(ctx context.Context, log *slog.Logger, dataset *catalog.Dataset) {
	if dataset.Summary.Description != "" && dataset.Summary.BackgroundImage != "" {
		return
	}
	if dataset.Summary.ShowdownURL == "" {
		return
	}
	data, err := s.client.Fetch(ctx, dataset.Summary.ShowdownURL)
	if err != nil {
		log.Warn("showdown page fetch failed", logging.Error(err))
		return
	}
	if dataset.Summary.Description == "" {
		dataset.Summary.Description = ParseDescription(data)
	}
	if dataset.Summary.BackgroundImage == "" {
		dataset.Summary.BackgroundImage = ParseBackgroundImage(data)
	}
}
