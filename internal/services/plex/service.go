package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"showdown/internal/config"
	"showdown/internal/logging"
	"showdown/internal/services"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Service queries a Plex Media Server for movie library membership.
type Service struct {
	cfg    *config.Config
	creds  Credentials
	client HTTPDoer
	logger *slog.Logger
}

// NewService constructs the Plex lookup service. Credentials are resolved up
// front so a misconfigured deployment fails before any scraping starts. A nil
// doer uses a default HTTP client with the configured timeout; a nil logger
// discards output.
func NewService(cfg *config.Config, doer HTTPDoer, logger *slog.Logger) (*Service, error) {
	creds, err := ResolveCredentials(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if doer == nil {
		doer = &http.Client{Timeout: time.Duration(cfg.Plex.TimeoutSeconds) * time.Second}
	}
	return &Service{
		cfg:    cfg,
		creds:  creds,
		client: doer,
		logger: logging.NewComponentLogger(logger, "plex"),
	}, nil
}

// BaseURL returns the resolved server URL without a trailing slash.
func (s *Service) BaseURL() string { return s.creds.URL }

// Ping verifies the server answers at all. The identity endpoint responds
// without authentication, so this only proves reachability.
func (s *Service) Ping(ctx context.Context) error {
	var container struct {
		MediaContainer struct {
			MachineIdentifier string `json:"machineIdentifier"`
		} `json:"MediaContainer"`
	}
	return s.getJSON(ctx, s.creds.URL+"/identity", &container)
}

// Section is one Plex library section as reported by the server.
type Section struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Sections lists the server's library sections.
func (s *Service) Sections(ctx context.Context) ([]Section, error) {
	var container struct {
		MediaContainer struct {
			Directory []Section `json:"Directory"`
		} `json:"MediaContainer"`
	}
	if err := s.getJSON(ctx, s.creds.URL+"/library/sections", &container); err != nil {
		return nil, err
	}
	return container.MediaContainer.Directory, nil
}

// BuildIndex fetches every movie section and returns the TMDB membership
// index. When plex.library names a section only that one is indexed;
// otherwise all movie sections contribute.
func (s *Service) BuildIndex(ctx context.Context) (*Index, error) {
	sections, err := s.Sections(ctx)
	if err != nil {
		return nil, err
	}

	wanted := strings.ToLower(strings.TrimSpace(s.cfg.Plex.Library))
	matched := false
	var items []LibraryItem
	for _, section := range sections {
		if section.Type != "movie" {
			continue
		}
		if wanted != "" && strings.ToLower(section.Title) != wanted {
			continue
		}
		matched = true
		sectionItems, err := s.sectionItems(ctx, section.Key)
		if err != nil {
			return nil, err
		}
		items = append(items, sectionItems...)
		s.logger.Debug("indexed plex section",
			logging.String("section", section.Title),
			logging.Int("items", len(sectionItems)))
	}
	if wanted != "" && !matched {
		return nil, services.Wrap(services.ErrLookup, "plex", "index",
			fmt.Sprintf("library %q not found", s.cfg.Plex.Library), nil)
	}

	index := NewIndex(items)
	s.logger.Info("built plex movie index", logging.Int("films", index.Len()))
	return index, nil
}

func (s *Service) sectionItems(ctx context.Context, key string) ([]LibraryItem, error) {
	var container struct {
		MediaContainer struct {
			Metadata []struct {
				RatingKey string `json:"ratingKey"`
				Title     string `json:"title"`
				Year      int    `json:"year"`
				Guid      []struct {
					ID string `json:"id"`
				} `json:"Guid"`
			} `json:"Metadata"`
		} `json:"MediaContainer"`
	}
	itemsURL := fmt.Sprintf("%s/library/sections/%s/all?includeGuids=1", s.creds.URL, key)
	if err := s.getJSON(ctx, itemsURL, &container); err != nil {
		return nil, err
	}

	items := make([]LibraryItem, 0, len(container.MediaContainer.Metadata))
	for _, meta := range container.MediaContainer.Metadata {
		item := LibraryItem{RatingKey: meta.RatingKey, Title: meta.Title, Year: meta.Year}
		for _, guid := range meta.Guid {
			if strings.HasPrefix(guid.ID, "tmdb://") {
				item.TMDBID = strings.TrimPrefix(guid.ID, "tmdb://")
				break
			}
		}
		if item.TMDBID == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return services.Wrap(services.ErrLookup, "plex", "request", url, err)
	}
	req.Header.Set("X-Plex-Token", s.creds.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrLookup, "plex", "fetch", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrLookup, "plex", "fetch",
			fmt.Sprintf("%s returned %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrLookup, "plex", "decode", url, err)
	}
	return nil
}
