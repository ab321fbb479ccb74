package kometa

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"showdown/internal/config"
	"showdown/internal/fileutil"
	"showdown/internal/logging"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Assets downloads collection background artwork into the Kometa asset
// directory, laid out as <asset_dir>/<collection name>/background.<ext> the
// way Kometa's asset pipeline expects.
type Assets struct {
	cfg    *config.Config
	client HTTPDoer
	logger *slog.Logger
}

// NewAssets constructs the artwork downloader. A nil doer uses a default HTTP
// client; a nil logger discards output.
func NewAssets(cfg *config.Config, doer HTTPDoer, logger *slog.Logger) *Assets {
	if logger == nil {
		logger = logging.NewNop()
	}
	if doer == nil {
		doer = &http.Client{Timeout: time.Duration(cfg.Letterboxd.TimeoutSeconds) * time.Second}
	}
	return &Assets{cfg: cfg, client: doer, logger: logging.NewComponentLogger(logger, "assets")}
}

// Download fetches each collection's background image unless it is already on
// disk. Individual failures are logged and skipped because artwork is never
// load-bearing for the rotation. Returns the number of files written.
func (a *Assets) Download(ctx context.Context, manifest Manifest) int {
	if !a.cfg.Kometa.DownloadAssets || strings.TrimSpace(a.cfg.Kometa.AssetDir) == "" {
		return 0
	}

	downloaded := 0
	for _, collection := range manifest.Collections {
		if collection.Background == "" {
			continue
		}
		dest := a.assetPath(collection)
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		if err := a.fetch(ctx, collection.Background, dest); err != nil {
			a.logger.Warn("background download failed",
				logging.String("collection", collection.Name),
				logging.Error(err))
			continue
		}
		a.logger.Debug("downloaded background",
			logging.String("collection", collection.Name),
			logging.String("path", dest))
		downloaded++
	}
	return downloaded
}

func (a *Assets) assetPath(collection Collection) string {
	name := "background" + backgroundExt(collection.Background)
	return filepath.Join(a.cfg.Kometa.AssetDir, safeAssetName(collection.Name), name)
}

func (a *Assets) fetch(ctx context.Context, imageURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s returned %d", imageURL, resp.StatusCode)
	}
	_, err = fileutil.WriteReaderAtomic(dest, resp.Body, 0o644)
	return err
}

func backgroundExt(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	if ext := path.Ext(parsed.Path); ext != "" {
		return ext
	}
	return ".jpg"
}

// safeAssetName keeps collection titles usable as directory names. Path
// separators and drive markers become dashes, shell-hostile characters are
// dropped.
func safeAssetName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch r {
		case '/', '\\', ':':
			b.WriteRune('-')
		case '*', '?', '"', '<', '>', '|':
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "collection"
	}
	return b.String()
}
