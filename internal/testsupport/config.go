package testsupport

import (
	"path/filepath"
	"testing"

	"showdown/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Kometa.Destination = filepath.Join(base, "kometa", "showdown_collections.yml")
	cfgVal.Kometa.AssetDir = filepath.Join(base, "kometa", "assets")
	cfgVal.Kometa.DownloadAssets = false
	cfgVal.Plex.URL = "http://127.0.0.1:32400"
	cfgVal.Plex.Token = "test-token"
	cfgVal.Notifications.RunCompleted = false
	cfgVal.Notifications.Errors = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRotation overrides the window scheduling knobs.
func WithRotation(threshold, windowSize, visibleDuration int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rotation.Threshold = threshold
		b.cfg.Rotation.WindowSize = windowSize
		b.cfg.Rotation.VisibleDuration = visibleDuration
	}
}

// WithSortKey overrides the candidate ordering on the test config.
func WithSortKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rotation.SortKey = key
	}
}

// WithPlex points the test config at the provided Plex endpoint.
func WithPlex(url, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.URL = url
		b.cfg.Plex.Token = token
	}
}

// WithLetterboxd points the catalog probe at the provided base URL.
func WithLetterboxd(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Letterboxd.BaseURL = baseURL
	}
}

// WithNtfyTopic enables run notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
		b.cfg.Notifications.RunCompleted = true
		b.cfg.Notifications.Errors = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
