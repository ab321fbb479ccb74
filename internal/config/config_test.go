package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"showdown/internal/config"
)

func TestLoadDefaultConfigUsesEnvPlexAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SHOWDOWN_CONFIG", "")
	t.Setenv("PLEX_URL", "http://plex.local:32400/")
	t.Setenv("PLEX_TOKEN", "env-token")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "showdown")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Rotation.Threshold != 6 {
		t.Fatalf("unexpected threshold default: %d", cfg.Rotation.Threshold)
	}
	if cfg.Rotation.WindowSize != 5 {
		t.Fatalf("unexpected window size default: %d", cfg.Rotation.WindowSize)
	}
	if cfg.Rotation.VisibleDuration != 2 {
		t.Fatalf("unexpected visible duration default: %d", cfg.Rotation.VisibleDuration)
	}
	if cfg.Rotation.SortKey != "matches_desc" {
		t.Fatalf("unexpected sort key default: %q", cfg.Rotation.SortKey)
	}
	if cfg.Plex.URL != "http://plex.local:32400" {
		t.Fatalf("expected Plex URL from env without trailing slash, got %q", cfg.Plex.URL)
	}
	if cfg.Plex.Token != "env-token" {
		t.Fatalf("expected Plex token from env, got %q", cfg.Plex.Token)
	}
	if cfg.Plex.Library != "Movies" {
		t.Fatalf("unexpected library default: %q", cfg.Plex.Library)
	}
	if cfg.Kometa.Label != "Showdown Spotlight" {
		t.Fatalf("unexpected label default: %q", cfg.Kometa.Label)
	}
	if cfg.Letterboxd.BaseURL != "https://letterboxd.com" {
		t.Fatalf("unexpected letterboxd base url: %q", cfg.Letterboxd.BaseURL)
	}
	if got := cfg.StateDatabasePath(); got != filepath.Join(wantData, "rotation.db") {
		t.Fatalf("unexpected state db path: %q", got)
	}
	if got := cfg.SnapshotPath(); got != filepath.Join(wantData, "showdowns.json") {
		t.Fatalf("unexpected snapshot path: %q", got)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "showdown.toml")

	type payload struct {
		Rotation struct {
			Threshold  int    `toml:"threshold"`
			WindowSize int    `toml:"window_size"`
			SortKey    string `toml:"sort_key"`
		} `toml:"rotation"`
		Plex struct {
			URL   string `toml:"url"`
			Token string `toml:"token"`
		} `toml:"plex"`
		Kometa struct {
			Label string `toml:"label"`
		} `toml:"kometa"`
	}
	custom := payload{}
	custom.Rotation.Threshold = 4
	custom.Rotation.WindowSize = 3
	custom.Rotation.SortKey = "None"
	custom.Plex.URL = "https://example.com/plex/"
	custom.Plex.Token = "abc123"
	custom.Kometa.Label = "Featured Showdowns"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Rotation.Threshold != 4 {
		t.Fatalf("expected threshold 4, got %d", cfg.Rotation.Threshold)
	}
	if cfg.Rotation.WindowSize != 3 {
		t.Fatalf("expected window size 3, got %d", cfg.Rotation.WindowSize)
	}
	if cfg.Rotation.SortKey != "none" {
		t.Fatalf("expected sort key normalized to none, got %q", cfg.Rotation.SortKey)
	}
	if cfg.Plex.URL != "https://example.com/plex" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.Plex.URL)
	}
	if cfg.Kometa.Label != "Featured Showdowns" {
		t.Fatalf("expected label override, got %q", cfg.Kometa.Label)
	}
	if cfg.Rotation.VisibleDuration != 2 {
		t.Fatalf("expected visible duration default, got %d", cfg.Rotation.VisibleDuration)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, section := range []string{"[rotation]", "[plex]", "[kometa]", "[logging]"} {
		if !strings.Contains(string(contents), section) {
			t.Fatalf("sample config missing %s section:\n%s", section, contents)
		}
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Plex.URL = "http://localhost:32400"
		cfg.Plex.Token = "token"
		return cfg
	}

	cfg := valid()
	cfg.Rotation.WindowSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero window size")
	}

	cfg = valid()
	cfg.Rotation.Threshold = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero threshold")
	}

	cfg = valid()
	cfg.Rotation.VisibleDuration = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative visible duration")
	}

	cfg = valid()
	cfg.Rotation.SortKey = "shuffle"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown sort key")
	}

	cfg = valid()
	cfg.Plex.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}
}

func TestValidateRequiresPlexOrKometaConfig(t *testing.T) {
	t.Setenv("PLEX_URL", "")
	t.Setenv("PLEX_TOKEN", "")

	cfg := config.Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when neither plex nor kometa config is set")
	}

	cfg = config.Default()
	cfg.Kometa.ConfigPath = "/etc/kometa/config.yml"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected kometa config path to satisfy plex requirement: %v", err)
	}
}
