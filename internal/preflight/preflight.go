package preflight

import (
	"context"

	"showdown/internal/config"
	"showdown/internal/services/plex"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Connectivity checks run against whatever endpoints the config resolves;
// optional features are skipped when disabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Data directory (always checked)
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDiskSpace(cfg.Paths.DataDir, MinFreeBytes))

	// Kometa manifest destination
	results = append(results, CheckManifestDestination(cfg.Kometa.Destination))
	if cfg.Kometa.DownloadAssets && cfg.Kometa.AssetDir != "" {
		results = append(results, CheckDirectoryAccess("Asset directory", cfg.Kometa.AssetDir))
	}

	// Letterboxd catalog
	results = append(results, CheckLetterboxd(ctx, cfg.Letterboxd.BaseURL, cfg.Letterboxd.UserAgent))

	// Plex (via local config or the Kometa fallback)
	if creds, err := plex.ResolveCredentials(cfg); err == nil {
		results = append(results, CheckPlex(ctx, creds.URL, creds.Token))
	} else {
		results = append(results, Result{Name: "Plex", Detail: "credentials not configured"})
	}

	return results
}
