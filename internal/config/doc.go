// Package config loads, validates, and normalizes Showdown configuration.
//
// Configuration is a single TOML file resolved from an explicit path, the
// SHOWDOWN_CONFIG environment variable, ~/.config/showdown/config.toml, or a
// project-local showdown.toml, in that order. Loading always starts from
// Default() so a missing file yields a fully usable configuration, then
// normalizes paths (~ expansion, trailing slashes) and env fallbacks before
// validation rejects unusable values such as a non-positive window size.
//
// The rotation engine never reads configuration itself; the runner passes the
// validated values in explicitly.
package config
