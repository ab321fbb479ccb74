package config

import (
	"errors"
	"fmt"
	"strings"
)

var allowedSortKeys = map[string]struct{}{
	"matches_desc": {},
	"matches_asc":  {},
	"ratio_desc":   {},
	"none":         {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRotation(); err != nil {
		return err
	}
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRotation() error {
	if c.Rotation.Threshold < 1 {
		return errors.New("rotation.threshold must be at least 1")
	}
	if c.Rotation.WindowSize < 1 {
		return errors.New("rotation.window_size must be at least 1")
	}
	if c.Rotation.VisibleDuration < 1 {
		return errors.New("rotation.visible_duration must be at least 1")
	}
	if _, ok := allowedSortKeys[c.Rotation.SortKey]; !ok {
		return fmt.Errorf("rotation.sort_key %q is not one of matches_desc, matches_asc, ratio_desc, none", c.Rotation.SortKey)
	}
	return nil
}

func (c *Config) validatePlex() error {
	if strings.TrimSpace(c.Kometa.ConfigPath) != "" {
		// Missing URL or token resolve from the Kometa config at run time.
		return nil
	}
	if strings.TrimSpace(c.Plex.URL) == "" {
		return errors.New("plex.url is required. Set PLEX_URL, configure [plex], or point kometa.config_path at a Kometa config")
	}
	if strings.TrimSpace(c.Plex.Token) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/showdown/config.toml"
		}
		return fmt.Errorf("plex.token is required. Set PLEX_TOKEN env var or edit %s (create with 'showdown config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"letterboxd.timeout_seconds":    c.Letterboxd.TimeoutSeconds,
		"plex.timeout_seconds":          c.Plex.TimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
