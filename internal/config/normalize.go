package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRotation()
	c.normalizeLetterboxd()
	c.normalizePlex()
	if err := c.normalizeKometa(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRotation() {
	c.Rotation.SortKey = strings.ToLower(strings.TrimSpace(c.Rotation.SortKey))
	if c.Rotation.SortKey == "" {
		c.Rotation.SortKey = defaultSortKey
	}
}

func (c *Config) normalizeLetterboxd() {
	c.Letterboxd.BaseURL = strings.TrimRight(strings.TrimSpace(c.Letterboxd.BaseURL), "/")
	if c.Letterboxd.BaseURL == "" {
		c.Letterboxd.BaseURL = defaultLetterboxdBaseURL
	}
	c.Letterboxd.UserAgent = strings.TrimSpace(c.Letterboxd.UserAgent)
	if c.Letterboxd.UserAgent == "" {
		c.Letterboxd.UserAgent = defaultLetterboxdUserAgent
	}
	if c.Letterboxd.TimeoutSeconds <= 0 {
		c.Letterboxd.TimeoutSeconds = defaultLetterboxdTimeout
	}
	if c.Letterboxd.Limit < 0 {
		c.Letterboxd.Limit = 0
	}
}

func (c *Config) normalizePlex() {
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	if c.Plex.URL == "" {
		if value, ok := os.LookupEnv("PLEX_URL"); ok {
			c.Plex.URL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	if c.Plex.Token == "" {
		if value, ok := os.LookupEnv("PLEX_TOKEN"); ok {
			c.Plex.Token = strings.TrimSpace(value)
		}
	}
	c.Plex.Library = strings.TrimSpace(c.Plex.Library)
	if c.Plex.Library == "" {
		c.Plex.Library = defaultPlexLibrary
	}
	if c.Plex.TimeoutSeconds <= 0 {
		c.Plex.TimeoutSeconds = defaultPlexTimeout
	}
}

func (c *Config) normalizeKometa() error {
	var err error
	if c.Kometa.ConfigPath, err = expandPath(strings.TrimSpace(c.Kometa.ConfigPath)); err != nil {
		return fmt.Errorf("kometa.config_path: %w", err)
	}
	if strings.TrimSpace(c.Kometa.Destination) == "" {
		c.Kometa.Destination = defaultKometaDestination
	}
	if c.Kometa.Destination, err = expandPath(c.Kometa.Destination); err != nil {
		return fmt.Errorf("kometa.destination: %w", err)
	}
	if c.Kometa.AssetDir, err = expandPath(strings.TrimSpace(c.Kometa.AssetDir)); err != nil {
		return fmt.Errorf("kometa.asset_dir: %w", err)
	}
	c.Kometa.Label = strings.TrimSpace(c.Kometa.Label)
	if c.Kometa.Label == "" {
		c.Kometa.Label = defaultKometaLabel
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json", "auto":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
