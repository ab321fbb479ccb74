package config

const (
	defaultDataDir             = "~/.local/share/showdown"
	defaultLogDir              = "~/.local/share/showdown/logs"
	defaultThreshold           = 6
	defaultWindowSize          = 5
	defaultVisibleDuration     = 2
	defaultSortKey             = "matches_desc"
	defaultLetterboxdBaseURL   = "https://letterboxd.com"
	defaultLetterboxdUserAgent = "showdown/1.0 (+https://letterboxd.com/)"
	defaultLetterboxdTimeout   = 30
	defaultPlexLibrary         = "Movies"
	defaultPlexTimeout         = 60
	defaultKometaDestination   = "~/.local/share/showdown/kometa/showdown_collections.yml"
	defaultKometaLabel         = "Showdown Spotlight"
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "auto"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Rotation: Rotation{
			Threshold:       defaultThreshold,
			WindowSize:      defaultWindowSize,
			VisibleDuration: defaultVisibleDuration,
			SortKey:         defaultSortKey,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Letterboxd: Letterboxd{
			BaseURL:        defaultLetterboxdBaseURL,
			UserAgent:      defaultLetterboxdUserAgent,
			TimeoutSeconds: defaultLetterboxdTimeout,
		},
		Plex: Plex{
			Library:        defaultPlexLibrary,
			TimeoutSeconds: defaultPlexTimeout,
		},
		Kometa: Kometa{
			Destination:    defaultKometaDestination,
			Label:          defaultKometaLabel,
			DownloadAssets: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunCompleted:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
