package plex

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"showdown/internal/config"
	"showdown/internal/services"
)

// Credentials locate a Plex server. URL never carries a trailing slash.
type Credentials struct {
	URL   string
	Token string
}

// ResolveCredentials returns the Plex connection settings, preferring the
// showdown config and falling back to the plex block of the Kometa config
// file so deployments that already run Kometa need no duplicate secrets.
func ResolveCredentials(cfg *config.Config) (Credentials, error) {
	creds := Credentials{
		URL:   strings.TrimRight(strings.TrimSpace(cfg.Plex.URL), "/"),
		Token: strings.TrimSpace(cfg.Plex.Token),
	}
	if creds.URL != "" && creds.Token != "" {
		return creds, nil
	}

	if path := strings.TrimSpace(cfg.Kometa.ConfigPath); path != "" {
		fallback, err := readKometaCredentials(path)
		if err != nil {
			return Credentials{}, err
		}
		if creds.URL == "" {
			creds.URL = fallback.URL
		}
		if creds.Token == "" {
			creds.Token = fallback.Token
		}
	}

	if creds.URL == "" || creds.Token == "" {
		return Credentials{}, services.Wrap(services.ErrConfiguration, "plex", "credentials",
			"set [plex] url and token, or point kometa.config_path at a Kometa config that has them", nil)
	}
	return creds, nil
}

func readKometaCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, services.Wrap(services.ErrConfiguration, "plex", "credentials",
			fmt.Sprintf("read kometa config %s", path), err)
	}
	var doc struct {
		Plex struct {
			URL   string `yaml:"url"`
			Token string `yaml:"token"`
		} `yaml:"plex"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Credentials{}, services.Wrap(services.ErrConfiguration, "plex", "credentials",
			fmt.Sprintf("parse kometa config %s", path), err)
	}
	return Credentials{
		URL:   strings.TrimRight(strings.TrimSpace(doc.Plex.URL), "/"),
		Token: strings.TrimSpace(doc.Plex.Token),
	}, nil
}
