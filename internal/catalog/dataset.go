package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Summary identifies one showdown list as presented on the index page.
type Summary struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Logline         string `json:"logline,omitempty"`
	Status          string `json:"status,omitempty"`
	ShowdownURL     string `json:"showdown_url"`
	CrewListURL     string `json:"crew_list_url"`
	Description     string `json:"description,omitempty"`
	BackgroundImage string `json:"background_image,omitempty"`
}

// Entry is one ranked film inside a showdown crew list.
type Entry struct {
	Rank     int    `json:"rank"`
	FilmName string `json:"film_name"`
	FilmSlug string `json:"film_slug"`
	FilmYear int    `json:"film_year,omitempty"`
	FilmURL  string `json:"film_url"`
	TMDBID   string `json:"tmdb_id,omitempty"`
}

// Dataset couples a showdown summary with its scraped crew list.
type Dataset struct {
	Summary     Summary `json:"summary"`
	PublishedAt string  `json:"published_at,omitempty"`
	Entries     []Entry `json:"entries"`
}

// EntryCount reports how many films the crew list carries.
func (d Dataset) EntryCount() int {
	return len(d.Entries)
}

// HasMissingTMDBIDs reports whether any entry still needs a film page fetch.
func (d Dataset) HasMissingTMDBIDs() bool {
	for _, entry := range d.Entries {
		if strings.TrimSpace(entry.TMDBID) == "" {
			return true
		}
	}
	return false
}

// InProgress reports whether the showdown is still running and has no final
// crew list yet.
func (d Dataset) InProgress() bool {
	return strings.EqualFold(strings.TrimSpace(d.Summary.Status), "in progress")
}

// EnsureFilmURL returns the entry's film URL, deriving it from the film slug
// when the scrape did not capture one.
func (e Entry) EnsureFilmURL(baseURL string) string {
	if e.FilmURL != "" {
		return e.FilmURL
	}
	slug := strings.Trim(e.FilmSlug, "/")
	if slug == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/film/" + slug + "/"
}

var titleCaser = cases.Title(language.Und)

// TitleFromSlug derives a display title from a slug when the page omits one.
func TitleFromSlug(slug string) string {
	return titleCaser.String(strings.ReplaceAll(strings.TrimSpace(slug), "-", " "))
}
