package testsupport

import (
	"fmt"
	"testing"

	"showdown/internal/catalog"
	"showdown/internal/config"
)

// ShowdownDataset builds a finished showdown whose crew list carries the
// provided TMDB ids in rank order.
func ShowdownDataset(slug string, tmdbIDs ...string) catalog.Dataset {
	d := catalog.Dataset{
		Summary: catalog.Summary{
			Slug:        slug,
			Title:       catalog.TitleFromSlug(slug),
			Status:      "Winner announced",
			ShowdownURL: "https://letterboxd.com/showdown/" + slug + "/",
			CrewListURL: "https://letterboxd.com/crew/list/showdown-" + slug + "/",
		},
		PublishedAt: "2026-01-01",
	}
	for i, id := range tmdbIDs {
		filmSlug := fmt.Sprintf("%s-film-%d", slug, i+1)
		d.Entries = append(d.Entries, catalog.Entry{
			Rank:     i + 1,
			FilmName: catalog.TitleFromSlug(filmSlug),
			FilmSlug: filmSlug,
			FilmURL:  "https://letterboxd.com/film/" + filmSlug + "/",
			TMDBID:   id,
		})
	}
	return d
}

// SequentialIDs returns n TMDB ids with the given prefix, useful for building
// datasets whose membership overlap is controlled per test.
func SequentialIDs(prefix string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("%s-%d", prefix, i+1))
	}
	return ids
}

// WriteSnapshot persists the snapshot to the config's cache location.
func WriteSnapshot(t testing.TB, cfg *config.Config, snapshot catalog.Snapshot) {
	t.Helper()

	if err := catalog.Save(cfg.SnapshotPath(), snapshot); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
}
