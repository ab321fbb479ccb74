package rotation_test

import (
	"fmt"
	"reflect"
	"testing"

	"showdown/internal/catalog"
	"showdown/internal/rotation"
)

type stubLibrary map[string]bool

func (l stubLibrary) Contains(tmdbID string) bool { return l[tmdbID] }

// dataset builds a showdown whose entries carry TMDB ids id-<slug>-<n>.
func dataset(slug string, entryCount int) catalog.Dataset {
	d := catalog.Dataset{
		Summary: catalog.Summary{
			Slug:  slug,
			Title: catalog.TitleFromSlug(slug),
		},
	}
	for i := 0; i < entryCount; i++ {
		d.Entries = append(d.Entries, catalog.Entry{
			Rank:     i + 1,
			FilmName: fmt.Sprintf("%s film %d", slug, i+1),
			FilmSlug: fmt.Sprintf("%s-film-%d", slug, i+1),
			TMDBID:   fmt.Sprintf("id-%s-%d", slug, i+1),
		})
	}
	return d
}

// libraryWithMatches marks the first n entries of each dataset as held.
func libraryWithMatches(snapshot catalog.Snapshot, matches map[string]int) stubLibrary {
	library := stubLibrary{}
	for _, d := range snapshot.Showdowns {
		want := matches[d.Summary.Slug]
		for i, entry := range d.Entries {
			if i >= want {
				break
			}
			library[entry.TMDBID] = true
		}
	}
	return library
}

func TestBuildCandidatesFiltersBelowThreshold(t *testing.T) {
	snapshot := catalog.Snapshot{Showdowns: []catalog.Dataset{
		dataset("heist-movies", 10),
		dataset("slow-cinema", 10),
	}}
	library := libraryWithMatches(snapshot, map[string]int{
		"heist-movies": 7,
		"slow-cinema":  5,
	})

	candidates := rotation.BuildCandidates(snapshot, library, rotation.BuildParams{
		Threshold: 6,
		SortKey:   rotation.SortMatchesDesc,
	})
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Slug != "heist-movies" {
		t.Fatalf("unexpected candidate %q", candidates[0].Slug)
	}
	if candidates[0].MatchCount != 7 {
		t.Fatalf("match count = %d, want 7", candidates[0].MatchCount)
	}
}

func TestBuildCandidatesOrdersByMatchesThenCatalog(t *testing.T) {
	snapshot := catalog.Snapshot{Showdowns: []catalog.Dataset{
		dataset("first", 10),
		dataset("second", 10),
		dataset("third", 10),
		dataset("fourth", 10),
	}}
	library := libraryWithMatches(snapshot, map[string]int{
		"first":  7,
		"second": 9,
		"third":  7,
		"fourth": 8,
	})

	candidates := rotation.BuildCandidates(snapshot, library, rotation.BuildParams{
		Threshold: 6,
		SortKey:   rotation.SortMatchesDesc,
	})
	got := make([]string, 0, len(candidates))
	for _, c := range candidates {
		got = append(got, c.Slug)
	}
	// Ties between first and third keep catalog order.
	want := []string{"second", "fourth", "first", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("candidate order = %v, want %v", got, want)
	}
}

func TestBuildCandidatesSkipsInProgressShowdowns(t *testing.T) {
	active := dataset("finished", 10)
	running := dataset("still-running", 10)
	running.Summary.Status = "In Progress"
	snapshot := catalog.Snapshot{Showdowns: []catalog.Dataset{active, running}}
	library := libraryWithMatches(snapshot, map[string]int{
		"finished":      8,
		"still-running": 8,
	})

	candidates := rotation.BuildCandidates(snapshot, library, rotation.BuildParams{Threshold: 6})
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Slug != "finished" {
		t.Fatalf("unexpected candidate %q", candidates[0].Slug)
	}
}

func TestBuildCandidatesIgnoresUnresolvedEntries(t *testing.T) {
	d := dataset("partial", 10)
	for i := 5; i < 10; i++ {
		d.Entries[i].TMDBID = ""
	}
	snapshot := catalog.Snapshot{Showdowns: []catalog.Dataset{d}}
	library := libraryWithMatches(snapshot, map[string]int{"partial": 5})

	candidates := rotation.BuildCandidates(snapshot, library, rotation.BuildParams{Threshold: 5})
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	// Five matches out of five resolvable entries.
	if candidates[0].MatchRatio != 1.0 {
		t.Fatalf("match ratio = %v, want 1.0", candidates[0].MatchRatio)
	}
}

func TestBuildCandidatesRatioSort(t *testing.T) {
	snapshot := catalog.Snapshot{Showdowns: []catalog.Dataset{
		dataset("large", 20),
		dataset("small", 8),
	}}
	library := libraryWithMatches(snapshot, map[string]int{
		"large": 10,
		"small": 7,
	})

	candidates := rotation.BuildCandidates(snapshot, library, rotation.BuildParams{
		Threshold: 6,
		SortKey:   rotation.SortRatioDesc,
	})
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	// small holds 7/8 against large's 10/20.
	if candidates[0].Slug != "small" {
		t.Fatalf("ratio sort put %q first", candidates[0].Slug)
	}
}

func TestBuildCandidatesRatioSortTieBreaks(t *testing.T) {
	bravo := dataset("bravo-noir", 8)
	bravo.PublishedAt = "2026-01-01T12:00:00Z"
	alpha := dataset("alpha-noir", 8)
	alpha.PublishedAt = "2026-01-01T12:00:00Z"
	zulu := dataset("zulu-westerns", 8)
	zulu.PublishedAt = "2026-02-01T12:00:00Z"
	snapshot := catalog.Snapshot{Showdowns: []catalog.Dataset{bravo, alpha, zulu}}
	library := libraryWithMatches(snapshot, map[string]int{
		"bravo-noir":    6,
		"alpha-noir":    6,
		"zulu-westerns": 6,
	})

	candidates := rotation.BuildCandidates(snapshot, library, rotation.BuildParams{
		Threshold: 6,
		SortKey:   rotation.SortRatioDesc,
	})
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	got := []string{candidates[0].Slug, candidates[1].Slug, candidates[2].Slug}
	// Equal ratios and counts fall back to publish date, then title.
	want := []string{"zulu-westerns", "alpha-noir", "bravo-noir"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ratio tie order = %v, want %v", got, want)
	}
}

func TestBuildCandidatesDeterministic(t *testing.T) {
	snapshot := catalog.Snapshot{Showdowns: []catalog.Dataset{
		dataset("alpha", 12),
		dataset("bravo", 12),
		dataset("charlie", 12),
	}}
	library := libraryWithMatches(snapshot, map[string]int{
		"alpha":   8,
		"bravo":   8,
		"charlie": 8,
	})
	params := rotation.BuildParams{Threshold: 6, SortKey: rotation.SortMatchesDesc}

	first := rotation.BuildCandidates(snapshot, library, params)
	second := rotation.BuildCandidates(snapshot, library, params)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated builds differ:\n%v\n%v", first, second)
	}
}

func TestBuildCandidatesNilLibrary(t *testing.T) {
	snapshot := catalog.Snapshot{Showdowns: []catalog.Dataset{dataset("anything", 10)}}
	candidates := rotation.BuildCandidates(snapshot, nil, rotation.BuildParams{Threshold: 1})
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates without a library, got %d", len(candidates))
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    rotation.SortKey
		wantErr bool
	}{
		{name: "default", input: "", want: rotation.SortMatchesDesc},
		{name: "matches desc", input: "matches_desc", want: rotation.SortMatchesDesc},
		{name: "matches asc", input: "MATCHES_ASC", want: rotation.SortMatchesAsc},
		{name: "ratio", input: " ratio_desc ", want: rotation.SortRatioDesc},
		{name: "none", input: "none", want: rotation.SortNone},
		{name: "unknown", input: "alphabetical", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rotation.ParseSortKey(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSortKey(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSortKey(%q) returned %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseSortKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
