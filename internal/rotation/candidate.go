package rotation

import (
	"fmt"
	"sort"
	"strings"

	"showdown/internal/catalog"
)

// SortKey selects the candidate ordering applied before admission.
type SortKey string

const (
	SortMatchesDesc SortKey = "matches_desc"
	SortMatchesAsc  SortKey = "matches_asc"
	SortRatioDesc   SortKey = "ratio_desc"
	SortNone        SortKey = "none"
)

// ParseSortKey converts a configured string into a SortKey. Empty input maps
// to the default ordering.
func ParseSortKey(value string) (SortKey, error) {
	normalized := SortKey(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case "":
		return SortMatchesDesc, nil
	case SortMatchesDesc, SortMatchesAsc, SortRatioDesc, SortNone:
		return normalized, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", value)
	}
}

// Membership answers whether a film is present in the local library.
type Membership interface {
	Contains(tmdbID string) bool
}

// Candidate is one showdown scored against the local library and deemed
// eligible for the window.
type Candidate struct {
	Slug         string
	Title        string
	MatchCount   int
	MatchRatio   float64
	MatchedIDs   []string
	CatalogIndex int
	PublishedAt  string
}

// BuildParams configures candidate construction.
type BuildParams struct {
	Threshold int
	SortKey   SortKey
}

// BuildCandidates scores every showdown in the snapshot against the library
// and returns the threshold-filtered, ordered candidate set. Match counts are
// always recomputed from the supplied membership; nothing is read from prior
// state. The result is deterministic: equal sort ranks keep catalog order.
func BuildCandidates(snapshot catalog.Snapshot, library Membership, params BuildParams) []Candidate {
	candidates := make([]Candidate, 0, snapshot.Len())
	for i, dataset := range snapshot.Showdowns {
		if dataset.InProgress() {
			continue
		}
		var matched []string
		resolvable := 0
		for _, entry := range dataset.Entries {
			id := strings.TrimSpace(entry.TMDBID)
			if id == "" {
				continue
			}
			resolvable++
			if library != nil && library.Contains(id) {
				matched = append(matched, id)
			}
		}
		if len(matched) < params.Threshold {
			continue
		}
		ratio := 0.0
		if resolvable > 0 {
			ratio = float64(len(matched)) / float64(resolvable)
		}
		title := strings.TrimSpace(dataset.Summary.Title)
		if title == "" {
			title = catalog.TitleFromSlug(dataset.Summary.Slug)
		}
		candidates = append(candidates, Candidate{
			Slug:         dataset.Summary.Slug,
			Title:        title,
			MatchCount:   len(matched),
			MatchRatio:   ratio,
			MatchedIDs:   matched,
			CatalogIndex: i,
			PublishedAt:  dataset.PublishedAt,
		})
	}
	sortCandidates(candidates, params.SortKey)
	return candidates
}

func sortCandidates(candidates []Candidate, key SortKey) {
	switch key {
	case SortMatchesAsc:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].MatchCount < candidates[j].MatchCount
		})
	case SortRatioDesc:
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].MatchRatio != candidates[j].MatchRatio {
				return candidates[i].MatchRatio > candidates[j].MatchRatio
			}
			if candidates[i].MatchCount != candidates[j].MatchCount {
				return candidates[i].MatchCount > candidates[j].MatchCount
			}
			if candidates[i].PublishedAt != candidates[j].PublishedAt {
				return candidates[i].PublishedAt > candidates[j].PublishedAt
			}
			return candidates[i].Title < candidates[j].Title
		})
	case SortNone:
	default:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].MatchCount > candidates[j].MatchCount
		})
	}
}
