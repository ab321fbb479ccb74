package kometa

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"showdown/internal/catalog"
	"showdown/internal/rotation"
)

// Meta carries the run descriptors stamped into the manifest header.
type Meta struct {
	RunID       string
	RunNumber   int64
	GeneratedAt time.Time
	Label       string
}

// Collection is one rendered Kometa collection definition. TMDBIDs hold the
// locally owned films in crew list order, which collection_order: custom
// preserves inside Plex.
type Collection struct {
	Name          string
	SortTitle     string
	Summary       string
	Background    string
	VisibleHome   bool
	VisibleShared bool
	TMDBIDs       []int
}

// Manifest is the full render payload for one rotation run. Collections are
// ordered spotlight first, then window order; Deleted names collections to
// remove; Skipped lists window slugs that resolved to zero owned films and
// therefore produced no collection this run.
type Manifest struct {
	Meta        Meta
	Spotlight   string
	Collections []Collection
	Deleted     []string
	Skipped     []string
}

// BuildManifest assembles one collection per visible directive and a deletion
// list for expired ones. Entering directives carry no visibility and are not
// rendered. Deletions go by display name because a vanished catalog entry can
// no longer be resolved any other way.
func BuildManifest(directives []rotation.Directive, snapshot catalog.Snapshot, library rotation.Membership, meta Meta) Manifest {
	manifest := Manifest{Meta: meta}

	ordered := make([]rotation.Directive, 0, len(directives))
	for _, directive := range directives {
		if directive.Stage == rotation.StageSpotlight {
			ordered = append(ordered, directive)
		}
	}
	for _, directive := range directives {
		if directive.Stage != rotation.StageSpotlight && directive.Library && !directive.Delete {
			ordered = append(ordered, directive)
		}
	}

	for _, directive := range directives {
		if directive.Delete {
			manifest.Deleted = append(manifest.Deleted, displayName(directive))
		}
	}

	for _, directive := range ordered {
		name := displayName(directive)
		if directive.Stage == rotation.StageSpotlight {
			manifest.Spotlight = name
		}

		dataset, ok := snapshot.BySlug(directive.Slug)
		if !ok {
			manifest.Skipped = append(manifest.Skipped, directive.Slug)
			continue
		}
		ids := ownedIDs(dataset, library)
		if len(ids) == 0 {
			manifest.Skipped = append(manifest.Skipped, directive.Slug)
			continue
		}

		position := len(manifest.Collections)
		total := dataset.EntryCount()
		manifest.Collections = append(manifest.Collections, Collection{
			Name:          name,
			SortTitle:     fmt.Sprintf("Showdown %02d %02d/%02d %s", position, len(ids), total, name),
			Summary:       collectionSummary(dataset.Summary, len(ids), total),
			Background:    dataset.Summary.BackgroundImage,
			VisibleHome:   directive.Home,
			VisibleShared: directive.Shared,
			TMDBIDs:       ids,
		})
	}
	return manifest
}

func displayName(directive rotation.Directive) string {
	if title := strings.TrimSpace(directive.Title); title != "" {
		return title
	}
	return catalog.TitleFromSlug(directive.Slug)
}

// ownedIDs returns the numeric TMDB ids of crew list entries present in the
// library, preserving rank order.
func ownedIDs(dataset catalog.Dataset, library rotation.Membership) []int {
	ids := make([]int, 0, len(dataset.Entries))
	for _, entry := range dataset.Entries {
		if entry.TMDBID == "" || library == nil || !library.Contains(entry.TMDBID) {
			continue
		}
		id, err := strconv.Atoi(entry.TMDBID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// collectionSummary composes the collection blurb from the showdown prose and
// an ownership tally. The logline is dropped when the description already
// opens with it.
func collectionSummary(summary catalog.Summary, owned, total int) string {
	prose := strings.TrimSpace(summary.Description)
	logline := strings.TrimSpace(summary.Logline)
	switch {
	case prose == "":
		prose = logline
	case logline != "" && !strings.HasPrefix(prose, logline):
		prose = logline + "\n\n" + prose
	}

	stats := ""
	if total > 0 {
		percent := int(math.Round(float64(owned) / float64(total) * 100))
		stats = fmt.Sprintf("%d/%d titles owned (%d%%).", owned, total, percent)
	}

	switch {
	case prose == "":
		return stats
	case stats == "":
		return prose
	default:
		return prose + "\n\n" + stats
	}
}
