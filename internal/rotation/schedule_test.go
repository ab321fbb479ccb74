package rotation_test

import (
	"fmt"
	"reflect"
	"testing"

	"showdown/internal/rotation"
)

// candidateSet builds candidates in the given order with strictly descending
// match counts, so the order doubles as the rank order.
func candidateSet(slugs ...string) []rotation.Candidate {
	candidates := make([]rotation.Candidate, 0, len(slugs))
	for i, slug := range slugs {
		candidates = append(candidates, rotation.Candidate{
			Slug:         slug,
			Title:        slug,
			MatchCount:   100 - i,
			CatalogIndex: i,
		})
	}
	return candidates
}

func entryBySlug(t *testing.T, entries []rotation.Entry, slug string) rotation.Entry {
	t.Helper()
	for _, entry := range entries {
		if entry.Slug == slug {
			return entry
		}
	}
	t.Fatalf("entry %q not found in %v", slug, entries)
	return rotation.Entry{}
}

func directiveBySlug(t *testing.T, directives []rotation.Directive, slug string) rotation.Directive {
	t.Helper()
	for _, d := range directives {
		if d.Slug == slug {
			return d
		}
	}
	t.Fatalf("directive %q not found", slug)
	return rotation.Directive{}
}

func stageCount(entries []rotation.Entry, stage rotation.Stage) int {
	count := 0
	for _, entry := range entries {
		if entry.Stage == stage {
			count++
		}
	}
	return count
}

func assertWindowInvariants(t *testing.T, outcome rotation.Outcome, windowSize int) {
	t.Helper()
	if n := stageCount(outcome.State.Entries, rotation.StageSpotlight); n > 1 {
		t.Fatalf("%d entries hold the spotlight", n)
	}
	if n := outcome.State.NonTerminalCount(); n > windowSize {
		t.Fatalf("window holds %d entries, cap is %d", n, windowSize)
	}
	for _, entry := range outcome.State.Entries {
		if entry.Stage.Terminal() {
			t.Fatalf("expired entry %q survived pruning", entry.Slug)
		}
	}
}

func TestTransitionColdStart(t *testing.T) {
	slugs := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		slugs = append(slugs, fmt.Sprintf("showdown-%02d", i))
	}
	candidates := candidateSet(slugs...)
	params := rotation.Params{WindowSize: 5, VisibleDuration: 2}

	outcome := rotation.Transition(rotation.Empty(), candidates, params)

	if outcome.State.RunCounter != 1 {
		t.Fatalf("run counter = %d, want 1", outcome.State.RunCounter)
	}
	if len(outcome.State.Entries) != 5 {
		t.Fatalf("window holds %d entries, want 5", len(outcome.State.Entries))
	}
	if len(outcome.Admitted) != 5 {
		t.Fatalf("admitted %d entries, want 5", len(outcome.Admitted))
	}
	if outcome.Promoted != "showdown-00" {
		t.Fatalf("promoted %q, want the top-ranked candidate", outcome.Promoted)
	}
	if got := stageCount(outcome.State.Entries, rotation.StageSpotlight); got != 1 {
		t.Fatalf("spotlight count = %d, want 1", got)
	}
	if got := stageCount(outcome.State.Entries, rotation.StageEntering); got != 4 {
		t.Fatalf("entering count = %d, want 4", got)
	}

	spot := directiveBySlug(t, outcome.Directives, "showdown-00")
	if !spot.Library || !spot.Home || !spot.Shared || spot.Delete {
		t.Fatalf("spotlight directive = %+v", spot)
	}
	waiting := directiveBySlug(t, outcome.Directives, "showdown-01")
	if waiting.Library || waiting.Home || waiting.Shared || waiting.Delete {
		t.Fatalf("entering directive should stay hidden, got %+v", waiting)
	}
	assertWindowInvariants(t, outcome, params.WindowSize)
}

func TestTransitionSteadyRotation(t *testing.T) {
	candidates := candidateSet("a", "b", "c", "d", "e")
	params := rotation.Params{WindowSize: 5, VisibleDuration: 2}
	prev := rotation.State{
		RunCounter: 5,
		Entries: []rotation.Entry{
			{Slug: "a", Stage: rotation.StageSpotlight, Rank: 1, EnteredAt: 3, StageSince: 5},
			{Slug: "b", Stage: rotation.StageLibraryVisible, Rank: 2, EnteredAt: 3, StageSince: 5},
			{Slug: "c", Stage: rotation.StageLibraryVisible, Rank: 3, EnteredAt: 3, StageSince: 5},
			{Slug: "d", Stage: rotation.StageEntering, Rank: 4, EnteredAt: 4, StageSince: 4},
			{Slug: "e", Stage: rotation.StageEntering, Rank: 5, EnteredAt: 5, StageSince: 5},
		},
	}

	outcome := rotation.Transition(prev, candidates, params)

	if len(outcome.Evicted) != 0 || len(outcome.Expired) != 0 {
		t.Fatalf("steady rotation should not evict, got evicted=%v expired=%v", outcome.Evicted, outcome.Expired)
	}
	if got := entryBySlug(t, outcome.State.Entries, "a").Stage; got != rotation.StageLibraryVisible {
		t.Fatalf("previous spotlight moved to %q, want library_visible", got)
	}
	if outcome.Promoted != "d" {
		t.Fatalf("promoted %q, want the strongest entering entry", outcome.Promoted)
	}
	if got := entryBySlug(t, outcome.State.Entries, "e").Stage; got != rotation.StageEntering {
		t.Fatalf("entry e moved to %q, want entering", got)
	}
	assertWindowInvariants(t, outcome, params.WindowSize)
}

func TestTransitionThresholdDrop(t *testing.T) {
	params := rotation.Params{WindowSize: 5, VisibleDuration: 2}
	prev := rotation.State{
		RunCounter: 9,
		Entries: []rotation.Entry{
			{Slug: "a", Stage: rotation.StageSpotlight, Rank: 1, EnteredAt: 8, StageSince: 9, MatchCount: 9},
			{Slug: "b", Stage: rotation.StageLibraryVisible, Rank: 2, EnteredAt: 7, StageSince: 9, MatchCount: 8},
		},
	}

	// b fell below the threshold, so the builder no longer produces it.
	outcome := rotation.Transition(prev, candidateSet("a"), params)

	dropped := entryBySlug(t, outcome.State.Entries, "b")
	if dropped.Stage != rotation.StageClosing {
		t.Fatalf("ineligible entry at %q, want closing", dropped.Stage)
	}
	if dropped.MatchCount != 0 {
		t.Fatalf("match count %d was carried over", dropped.MatchCount)
	}
	if !reflect.DeepEqual(outcome.Evicted, []string{"b"}) {
		t.Fatalf("evicted = %v, want [b]", outcome.Evicted)
	}
	if d := directiveBySlug(t, outcome.Directives, "b"); !d.Library || d.Home || d.Delete {
		t.Fatalf("closing directive = %+v", d)
	}

	// The following run expires it and emits the deletion directive once.
	next := rotation.Transition(outcome.State, candidateSet("a"), params)
	if !reflect.DeepEqual(next.Expired, []string{"b"}) {
		t.Fatalf("expired = %v, want [b]", next.Expired)
	}
	if d := directiveBySlug(t, next.Directives, "b"); !d.Delete || d.Library {
		t.Fatalf("deletion directive = %+v", d)
	}
	for _, entry := range next.State.Entries {
		if entry.Slug == "b" {
			t.Fatal("expired entry b still persisted")
		}
	}
}

func TestTransitionWindowShrink(t *testing.T) {
	candidates := candidateSet("a", "b", "c", "d", "e")
	// Long visible duration keeps natural aging out of the shrink.
	params := rotation.Params{WindowSize: 3, VisibleDuration: 10}
	prev := rotation.State{
		RunCounter: 20,
		Entries: []rotation.Entry{
			{Slug: "a", Stage: rotation.StageSpotlight, Rank: 1, EnteredAt: 18, StageSince: 20},
			{Slug: "b", Stage: rotation.StageLibraryVisible, Rank: 2, EnteredAt: 18, StageSince: 19},
			{Slug: "c", Stage: rotation.StageLibraryVisible, Rank: 3, EnteredAt: 18, StageSince: 20},
			{Slug: "d", Stage: rotation.StageEntering, Rank: 4, EnteredAt: 19, StageSince: 19},
			{Slug: "e", Stage: rotation.StageEntering, Rank: 5, EnteredAt: 20, StageSince: 20},
		},
	}

	// Run 21: only the weakest entry begins closing; nothing is deleted.
	first := rotation.Transition(prev, candidates, params)
	if !reflect.DeepEqual(first.Evicted, []string{"e"}) {
		t.Fatalf("first shrink run evicted %v, want [e]", first.Evicted)
	}
	if len(first.Expired) != 0 {
		t.Fatalf("first shrink run expired %v, want none", first.Expired)
	}
	if got := entryBySlug(t, first.State.Entries, "e").Stage; got != rotation.StageClosing {
		t.Fatalf("entry e at %q, want closing", got)
	}

	// Run 22: e expires, and the next weakest begins closing.
	second := rotation.Transition(first.State, candidates, params)
	if !reflect.DeepEqual(second.Expired, []string{"e"}) {
		t.Fatalf("second shrink run expired %v, want [e]", second.Expired)
	}
	if !reflect.DeepEqual(second.Evicted, []string{"d"}) {
		t.Fatalf("second shrink run evicted %v, want [d]", second.Evicted)
	}

	// Run 23: d expires and the drain stops at the configured size.
	third := rotation.Transition(second.State, candidates, params)
	if !reflect.DeepEqual(third.Expired, []string{"d"}) {
		t.Fatalf("third shrink run expired %v, want [d]", third.Expired)
	}
	if len(third.Evicted) != 0 {
		t.Fatalf("third shrink run evicted %v, want none", third.Evicted)
	}
	if got := third.State.NonTerminalCount(); got != 3 {
		t.Fatalf("window settled at %d entries, want 3", got)
	}
	for _, slug := range []string{"a", "b", "c"} {
		if entryBySlug(t, third.State.Entries, slug).Stage == rotation.StageClosing {
			t.Fatalf("top-ranked entry %q was drained", slug)
		}
	}
	assertWindowInvariants(t, third, params.WindowSize)
}

func TestTransitionEmptyCandidates(t *testing.T) {
	params := rotation.Params{WindowSize: 5, VisibleDuration: 2}
	prev := rotation.State{
		RunCounter: 4,
		Entries: []rotation.Entry{
			{Slug: "a", Stage: rotation.StageSpotlight, Rank: 1, EnteredAt: 2, StageSince: 4},
			{Slug: "b", Stage: rotation.StageLibraryVisible, Rank: 2, EnteredAt: 2, StageSince: 3},
			{Slug: "c", Stage: rotation.StageClosing, Rank: 3, EnteredAt: 1, StageSince: 4},
		},
	}

	outcome := rotation.Transition(prev, nil, params)

	if len(outcome.Admitted) != 0 {
		t.Fatalf("admitted %v from an empty candidate set", outcome.Admitted)
	}
	if outcome.Promoted != "" {
		t.Fatalf("promoted %q with nothing entering", outcome.Promoted)
	}
	if got := entryBySlug(t, outcome.State.Entries, "a").Stage; got != rotation.StageClosing {
		t.Fatalf("entry a at %q, want closing", got)
	}
	if got := entryBySlug(t, outcome.State.Entries, "b").Stage; got != rotation.StageClosing {
		t.Fatalf("entry b at %q, want closing", got)
	}
	if !reflect.DeepEqual(outcome.Expired, []string{"c"}) {
		t.Fatalf("expired = %v, want [c]", outcome.Expired)
	}
	if d := directiveBySlug(t, outcome.Directives, "c"); !d.Delete {
		t.Fatalf("expired directive = %+v", d)
	}
}

func TestTransitionClosingEntryIsNotRescued(t *testing.T) {
	params := rotation.Params{WindowSize: 2, VisibleDuration: 2}
	prev := rotation.State{
		RunCounter: 6,
		Entries: []rotation.Entry{
			{Slug: "x", Stage: rotation.StageClosing, Rank: 1, EnteredAt: 2, StageSince: 6},
		},
	}
	candidates := candidateSet("x", "y")

	// x is eligible again, but closing entries still expire; the slug is
	// blocked from re-admission until the next run.
	outcome := rotation.Transition(prev, candidates, params)
	if !reflect.DeepEqual(outcome.Expired, []string{"x"}) {
		t.Fatalf("expired = %v, want [x]", outcome.Expired)
	}
	if !reflect.DeepEqual(outcome.Admitted, []string{"y"}) {
		t.Fatalf("admitted = %v, want [y]", outcome.Admitted)
	}
	if d := directiveBySlug(t, outcome.Directives, "x"); !d.Delete {
		t.Fatalf("directive for expiring entry = %+v", d)
	}

	// One run later the same slug re-enters as a fresh entry.
	next := rotation.Transition(outcome.State, candidates, params)
	fresh := entryBySlug(t, next.State.Entries, "x")
	if fresh.Stage != rotation.StageEntering && fresh.Stage != rotation.StageSpotlight {
		t.Fatalf("readmitted entry at %q", fresh.Stage)
	}
	if fresh.EnteredAt != next.State.RunCounter {
		t.Fatalf("readmitted entry kept old entered_at %d", fresh.EnteredAt)
	}
}

func TestTransitionRefreshesMatchCounts(t *testing.T) {
	params := rotation.Params{WindowSize: 3, VisibleDuration: 2}
	prev := rotation.State{
		RunCounter: 3,
		Entries: []rotation.Entry{
			{Slug: "a", Stage: rotation.StageSpotlight, Rank: 1, EnteredAt: 3, StageSince: 3, MatchCount: 12},
		},
	}
	candidates := []rotation.Candidate{{Slug: "a", Title: "A", MatchCount: 7}}

	outcome := rotation.Transition(prev, candidates, params)
	if got := entryBySlug(t, outcome.State.Entries, "a").MatchCount; got != 7 {
		t.Fatalf("match count = %d, want the recomputed 7", got)
	}
}

func TestTransitionDeterministic(t *testing.T) {
	candidates := candidateSet("a", "b", "c", "d", "e", "f")
	params := rotation.Params{WindowSize: 4, VisibleDuration: 2}
	prev := rotation.State{
		RunCounter: 11,
		Entries: []rotation.Entry{
			{Slug: "a", Stage: rotation.StageSpotlight, Rank: 1, EnteredAt: 9, StageSince: 11},
			{Slug: "b", Stage: rotation.StageLibraryVisible, Rank: 2, EnteredAt: 9, StageSince: 10},
			{Slug: "zzz", Stage: rotation.StageLibraryVisible, Rank: 9, EnteredAt: 8, StageSince: 10},
		},
	}

	first := rotation.Transition(prev, candidates, params)
	second := rotation.Transition(prev, candidates, params)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated transitions differ:\n%+v\n%+v", first, second)
	}
}

func TestTransitionWindowRotatesOverRuns(t *testing.T) {
	slugs := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		slugs = append(slugs, fmt.Sprintf("list-%02d", i))
	}
	candidates := candidateSet(slugs...)
	params := rotation.Params{WindowSize: 5, VisibleDuration: 2}

	state := rotation.Empty()
	seenSpotlight := map[string]bool{}
	for run := 0; run < 8; run++ {
		outcome := rotation.Transition(state, candidates, params)
		assertWindowInvariants(t, outcome, params.WindowSize)
		if len(outcome.Directives) == 0 {
			t.Fatalf("run %d emitted no directives", run+1)
		}
		for _, entry := range outcome.State.Entries {
			if entry.Stage == rotation.StageSpotlight {
				seenSpotlight[entry.Slug] = true
			}
		}
		state = outcome.State
	}
	// A full window plus aging guarantees the feature slot rotates.
	if len(seenSpotlight) < 3 {
		t.Fatalf("only %d distinct spotlights over 8 runs", len(seenSpotlight))
	}
}
