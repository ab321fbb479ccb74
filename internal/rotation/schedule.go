package rotation

// Params bounds the scheduler for one run.
type Params struct {
	// WindowSize caps the number of non-terminal entries.
	WindowSize int
	// VisibleDuration is the number of runs an entry spends at
	// library_visible before it begins closing.
	VisibleDuration int
}

// Outcome is the result of one scheduler transition. Directives carry one
// instruction per entry that existed at any point during the run, including
// entries that expired in the same run. State holds the post-transition
// window with expired entries pruned.
type Outcome struct {
	State      State
	Directives []Directive
	Admitted   []string
	Promoted   string
	Evicted    []string
	Expired    []string
}

// Transition advances the rotation window by one run.
//
// Passes run in a fixed order: eviction of entries that fell out of the
// candidate set, stage advancement, overflow drain when the window shrank
// below its occupancy, admission of new candidates, and spotlight
// assignment. Entries only ever move forward through the stage order, and
// at most one new entry is spotlighted per run. The function is pure;
// callers persist the returned state themselves.
func Transition(prev State, candidates []Candidate, params Params) Outcome {
	run := prev.RunCounter + 1
	entries := prev.Clone().Entries

	candidateBySlug := make(map[string]Candidate, len(candidates))
	rankBySlug := make(map[string]int, len(candidates))
	for i, candidate := range candidates {
		candidateBySlug[candidate.Slug] = candidate
		rankBySlug[candidate.Slug] = i + 1
	}

	outcome := Outcome{}
	advanced := make(map[string]bool, len(entries))
	setStage := func(entry *Entry, stage Stage) {
		entry.Stage = stage
		entry.StageSince = run
		advanced[entry.Slug] = true
	}

	// Match counts are never carried over between runs. Entries absent
	// from the candidate set reset to zero and are handled by eviction.
	for i := range entries {
		candidate, ok := candidateBySlug[entries[i].Slug]
		if !ok {
			entries[i].MatchCount = 0
			continue
		}
		entries[i].MatchCount = candidate.MatchCount
		if candidate.Title != "" {
			entries[i].Title = candidate.Title
		}
	}

	// Eviction pass. Entries no longer eligible drain through closing so
	// a deletion directive is emitted exactly once, one run later. This
	// runs before advancement so the freed capacity is usable this run.
	for i := range entries {
		entry := &entries[i]
		if _, ok := candidateBySlug[entry.Slug]; ok {
			continue
		}
		switch entry.Stage {
		case StageEntering, StageSpotlight, StageLibraryVisible:
			setStage(entry, StageClosing)
			outcome.Evicted = append(outcome.Evicted, entry.Slug)
		case StageClosing:
			setStage(entry, StageExpired)
			outcome.Expired = append(outcome.Expired, entry.Slug)
		}
	}

	// Advancement pass. The spotlight always yields after one run;
	// library_visible entries age out after VisibleDuration runs.
	for i := range entries {
		entry := &entries[i]
		if advanced[entry.Slug] {
			continue
		}
		switch entry.Stage {
		case StageSpotlight:
			setStage(entry, StageLibraryVisible)
		case StageLibraryVisible:
			if run-entry.StageSince >= int64(params.VisibleDuration) {
				setStage(entry, StageClosing)
			}
		case StageClosing:
			setStage(entry, StageExpired)
			outcome.Expired = append(outcome.Expired, entry.Slug)
		}
	}

	// Overflow drain. When the configured window shrinks below current
	// occupancy, the weakest pre-closing entry begins closing. One entry
	// per run keeps the drain staggered so deletions never batch up.
	if overflowPressure(entries) > params.WindowSize {
		if victim := drainVictim(entries); victim >= 0 {
			setStage(&entries[victim], StageClosing)
			outcome.Evicted = append(outcome.Evicted, entries[victim].Slug)
		}
	}

	// Admission pass. Candidates already rank strongest-first; slugs that
	// expired this run stay blocked until the next run, where they would
	// re-enter as fresh entries.
	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		present[entry.Slug] = true
	}
	occupancy := nonTerminalCount(entries)
	for _, candidate := range candidates {
		if occupancy >= params.WindowSize {
			break
		}
		if present[candidate.Slug] {
			continue
		}
		entries = append(entries, Entry{
			Slug:       candidate.Slug,
			Title:      candidate.Title,
			Stage:      StageEntering,
			Rank:       rankBySlug[candidate.Slug],
			EnteredAt:  run,
			StageSince: run,
			MatchCount: candidate.MatchCount,
		})
		present[candidate.Slug] = true
		occupancy++
		outcome.Admitted = append(outcome.Admitted, candidate.Slug)
	}

	// Spotlight assignment. At most one promotion per run, so a cold
	// start fills the window with entering entries and features them one
	// run at a time.
	if !hasSpotlight(entries) {
		if next := promotionPick(entries); next >= 0 {
			setStage(&entries[next], StageSpotlight)
			outcome.Promoted = entries[next].Slug
		}
	}

	// Prune pass. Expired entries keep their deletion directive for this
	// run and drop out of the persisted window.
	outcome.Directives = make([]Directive, 0, len(entries))
	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		outcome.Directives = append(outcome.Directives, DirectiveFor(entry))
		if !entry.Stage.Terminal() {
			kept = append(kept, entry)
		}
	}

	outcome.State = State{
		RunCounter:   run,
		SnapshotHash: prev.SnapshotHash,
		Entries:      kept,
	}
	return outcome
}

func nonTerminalCount(entries []Entry) int {
	count := 0
	for _, entry := range entries {
		if !entry.Stage.Terminal() {
			count++
		}
	}
	return count
}

// overflowPressure counts entries ahead of the closing stage. Closing
// entries are already draining and never trigger another forced closure.
func overflowPressure(entries []Entry) int {
	count := 0
	for _, entry := range entries {
		switch entry.Stage {
		case StageEntering, StageSpotlight, StageLibraryVisible:
			count++
		}
	}
	return count
}

// drainVictim picks the entry that loses its slot under window pressure:
// the weakest rank, breaking ties toward the most recent arrival.
func drainVictim(entries []Entry) int {
	victim := -1
	for i, entry := range entries {
		switch entry.Stage {
		case StageEntering, StageSpotlight, StageLibraryVisible:
		default:
			continue
		}
		if victim < 0 {
			victim = i
			continue
		}
		current := entries[victim]
		if entry.Rank > current.Rank {
			victim = i
			continue
		}
		if entry.Rank == current.Rank && entry.EnteredAt > current.EnteredAt {
			victim = i
		}
	}
	return victim
}

// promotionPick selects the entering entry that takes the spotlight: the
// strongest rank, breaking ties toward the earliest arrival.
func promotionPick(entries []Entry) int {
	pick := -1
	for i, entry := range entries {
		if entry.Stage != StageEntering {
			continue
		}
		if pick < 0 {
			pick = i
			continue
		}
		current := entries[pick]
		if entry.Rank < current.Rank {
			pick = i
			continue
		}
		if entry.Rank == current.Rank && entry.EnteredAt < current.EnteredAt {
			pick = i
		}
	}
	return pick
}

func hasSpotlight(entries []Entry) bool {
	for _, entry := range entries {
		if entry.Stage == StageSpotlight {
			return true
		}
	}
	return false
}
