package rotation

// Entry is one showdown occupying a window slot.
type Entry struct {
	Slug  string
	Title string
	Stage Stage
	// Rank is the 1-based candidate position at admission time. Lower is
	// stronger; ties between equal ranks break on earlier EnteredAt.
	Rank int
	// EnteredAt is the run number that admitted the entry.
	EnteredAt int64
	// StageSince is the run number of the most recent stage change.
	StageSince int64
	// MatchCount is the library match count observed on the most recent run.
	// It is display metadata only; every run recomputes eligibility from
	// fresh membership.
	MatchCount int
}

// State is the persisted rotation window plus run metadata. It is passed by
// value through the scheduler; nothing mutates it in place.
type State struct {
	RunCounter   int64
	SnapshotHash string
	Entries      []Entry
}

// Empty returns the state a first run starts from.
func Empty() State {
	return State{}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	cp := s
	cp.Entries = make([]Entry, len(s.Entries))
	copy(cp.Entries, s.Entries)
	return cp
}

// Spotlight returns the current spotlight entry if one exists.
func (s State) Spotlight() (Entry, bool) {
	for _, entry := range s.Entries {
		if entry.Stage == StageSpotlight {
			return entry, true
		}
	}
	return Entry{}, false
}

// Contains reports whether slug occupies a window slot in any stage.
func (s State) Contains(slug string) bool {
	for _, entry := range s.Entries {
		if entry.Slug == slug {
			return true
		}
	}
	return false
}

// NonTerminalCount reports how many entries occupy the window.
func (s State) NonTerminalCount() int {
	count := 0
	for _, entry := range s.Entries {
		if !entry.Stage.Terminal() {
			count++
		}
	}
	return count
}
