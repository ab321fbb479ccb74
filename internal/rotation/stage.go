package rotation

import "strings"

// Stage represents the lifecycle of a window entry. Entries only ever move
// forward through the sequence; eviction accelerates forward movement, it
// never reverses it.
type Stage string

const (
	StageEntering       Stage = "entering"
	StageSpotlight      Stage = "spotlight"
	StageLibraryVisible Stage = "library_visible"
	StageClosing        Stage = "closing"
	StageExpired        Stage = "expired"
)

var allStages = []Stage{
	StageEntering,
	StageSpotlight,
	StageLibraryVisible,
	StageClosing,
	StageExpired,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

var stageOrder = func() map[Stage]int {
	order := make(map[Stage]int, len(allStages))
	for i, stage := range allStages {
		order[stage] = i
	}
	return order
}()

// AllStages returns the ordered list of known stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stageSet[normalized]
	return normalized, ok
}

// Terminal reports whether the stage ends an entry's lifecycle.
func (s Stage) Terminal() bool {
	return s == StageExpired
}

// Visible reports whether the stage keeps a collection present in the
// library. Entering entries hold a slot but are not surfaced yet.
func (s Stage) Visible() bool {
	switch s {
	case StageSpotlight, StageLibraryVisible, StageClosing:
		return true
	default:
		return false
	}
}

// Before reports whether s precedes other in lifecycle order.
func (s Stage) Before(other Stage) bool {
	return stageOrder[s] < stageOrder[other]
}
