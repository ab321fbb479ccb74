package plex

// LibraryItem is one movie known to the Plex server, keyed by its TMDB id.
type LibraryItem struct {
	RatingKey string
	Title     string
	Year      int
	TMDBID    string
}

// Index answers membership questions against the indexed movie sections.
// Items without a TMDB id never enter the index since the catalog matches on
// TMDB ids alone.
type Index struct {
	items map[string]LibraryItem
}

// NewIndex builds an index from the given items, dropping any without a TMDB
// id. Later duplicates of the same id win, which does not matter for
// membership checks.
func NewIndex(items []LibraryItem) *Index {
	indexed := make(map[string]LibraryItem, len(items))
	for _, item := range items {
		if item.TMDBID == "" {
			continue
		}
		indexed[item.TMDBID] = item
	}
	return &Index{items: indexed}
}

// Contains reports whether a film with the given TMDB id is in the library.
func (x *Index) Contains(tmdbID string) bool {
	if x == nil {
		return false
	}
	_, ok := x.items[tmdbID]
	return ok
}

// Lookup returns the library item for a TMDB id if present.
func (x *Index) Lookup(tmdbID string) (LibraryItem, bool) {
	if x == nil {
		return LibraryItem{}, false
	}
	item, ok := x.items[tmdbID]
	return item, ok
}

// Len reports how many distinct TMDB ids the index carries.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.items)
}
