package rotation

// Directive is the visibility instruction for one showdown collection. The
// renderer receives exactly one directive per entry that existed during the
// run, including entries that expired in the same run.
type Directive struct {
	Slug  string
	Title string
	Stage Stage
	// Library makes the collection visible inside the Plex library.
	Library bool
	// Home pins the collection to the server owner's home screen.
	Home bool
	// Shared pins the collection to shared users' home screens.
	Shared bool
	// Delete removes the collection from the server entirely.
	Delete bool
}

// Describe renders the directive as a compact summary for logs.
func (d Directive) Describe() string {
	if d.Delete {
		return "delete"
	}
	switch {
	case d.Library && d.Home && d.Shared:
		return "library+home+shared"
	case d.Library:
		return "library"
	default:
		return "hidden"
	}
}

// DirectiveFor maps an entry's stage to its visibility directive.
//
// Entering entries stage assets and metadata without surfacing anywhere.
// The spotlight gets full promotion. Library-visible and closing entries
// stay findable in the library but lose home placement. Expired entries
// are deleted.
func DirectiveFor(entry Entry) Directive {
	d := Directive{
		Slug:  entry.Slug,
		Title: entry.Title,
		Stage: entry.Stage,
	}
	switch entry.Stage {
	case StageSpotlight:
		d.Library = true
		d.Home = true
		d.Shared = true
	case StageLibraryVisible, StageClosing:
		d.Library = true
	case StageExpired:
		d.Delete = true
	}
	return d
}
