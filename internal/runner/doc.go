// Package runner drives one rotation run end to end.
//
// A run is a pipeline with a fixed order: lock acquisition, state load,
// snapshot load (with an optional catalog refresh), library indexing,
// window transition, state save, manifest render, asset download, and
// notification. State always persists before the manifest is written, so an
// interrupted run leaves the manifest at most one run behind the recorded
// window, never ahead of it.
//
// Collaborators enter through small interfaces (CatalogSource,
// LibraryMatcher, StateStore, ManifestRenderer, AssetFetcher) so the CLI can
// wire real services while tests substitute fakes per concern.
package runner
