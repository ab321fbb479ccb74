// Package state persists the rotation window in SQLite and exposes the
// load/save pair the run pipeline builds on.
//
// A database that has never completed a run loads as the empty state; any
// other load failure aborts the run rather than silently starting a fresh
// rotation over collections that may still be visible. Saves replace the
// whole window in a single transaction and must succeed before any directive
// reaches the renderer, keeping persisted state and emitted output in step.
//
// Schema changes are added as numbered files under migrations/ and apply
// automatically on open.
package state
