// Package rotation implements the showdown rotation engine: the pure state
// machine that decides, run by run, which showdown lists occupy the sliding
// window and what visibility each one's Plex collection carries.
//
// The engine has three parts. BuildCandidates scores every showdown in a
// catalog snapshot against the local library and keeps the ones above the
// match threshold, ordered by the configured sort key. Transition advances
// the persisted window through the entering, spotlight, library_visible,
// closing, and expired stages, admitting and evicting entries as eligibility
// changes. DirectiveFor maps each resulting stage to the concrete visibility
// directive the renderer consumes.
//
// Everything here is deterministic and free of I/O. Callers load state,
// call Transition once per run, persist the new state, and only then hand
// the directives to the renderer.
package rotation
