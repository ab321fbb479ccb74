// Package preflight provides readiness checks for the external services
// and filesystem paths a rotation run depends on.
//
// The CLI "showdown preflight" command runs RunAll and renders a pass/fail
// table; individual check functions (CheckPlex, CheckLetterboxd,
// CheckDirectoryAccess) exist so callers can probe a single dependency.
// Checks never mutate state; a missing directory is reported, not created.
package preflight
