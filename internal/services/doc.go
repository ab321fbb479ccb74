// Package services defines shared utilities consumed by the rotation run
// pipeline and the external integrations it talks to.
//
// Key responsibilities:
//   - Context helpers that stamp run correlation identifiers, list slugs, and
//     stage names for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (fetch vs lookup vs state vs configuration) so callers can branch with
//     errors.Is and the CLI can choose an exit status.
//
// Use these helpers when wiring new collaborators so operational behaviour
// (error handling, observability) stays uniform across the run.
package services
