// Package catalog defines the showdown snapshot model shared by the probe,
// the rotation engine, and the renderer.
//
// A Snapshot is the frozen view of Letterboxd's showdown index that one
// rotation run consumes: each Dataset couples the index summary (slug, title,
// logline, status, artwork) with the ranked crew list and any resolved TMDB
// ids. Snapshots round-trip through a JSON cache file so film page fetches
// are reused across probe runs, and each snapshot hashes to a stable digest
// recorded alongside rotation state.
package catalog
