// Package letterboxd scrapes the Letterboxd showdown catalog into snapshot
// datasets the rotation engine consumes.
//
// A refresh walks the showdown index, then per showdown the crew list for
// ranked films, individual film pages for TMDB ids, and the showdown page for
// description and background artwork. Crew lists already present in the
// previous snapshot are reused rather than rescraped, and in-progress
// showdowns are skipped until their final list is published.
package letterboxd
