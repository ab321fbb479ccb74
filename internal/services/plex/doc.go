// Package plex resolves which catalog films actually exist in the local Plex
// movie libraries. It builds a TMDB id index from the server's movie sections
// and hands it to the rotation scorer as the membership oracle.
package plex
