// Package kometa turns rotation directives into a Kometa collection manifest.
// The builder joins directives with the catalog snapshot and the library
// index to produce ordered collection definitions; the renderer writes them
// as a YAML file Kometa consumes on its next run; the asset downloader stages
// background artwork alongside the manifest.
package kometa
