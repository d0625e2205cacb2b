// Package settings persists the chosen active plugin and per-plugin option
// maps. It is read at startup to seed the preferred candidate and written
// back only when the caller explicitly asks for the selection to be saved —
// a failed activation test never rewrites the file.
package settings
