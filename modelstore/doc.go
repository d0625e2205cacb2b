// Package modelstore manages a plugin's on-disk model artifacts under a
// single root directory: listing, sizing, and deleting them independently
// of whether the owning plugin is active.
package modelstore
