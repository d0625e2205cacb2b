// Package version provides build version information embedding.
package version
