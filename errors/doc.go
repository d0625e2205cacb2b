// Package errors provides unified error handling for voicekit.
// It implements structured error types with machine-readable codes covering
// the plugin lifecycle: lookup failures, availability, activation and
// deactivation failures, fallback exhaustion, and data management.
package errors
