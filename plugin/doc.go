// Package plugin implements the transcription plugin lifecycle: the uniform
// capability interface every backend implements, an ordered registry, a
// side-effect-bounded activation tester, a fallback orchestrator that walks
// a deterministic candidate order, and the manager that owns the single
// active-plugin pointer.
//
// The manager guarantees that at most one plugin is active at any
// observation point, that a failed activation test never rewrites the
// persisted selection, and that a bulk data wipe invokes cleanup on every
// registered plugin exactly once before re-establishing a working backend.
package plugin
