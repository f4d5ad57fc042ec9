// Package orchestrator coordinates media content processing end to
// end: media type detection, processor dispatch under a bounded
// concurrency gate, feature resolution against the capability registry,
// result caching, envelope persistence, and background reclamation of
// stuck jobs.
//
// An Orchestrator is constructed explicitly with New and wired with
// processors via RegisterProcessor; there are no package-level
// singletons.
package orchestrator
