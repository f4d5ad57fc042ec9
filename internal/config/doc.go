// Package config resolves orchestrator settings through a fixed three
// layer precedence: compiled defaults, an optional YAML override file,
// and environment variables applied last.
//
// # Layers
//
// Defaults are organized by section: base, one section per media type
// (video, audio, image), providers, and performance. A YAML file
// deep-merges over the defaults: nested maps merge recursively while
// scalar values replace. Environment variables override both, using the
// MO_ prefix with the dot-separated path upper-cased and joined with
// underscores:
//
//	base.max_concurrent_jobs  ->  MO_BASE_MAX_CONCURRENT_JOBS
//
// Environment values are coerced to the type of the default they
// replace (int, bool, float, string). An invalid environment value is
// logged and discarded; it never aborts startup.
//
// # Access
//
// Values are read with Get and the typed accessors (GetInt, GetBool,
// GetFloat, GetString, GetDuration). Durations are stored as strings
// ("30s", "1h") and parsed on access. Section returns a deep copy of a
// whole subtree for building processing options.
//
// # Mutation and notification
//
// Set runs the path's registered validator before committing and
// rejects with a ValidationError on failure, retaining the prior
// value. Observers registered with Observe are invoked synchronously
// after every successful Set. Watch additionally reloads the file layer
// on change (fsnotify) and fires observers for every path whose
// resolved value changed.
//
// Resolution is deterministic and side-effect-free for the same
// defaults, file, and environment.
package config
