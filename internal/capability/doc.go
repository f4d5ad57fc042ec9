// Package capability maintains the registry of named optional features
// and their provider fallback chains.
//
// A capability (transcription, object detection, OCR) is declared with
// a priority-ordered list of providers and an enable predicate that
// typically reads a configuration flag. Availability is the conjunction
// of the enable flag and at least one ready provider.
//
// Execute tries providers in priority order: a provider failure is
// caught, logged, and recorded, and execution falls through to the next
// provider. Only exhausting the whole chain surfaces ErrExhausted. This
// models an N-provider fallback chain, such as a primary cloud vision
// provider backed by a language-model provider.
package capability
