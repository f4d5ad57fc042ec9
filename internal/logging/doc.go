// Package logging provides leveled logging for the orchestrator.
//
// The log level is read from the DEBUG and LOG_LEVEL environment
// variables at startup and can be changed at runtime with SetLevel.
package logging
