// Package middleware provides HTTP middleware for the telemetry
// surface: per-request logging and prometheus request metrics, with
// probe and scrape paths excluded.
package middleware
