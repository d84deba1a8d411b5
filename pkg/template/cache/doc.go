// Package cache provides a Redis-backed decision cache wrapping the
// resolution engine. Caching is an external concern: the engine itself stays
// pure and the cache composes around it, keyed by the request context
// fingerprint.
//
// Authored template changes must eventually invalidate cached decisions.
// The Flusher runs on a cron schedule and clears the cache namespace, and
// stores can call Flush directly after a write for immediate propagation.
package cache
