// Package database manages the embedded SQLite store.
//
// It provides the GORM connection (WAL journaling, bounded busy timeout,
// bulk-load tuning for ingestion), a versioned migration registry applied
// exactly once per version, and a schema inspector whose capability probes
// are cached until the next migration run rather than for a wall-clock TTL.
package database
