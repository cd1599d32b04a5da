// Package storage provides the object-storage client used as a source for
// bulk catalog files.
//
// Retrieval of the upstream dataset is outside the core: when a bulk file
// has already been mirrored into a bucket, the ingest command can stream it
// straight from there instead of a local path. Only read-side operations
// are exposed.
package storage
