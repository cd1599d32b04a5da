// Package ingest implements the streaming catalog importer.
//
// The source is a very large JSON array that must never be fully resident.
// A pull-based Decoder yields one element per call; the Worker groups
// elements into fixed-size batches and writes each batch in its own
// transaction as an insert-or-replace keyed by catalog id. Peak residency
// is O(batch size) regardless of input length.
//
// A batch failure rolls back that batch only and aborts the run; batches
// already committed stay committed. Because writes are upserts by id,
// re-running a partially failed import is safe and convergent.
//
// The worker runs on its own goroutine and reports through a channel of
// tagged Message values (Started, Progress, Completed, Failed). The host
// never shares mutable state with it; cancellation is cooperative and takes
// effect at batch boundaries.
package ingest
