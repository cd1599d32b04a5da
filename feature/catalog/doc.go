// Package catalog maintains the canonical store of card print records.
//
// The store holds two tables with the same matching schema: the main
// catalog and a secondary promotional/token catalog. Records are written
// only by the streaming ingestion worker (insert-or-replace keyed by the
// upstream id); the collected_qty annotation is written only by the
// reconciliation engine.
//
// All lookups used by the entity resolver are indexed point lookups over
// (name), (lower(name)), (set, number) and (lower(name), lower(set),
// number).
package catalog
