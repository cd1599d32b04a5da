// Package resolver maps loose (name, set, number) identities from user
// ledger data onto canonical catalog records.
//
// Resolution walks a ranked ladder of lookups — exact, case-insensitive,
// set-without-number, name-only — against the main catalog first and the
// promotional/token catalog second; the first tier that yields candidates
// wins. Ties within a tier prefer English records and break on primary key
// so repeated runs always pick the same record.
//
// The same ladder runs against two sources: the store's indexed repo for
// one-off lookups, and an in-memory Index over a prefetched candidate set
// for bulk reconciliation.
package resolver
