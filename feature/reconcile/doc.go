// Package reconcile keeps the catalog's collected annotations in sync with
// the ledger.
//
// A run is a pure diff-and-apply: aggregate the ledger with one GROUP BY,
// bulk-prefetch every candidate print by name, resolve each aggregate
// through the in-memory resolver index, diff the result against the rows
// currently annotated, and apply the whole diff in a single transaction.
// When the catalog already agrees with the ledger the diff is empty and
// nothing is written, so re-running is always safe.
//
// One run per engine at a time; the ledger's post-mutation trigger treats a
// run already in flight as success.
package reconcile
