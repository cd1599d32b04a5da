// Package ledger manages the user's declared holdings across named
// collections.
//
// The unit of storage is one (collection, name, set, number, foil) key;
// importing the same key again merges quantity into the existing row.
// Every mutation path triggers a reconciliation pass so the catalog's
// collected annotations always reflect the ledger.
package ledger
