// Package progress defines the typed progress channel between long-running
// operations (catalog import, reconciliation) and their observers.
//
// Operations report Message values through a Reporter; the Broadcaster
// implementation fans them out to any number of subscribers and keeps the
// latest message per phase for pull-based observers.
package progress
