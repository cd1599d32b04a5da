// Package errs defines the typed error taxonomy shared by every public
// operation.
//
// Errors fall into a small set of categories with distinct handling:
//
//   - ErrInput: malformed source data, fatal, never retried
//   - ErrStore: I/O or lock contention in the embedded store, retryable
//   - ErrNotFound: expected per-item miss, recorded but never fatal
//   - ErrReconciliationFailed: transaction rolled back, safe to retry
//   - ErrTimeout: bounded operation exceeded its budget, retryable
//   - ErrCancelled: cooperative abort
//   - ErrAlreadyRunning: single-flight guard rejection
//
// Concrete types (InputError, StoreError) carry context and satisfy
// errors.Is against their sentinel, so callers can branch on category
// without depending on the concrete type.
package errs
