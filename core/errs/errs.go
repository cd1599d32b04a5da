package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the application. Callers discriminate with
// errors.Is rather than string matching, so failures crossing the worker
// boundary stay typed.
var (
	// ErrInput indicates malformed source data. Fatal; never retried.
	ErrInput = errors.New("malformed input")

	// ErrInvalidInput indicates a caller-supplied value that fails validation
	// before any lookup is attempted (e.g. an empty card name).
	ErrInvalidInput = errors.New("invalid input")

	// ErrStore indicates an I/O or lock-contention failure in the embedded
	// store. Retryable with backoff.
	ErrStore = errors.New("store failure")

	// ErrNotFound indicates a lookup that matched nothing. This is an
	// expected per-item outcome, never fatal.
	ErrNotFound = errors.New("not found")

	// ErrReconciliationFailed indicates the reconcile transaction rolled
	// back. No partial state exists; safe to retry.
	ErrReconciliationFailed = errors.New("reconciliation failed")

	// ErrTimeout indicates a bounded operation exceeded its budget. Treated
	// as a store failure for retry purposes.
	ErrTimeout = errors.New("operation timed out")

	// ErrCancelled indicates a cooperative abort requested by the host.
	ErrCancelled = errors.New("operation cancelled")

	// ErrAlreadyRunning indicates a single-flight guard rejected a second
	// concurrent run against the same store.
	ErrAlreadyRunning = errors.New("operation already running")
)

// InputError wraps a parse failure with positional context.
type InputError struct {
	Offset int64
	Reason string
}

func (e *InputError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("malformed input at byte %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// Is reports ErrInput so callers can discriminate without the concrete type.
func (e *InputError) Is(target error) bool {
	return target == ErrInput
}

// StoreError wraps a database failure with the operation that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure in %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports ErrStore so callers can discriminate without the concrete type.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// Retryable reports whether the error is worth retrying with backoff.
// Store failures and timeouts qualify; input errors and cancellation do not.
func Retryable(err error) bool {
	return errors.Is(err, ErrStore) || errors.Is(err, ErrTimeout)
}
