// Package retry provides a reusable retryable-transaction combinator.
//
// Store writes can fail transiently on lock contention; instead of ad hoc
// busy-retry loops at each call site, callers wrap the write in
// retry.Transaction with an explicit Policy (max attempts, backoff). Only
// errors the errs package classifies as retryable are retried.
package retry
