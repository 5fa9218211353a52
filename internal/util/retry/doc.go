// Package retry provides a bounded retry loop with exponential backoff.
//
// [WithExponentialBackoff] re-runs an operation up to MaxRetries additional
// times. Errors wrapped with [Fatal] stop the loop immediately. An optional
// [WithOnRetry] hook runs between a failed attempt and the next one; it is how
// callers repair shared state (for example re-establishing a session) before
// the operation is repeated from scratch.
package retry
