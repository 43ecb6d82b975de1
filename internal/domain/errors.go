package domain

import (
	"errors"
	"fmt"
)

// ErrTotalSourceFailure means zero articles were fetched across every
// configured source; the run cannot produce a digest.
var ErrTotalSourceFailure = errors.New("all feed sources failed")

// ErrNothingToScore means no article survived scoring; without scores
// there is nothing to rank.
var ErrNothingToScore = errors.New("no articles survived scoring")

// OracleFaultKind classifies oracle call failures for retry decisions.
type OracleFaultKind string

const (
	OracleRateLimited  OracleFaultKind = "rate_limited"
	OracleTimeout      OracleFaultKind = "timeout"
	OracleInvalidInput OracleFaultKind = "invalid_input"
	OracleServiceError OracleFaultKind = "service_error"
)

// OracleError wraps a failed oracle call with its fault classification.
type OracleError struct {
	Kind OracleFaultKind
	Err  error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Kind, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient. Rate limits and
// timeouts are worth retrying; invalid input and hard service errors
// are not.
func (e *OracleError) Retryable() bool {
	return e.Kind == OracleRateLimited || e.Kind == OracleTimeout
}

// RetryableOracleError reports whether err is a transient oracle failure.
func RetryableOracleError(err error) bool {
	var oe *OracleError
	if errors.As(err, &oe) {
		return oe.Retryable()
	}
	return false
}

// CacheError marks a cache I/O failure. Incremental correctness cannot be
// guaranteed without the cache, so callers treat it as fatal for the run.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }
