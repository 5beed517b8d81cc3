package services

import "errors"

// Error taxonomy for the screening pipeline. Callers classify with
// errors.Is; everything is wrapped with %w on the way up.
var (
	// ErrInvalidInput marks malformed or empty documents and bad
	// configuration. Fatal for the operation, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyStore is returned by a vector store query that matches no
	// chunks. Recovered locally: the candidate proceeds with an empty
	// retrieval context.
	ErrEmptyStore = errors.New("no chunks match the query filter")

	// ErrMalformedResponse means the completion provider's output failed
	// schema validation even after the one strict retry. The candidate is
	// marked failed; the response is never coerced into a score.
	ErrMalformedResponse = errors.New("provider response does not match expected structure")

	// ErrProviderThrottled is transient; the matcher retries with
	// exponential backoff up to the configured attempt limit.
	ErrProviderThrottled = errors.New("provider throttled the request")

	// ErrProviderUnavailable covers transport and auth failures. Fatal for
	// the run, surfaced immediately without retry.
	ErrProviderUnavailable = errors.New("provider unavailable")
)
