package provider

import "fmt"

// ErrorKind categorizes a provider failure for caller retry policy.
type ErrorKind string

const (
	KindRateLimited     ErrorKind = "rate_limited"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindNetworkError    ErrorKind = "network_error"
)

// Error is the typed failure surface of every provider adapter. Callers, not
// this package, decide retry policy.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider: %s", e.Kind)
	}
	return fmt.Sprintf("provider: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is safe to retry. Invalid responses
// are deterministic and retrying them only burns budget.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindNetworkError
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
