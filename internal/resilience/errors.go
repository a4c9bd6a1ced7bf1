package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// retryable is implemented by error types that know whether they are safe to
// retry (e.g. provider errors carrying a rate-limit or network kind).
type retryable interface {
	Retryable() bool
}

// IsTransient returns true if the error (or any error in its chain) declares
// itself retryable, or matches common transient network patterns (timeouts,
// connection resets, DNS failures).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
