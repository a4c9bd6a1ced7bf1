package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetryableErr struct{ retry bool }

func (e *fakeRetryableErr) Error() string   { return "fake" }
func (e *fakeRetryableErr) Retryable() bool { return e.retry }

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestDoVal_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetryConfig(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &fakeRetryableErr{retry: true}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoVal_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastRetryConfig(5), func(ctx context.Context) (int, error) {
		calls++
		return 0, &fakeRetryableErr{retry: false}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastRetryConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, &fakeRetryableErr{retry: true}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoVal_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, fastRetryConfig(10), func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, &fakeRetryableErr{retry: true}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsTransient_RetryableChain(t *testing.T) {
	wrapped := eris.Wrap(&fakeRetryableErr{retry: true}, "outer")
	assert.True(t, IsTransient(wrapped))

	permanent := eris.Wrap(&fakeRetryableErr{retry: false}, "outer")
	assert.False(t, IsTransient(permanent))

	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(eris.New("plain failure")))
}

func TestIsTransient_NetworkPatterns(t *testing.T) {
	assert.True(t, IsTransient(eris.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(eris.New("dial tcp: i/o timeout")))
}
