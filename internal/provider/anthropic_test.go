package provider

import (
	"context"
	"errors"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobpilot/pkg/anthropic"
)

type fakeAnthropicClient struct {
	resp   *anthropic.MessageResponse
	err    error
	gotReq anthropic.MessageRequest
}

func (f *fakeAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestAnthropicGenerator_MapsRequest(t *testing.T) {
	client := &fakeAnthropicClient{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: `{"ok": true}`}},
	}}
	gen := NewAnthropicGeneratorWithClient(client, "claude-sonnet-4-5-20250929")

	out, err := gen.Generate(context.Background(), GenerateRequest{
		System:      "system prompt",
		Prompt:      "user prompt",
		MaxTokens:   512,
		CacheSystem: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)

	assert.Equal(t, "claude-sonnet-4-5-20250929", client.gotReq.Model)
	assert.Equal(t, int64(512), client.gotReq.MaxTokens)
	require.Len(t, client.gotReq.System, 1)
	assert.Equal(t, "system prompt", client.gotReq.System[0].Text)
	require.NotNil(t, client.gotReq.System[0].CacheControl)
	assert.Equal(t, "5m", client.gotReq.System[0].CacheControl.TTL)
	require.Len(t, client.gotReq.Messages, 1)
	assert.Equal(t, "user", client.gotReq.Messages[0].Role)
}

func TestAnthropicGenerator_EmptyResponse(t *testing.T) {
	client := &fakeAnthropicClient{resp: &anthropic.MessageResponse{}}
	gen := NewAnthropicGeneratorWithClient(client, "m")

	_, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "p", MaxTokens: 10})
	require.Error(t, err)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindInvalidResponse, perr.Kind)
}

func TestClassifyAnthropicErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"rate limit", &sdk.Error{StatusCode: 429}, KindRateLimited},
		{"server error", &sdk.Error{StatusCode: 503}, KindNetworkError},
		{"bad request", &sdk.Error{StatusCode: 400}, KindInvalidResponse},
		{"plain error", errors.New("connection reset"), KindNetworkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var perr *Error
			require.True(t, errors.As(classifyAnthropicErr(tt.err), &perr))
			assert.Equal(t, tt.kind, perr.Kind)
		})
	}
}
