package provider

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"

	"github.com/sells-group/jobpilot/internal/config"
	"github.com/sells-group/jobpilot/pkg/anthropic"
)

// AnthropicGenerator adapts pkg/anthropic to the Generator contract.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

// NewAnthropicGenerator builds the Anthropic backend adapter.
func NewAnthropicGenerator(cfg config.ProviderConfig) *AnthropicGenerator {
	return &AnthropicGenerator{
		client: anthropic.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

// NewAnthropicGeneratorWithClient builds the adapter around an existing
// client, for tests.
func NewAnthropicGeneratorWithClient(client anthropic.Client, model string) *AnthropicGenerator {
	return &AnthropicGenerator{client: client, model: model}
}

func (g *AnthropicGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	msgReq := anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.Message{
			{Role: "user", Content: req.Prompt},
		},
	}
	if req.System != "" {
		block := anthropic.SystemBlock{Text: req.System}
		if req.CacheSystem {
			block.CacheControl = &anthropic.CacheControl{TTL: "5m"}
		}
		msgReq.System = []anthropic.SystemBlock{block}
	}

	resp, err := g.client.CreateMessage(ctx, msgReq)
	if err != nil {
		return "", classifyAnthropicErr(err)
	}
	resp.Usage.LogCost(g.model, "generate")

	text := resp.Text()
	if text == "" {
		return "", newError(KindInvalidResponse, eris.New("anthropic: empty response"))
	}
	return text, nil
}

// classifyAnthropicErr maps SDK failures onto the provider error taxonomy.
func classifyAnthropicErr(err error) error {
	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429:
			return newError(KindRateLimited, err)
		case apierr.StatusCode >= 500:
			return newError(KindNetworkError, err)
		default:
			return newError(KindInvalidResponse, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(KindNetworkError, err)
	}
	return newError(KindNetworkError, err)
}
