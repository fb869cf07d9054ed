package inference

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/aroyle/depthroute/src/config"
	"github.com/aroyle/depthroute/src/models"
	"github.com/aroyle/depthroute/src/utils"
)

// Client is the generation capability: one OpenAI-compatible connection
// shared by both routing tiers, with the model chosen per call.
type Client struct {
	config *config.LLMConfig
	llm    llms.Model
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for generation")
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Endpoint))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	return &Client{
		config: cfg,
		llm:    llm,
	}, nil
}

// CountTokens counts tokens with the model's tokenizer, falling back to a
// character-based estimate when the tokenizer comes up empty.
func (c *Client) CountTokens(model, text string) int {
	if n := llms.CountTokens(model, text); n > 0 {
		return n
	}
	return utils.EstimateTokens(text)
}

// Generate issues a single completion against the given model and returns
// the text with its token usage. Any upstream failure (credential, quota,
// network) surfaces as one wrapped error with the cause preserved.
func (c *Client) Generate(ctx context.Context, model, prompt string, opts models.GenerateOptions) (string, models.Usage, error) {
	temperature := float64(opts.Temperature)
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := c.llm.GenerateContent(ctx, content,
		llms.WithModel(model),
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", models.Usage{}, fmt.Errorf("generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", models.Usage{}, fmt.Errorf("generation failed: empty response from %s", model)
	}

	choice := resp.Choices[0]
	usage := usageFromInfo(choice.GenerationInfo)
	if usage.InputTokens == 0 {
		usage.InputTokens = c.CountTokens(model, prompt)
	}
	if usage.OutputTokens == 0 {
		usage.OutputTokens = c.CountTokens(model, choice.Content)
	}

	return choice.Content, usage, nil
}

// usageFromInfo pulls token counts out of the provider's loosely typed
// generation metadata. Missing or oddly typed entries read as zero.
func usageFromInfo(info map[string]any) models.Usage {
	var usage models.Usage
	if v, ok := info["PromptTokens"].(int); ok {
		usage.InputTokens = v
	}
	if v, ok := info["CompletionTokens"].(int); ok {
		usage.OutputTokens = v
	}
	return usage
}
