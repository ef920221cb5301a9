// Package llm wraps langchaingo models for the two-pass analysis pipeline.
package llm

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"expertminer/internal/config"
)

// blendedCostPerMTokUSD is a coarse blended input+output price used for the
// run cost estimate surfaced on completed runs.
const blendedCostPerMTokUSD = 5.0

// Client holds the fast model (relevance pass) and the strong multimodal
// model (extraction pass).
type Client struct {
	fast       llms.Model
	strong     llms.Model
	fastName   string
	strongName string
}

// New creates a Client for the configured provider. Returns an error when the
// provider is unset or its credential is missing; callers fall back to the
// keyword extractor in that case.
func New(ctx context.Context, cfg config.Config) (*Client, error) {
	fast, err := newModel(ctx, cfg, cfg.LLMFastModel)
	if err != nil {
		return nil, fmt.Errorf("create fast model: %w", err)
	}
	strong, err := newModel(ctx, cfg, cfg.LLMModel)
	if err != nil {
		return nil, fmt.Errorf("create extraction model: %w", err)
	}
	return &Client{
		fast:       fast,
		strong:     strong,
		fastName:   cfg.LLMFastModel,
		strongName: cfg.LLMModel,
	}, nil
}

func newModel(ctx context.Context, cfg config.Config, modelName string) (llms.Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(modelName),
		)

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		return anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(modelName),
		)

	case config.ProviderOllama:
		return ollama.New(
			ollama.WithModel(modelName),
			ollama.WithServerURL(cfg.OllamaHost),
		)

	case config.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(modelName),
		)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLMProvider)
	}
}

// FastComplete runs a prompt against the cheap relevance model.
func (c *Client) FastComplete(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, c.fast, prompt)
	if err != nil {
		return "", fmt.Errorf("fast completion: %w", err)
	}
	return response, nil
}

// Complete runs a prompt, with optional JPEG/PNG image attachments, against
// the extraction model.
func (c *Client) Complete(ctx context.Context, prompt string, images [][]byte) (string, error) {
	parts := make([]llms.ContentPart, 0, len(images)+1)
	parts = append(parts, llms.TextPart(prompt))
	for _, img := range images {
		parts = append(parts, llms.BinaryPart(detectImageMIME(img), img))
	}

	messages := []llms.MessageContent{{
		Role:  llms.ChatMessageTypeHuman,
		Parts: parts,
	}}

	response, err := c.strong.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("extraction completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}

// FastModel returns the relevance-pass model name.
func (c *Client) FastModel() string { return c.fastName }

// Model returns the extraction-pass model name.
func (c *Client) Model() string { return c.strongName }

// EstimateCostUSD converts an estimated token count into dollars at a
// blended rate.
func EstimateCostUSD(tokens int) float64 {
	return float64(tokens) / 1_000_000 * blendedCostPerMTokUSD
}

// detectImageMIME sniffs the content type from magic bytes, defaulting to
// JPEG.
func detectImageMIME(data []byte) string {
	if len(data) >= 8 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G' {
		return "image/png"
	}
	if len(data) >= 6 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F' {
		return "image/gif"
	}
	if len(data) >= 12 && string(data[8:12]) == "WEBP" {
		return "image/webp"
	}
	return "image/jpeg"
}
