package ai

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL — OpenAI-совместимый эндпоинт Gemini
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float32
	MaxOutputTokens int
}

type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	conf.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &OpenAIClient{
		client: openai.NewClientWithConfig(conf),
		cfg:    cfg,
	}
}

func (c *OpenAIClient) Model() string {
	return c.cfg.Model
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
