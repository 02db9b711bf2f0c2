package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/application/service"
	"github.com/khoahotran/superleader/internal/config"
	"github.com/khoahotran/superleader/pkg/logger"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type openAIAdapter struct {
	client chatCompleter
	model  string
	log    logger.Logger
}

// NewOpenAIAdapter talks to any OpenAI-compatible chat endpoint. An empty
// BaseURL means api.openai.com; local servers such as Ollama need no API key.
func NewOpenAIAdapter(cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if cfg.LLM.BaseURL == "" && cfg.LLM.APIKey == "" {
		return nil, errors.New("llm is not configured: set LLM_API_KEY or LLM_BASE_URL")
	}

	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		apiKey = "unused"
	}
	oc := openai.DefaultConfig(apiKey)
	if cfg.LLM.BaseURL != "" {
		oc.BaseURL = cfg.LLM.BaseURL
	}

	log.Info("LLM adapter initialized", zap.String("base_url", oc.BaseURL), zap.String("model", cfg.LLM.Model))
	return &openAIAdapter{client: openai.NewClientWithConfig(oc), model: cfg.LLM.Model, log: log}, nil
}

func (a *openAIAdapter) Model() string { return a.model }

func (a *openAIAdapter) GenerateChatResponse(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm returned no chat choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("llm returned an empty message")
	}
	a.log.Debug("LLM response received",
		zap.String("model", a.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return content, nil
}
