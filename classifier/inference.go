package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Inference is the completion surface the classifier needs. Kept narrow so
// tests can fake it and so a local endpoint can stand in for the hosted one.
type Inference interface {
	Complete(ctx context.Context, systemMessage, prompt string) (string, error)
}

// OpenAIInference calls an OpenAI-compatible chat-completion endpoint.
type OpenAIInference struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIInference(endpoint, apiKey, model string, logger *zap.Logger) *OpenAIInference {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(endpoint, "/")

	return &OpenAIInference{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.Named("inference"),
	}
}

func (o *OpenAIInference) Complete(ctx context.Context, systemMessage, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		o.logger.Warn("completion failed", zap.Error(err))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	o.logger.Debug("completion ok",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return resp.Choices[0].Message.Content, nil
}
