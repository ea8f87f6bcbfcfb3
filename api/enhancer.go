package api

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/voiceflow/cms/internal/config"
)

var errEmptyCompletion = errors.New("inference API returned an empty completion")

const enhanceSystemPrompt = "You are a professional content editor. Enhance " +
	"the given text while maintaining its original meaning and voice."

// ContentEnhancer rewrites draft text through the inference API. Unlike the
// command interpreter it has no fallback: callers get Unavailable when the
// API is not configured.
type ContentEnhancer struct {
	client *openai.Client
	model  string
}

// NewContentEnhancer creates an enhancer; a nil client means unconfigured
func NewContentEnhancer(cfg config.OpenAIConfig) *ContentEnhancer {
	enhancer := &ContentEnhancer{model: cfg.Model}
	if cfg.APIKey != "" {
		client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
		enhancer.client = &client
	}
	return enhancer
}

// Available reports whether the inference API is configured
func (e *ContentEnhancer) Available() bool {
	return e.client != nil
}

// Enhance returns an improved version of the text
func (e *ContentEnhancer) Enhance(ctx context.Context, text string) (string, error) {
	if e.client == nil {
		return "", UnavailableError("AI service not available")
	}

	completion, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(enhanceSystemPrompt),
			openai.UserMessage(text),
		},
		MaxTokens:   openai.Int(1000),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errEmptyCompletion
	}

	return completion.Choices[0].Message.Content, nil
}
