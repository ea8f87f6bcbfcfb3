package api

import (
	"context"
	"encoding/json"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/voiceflow/cms/internal/config"
	"github.com/voiceflow/cms/internal/slogging"
)

// CommandResult is the interpreted form of a voice command
type CommandResult struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Message    string         `json:"message,omitempty"`
}

const commandSystemPrompt = "You are a voice command interpreter for a CMS. " +
	"Parse the command and return JSON with 'action' and 'parameters' fields. " +
	"Available actions: create_content, navigate, save_content, search_content, " +
	"edit_content, delete_content."

// CommandInterpreter turns free-form voice commands into structured actions.
// It asks the inference API first and falls back to fixed keyword rules when
// the API is unconfigured, unreachable, or returns something unparseable.
type CommandInterpreter struct {
	client *openai.Client
	model  string
}

// NewCommandInterpreter creates an interpreter. An empty API key leaves the
// client nil and every command goes through the keyword fallback.
func NewCommandInterpreter(cfg config.OpenAIConfig) *CommandInterpreter {
	interpreter := &CommandInterpreter{model: cfg.Model}
	if cfg.APIKey != "" {
		client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
		interpreter.client = &client
	}
	return interpreter
}

// Available reports whether the inference API is configured
func (ci *CommandInterpreter) Available() bool {
	return ci.client != nil
}

// Interpret classifies one command. It never fails: any inference problem
// degrades to the keyword rules.
func (ci *CommandInterpreter) Interpret(ctx context.Context, command string) CommandResult {
	if ci.client != nil {
		result, err := ci.interpretWithAI(ctx, command)
		if err == nil {
			return result
		}
		slogging.Get().Warn("AI command interpretation failed, using keyword fallback: %v", err)
	}
	return interpretByKeywords(command)
}

func (ci *CommandInterpreter) interpretWithAI(ctx context.Context, command string) (CommandResult, error) {
	completion, err := ci.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(ci.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(commandSystemPrompt),
			openai.UserMessage(command),
		},
		MaxTokens:   openai.Int(150),
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return CommandResult{}, err
	}
	if len(completion.Choices) == 0 {
		return CommandResult{}, errEmptyCompletion
	}

	var result CommandResult
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &result); err != nil {
		return CommandResult{}, err
	}
	if result.Action == "" {
		return CommandResult{}, errEmptyCompletion
	}
	return result, nil
}

// interpretByKeywords applies the fixed classification rules used when the
// inference API is unavailable
func interpretByKeywords(command string) CommandResult {
	lowered := strings.ToLower(command)

	switch {
	case strings.Contains(lowered, "create") && strings.Contains(lowered, "content"):
		return CommandResult{
			Action:     "create_content",
			Parameters: map[string]any{"type": "blog_post"},
		}
	case strings.Contains(lowered, "navigate"):
		return CommandResult{
			Action:     "navigate",
			Parameters: map[string]any{"direction": "forward"},
		}
	case strings.Contains(lowered, "save"):
		return CommandResult{
			Action:     "save_content",
			Parameters: map[string]any{},
		}
	default:
		return CommandResult{
			Action:  "unknown",
			Message: "Command not recognized",
		}
	}
}
