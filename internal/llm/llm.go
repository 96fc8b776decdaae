package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/julienfritschheydon/doodates/internal/chat"
	"github.com/julienfritschheydon/doodates/internal/middleware"
	"github.com/tmc/langchaingo/llms"
)

type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Adapter wraps one LangChainGo backend behind the chat.Adapter surface and
// the single-prompt completion surface the intent fallback consumes.
type Adapter struct {
	client llms.Model
	model  string

	// ready reports whether the backend is reachable or configured; nil
	// means the constructor already validated everything it can.
	ready func(ctx context.Context) error
}

func NewAdapter(provider Provider, model, baseURL string) (*Adapter, error) {
	switch provider {
	case ProviderOllama:
		return newOllamaAdapter(model, baseURL)
	case ProviderOpenAI:
		return newOpenAIAdapter(model, baseURL)
	case ProviderAnthropic:
		return newAnthropicAdapter(model)
	case ProviderGemini:
		return newGeminiAdapter(model, baseURL)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// EnsureReady reports whether the backend can take a request. The intent
// fallback calls this before every completion so an unreachable service
// degrades detection instead of failing it.
func (a *Adapter) EnsureReady(ctx context.Context) error {
	if a == nil || a.client == nil {
		return errors.New("llm: adapter not initialized")
	}
	if a.ready != nil {
		return a.ready(ctx)
	}
	return nil
}

// Complete runs a single-prompt completion, bypassing chat history.
func (a *Adapter) Complete(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, a.client, prompt, llms.WithModel(a.model))
}

// ReplyStream implements chat.Adapter.
func (a *Adapter) ReplyStream(ctx context.Context, history []chat.Message, params *middleware.LLMParams, streamFn func(string)) (string, error) {
	messages := convertHistory(history)

	opts := make([]llms.CallOption, 0, 8)
	opts = append(opts, llms.WithModel(a.model))
	if params != nil {
		if params.Model != "" {
			opts = append(opts, llms.WithModel(params.Model))
		}
		if params.Temperature != 0 {
			opts = append(opts, llms.WithTemperature(params.Temperature))
		}
		if params.TopP != 0 {
			opts = append(opts, llms.WithTopP(params.TopP))
		}
		if params.MaxTokens != 0 {
			opts = append(opts, llms.WithMaxTokens(params.MaxTokens))
		}
		if len(params.Stop) > 0 {
			opts = append(opts, llms.WithStopWords(params.Stop))
		}
	}
	if streamFn != nil {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			streamFn(string(chunk))
			return nil
		}))
	}

	resp, err := a.client.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Content, nil
}

func convertHistory(history []chat.Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case chat.RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case chat.RoleAssistant:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		case chat.RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		}
	}
	return messages
}

// apiKeyReady builds a readiness check that fails until one of the given env
// vars carries a key.
func apiKeyReady(vars ...string) func(context.Context) error {
	return func(context.Context) error {
		for _, v := range vars {
			if os.Getenv(v) != "" {
				return nil
			}
		}
		return fmt.Errorf("llm: none of %v is set", vars)
	}
}
