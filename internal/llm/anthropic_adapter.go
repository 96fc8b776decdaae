package llm

import (
	"os"

	"github.com/tmc/langchaingo/llms/anthropic"
)

func newAnthropicAdapter(model string) (*Adapter, error) {
	opts := []anthropic.Option{
		anthropic.WithModel(model),
	}
	apiKey := os.Getenv("DOODATES_ANTHROPIC_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey != "" {
		opts = append(opts, anthropic.WithToken(apiKey))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		client: client,
		model:  model,
		ready:  apiKeyReady("DOODATES_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"),
	}, nil
}
