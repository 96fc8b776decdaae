package llm

import (
	"os"

	"github.com/tmc/langchaingo/llms/openai"
)

func newOpenAIAdapter(model, baseURL string) (*Adapter, error) {
	opts := []openai.Option{
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	token := os.Getenv("DOODATES_OPENAI_API_KEY")
	if token == "" {
		token = os.Getenv("OPENAI_API_KEY")
	}
	if token != "" {
		opts = append(opts, openai.WithToken(token))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		client: client,
		model:  model,
		ready:  apiKeyReady("DOODATES_OPENAI_API_KEY", "OPENAI_API_KEY"),
	}, nil
}
