package llm

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/googleai"
)

func newGeminiAdapter(model, baseURL string) (*Adapter, error) {
	effectiveModel := model
	if effectiveModel == "" {
		effectiveModel = googleai.DefaultOptions().DefaultModel
	}

	opts := []googleai.Option{
		googleai.WithDefaultModel(effectiveModel),
	}
	if baseURL != "" {
		opts = append(opts, googleai.WithRest())
	}
	key := os.Getenv("DOODATES_GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key != "" {
		opts = append(opts, googleai.WithAPIKey(key))
	}

	client, err := googleai.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		client: client,
		model:  effectiveModel,
		ready:  apiKeyReady("DOODATES_GEMINI_API_KEY", "GOOGLE_API_KEY"),
	}, nil
}
