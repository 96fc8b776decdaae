package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaURL = "http://localhost:11434"

func newOllamaAdapter(model, baseURL string) (*Adapter, error) {
	var opts []ollama.Option

	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	opts = append(opts, ollama.WithServerURL(baseURL))
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client: client,
		model:  model,
		ready:  ollamaReady(baseURL),
	}, nil
}

// ollamaReady pings the local server's tags endpoint. A dead daemon answers
// in well under the 2s cap.
func ollamaReady(baseURL string) func(context.Context) error {
	return func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(pingCtx, http.MethodGet, baseURL+"/api/tags", nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("llm: ollama unreachable at %s: %w", baseURL, err)
		}
		resp.Body.Close()
		return nil
	}
}
