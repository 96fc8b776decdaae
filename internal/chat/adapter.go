package chat

import (
	"context"

	"github.com/julienfritschheydon/doodates/internal/middleware"
)

// Adapter abstracts chat completion providers.
type Adapter interface {
	// ReplyStream streams assistant text chunks to streamFn (if non-nil) and
	// returns the full assistant text.
	ReplyStream(ctx context.Context, history []Message, params *middleware.LLMParams, streamFn func(string)) (string, error)
}
