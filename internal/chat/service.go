package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/julienfritschheydon/doodates/internal/middleware"
)

type Service struct {
	adapter  Adapter
	history  []Message
	mws      *middleware.Chain
	params   *middleware.LLMParams
	streamFn func(string)
}

type ServiceOption func(*Service)

func WithMiddlewareChain(chain *middleware.Chain) ServiceOption {
	return func(s *Service) {
		s.mws = chain
	}
}

// WithSystemPrompt seeds the history with a system message that survives
// Clear.
func WithSystemPrompt(prompt string) ServiceOption {
	return func(s *Service) {
		s.history = append(s.history, Message{Role: RoleSystem, Content: prompt})
	}
}

func WithParams(p *middleware.LLMParams) ServiceOption {
	return func(s *Service) {
		s.params = p
	}
}

// WithStream forwards assistant chunks to fn as they arrive.
func WithStream(fn func(string)) ServiceOption {
	return func(s *Service) {
		s.streamFn = fn
	}
}

func NewService(adapter Adapter, opts ...ServiceOption) *Service {
	s := &Service{
		adapter: adapter,
		history: make([]Message, 0, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Send(ctx context.Context, input string) (string, error) {
	return s.SendWithContext(ctx, input, nil)
}

func (s *Service) SendWithContext(ctx context.Context, input string, mwCtx map[string]any) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty input")
	}

	params := s.params

	if s.mws != nil {
		e := &middleware.Event{
			Name:     middleware.EventBeforeLLMRequest,
			UserText: input,
			Params:   params,
			Context:  mwCtx,
		}
		results, err := s.mws.Dispatch(ctx, e)
		if err != nil {
			return "", err
		}
		updated, canceled := applyTextDecisions(input, results)
		if canceled != nil && canceled.Cancel {
			// A middleware answered in place of the model. The replacement
			// text is the reply; without one the cancellation is an error.
			if strings.TrimSpace(updated) != "" {
				s.history = append(s.history,
					Message{Role: RoleUser, Content: input},
					Message{Role: RoleAssistant, Content: updated})
				return updated, nil
			}
			if strings.TrimSpace(canceled.Reason) == "" {
				return "", errors.New("request canceled by middleware")
			}
			return "", errors.New(canceled.Reason)
		}
		input = updated
		if e.Params != nil {
			params = e.Params
		}
	}

	s.history = append(s.history, Message{Role: RoleUser, Content: input})
	assistant, err := s.adapter.ReplyStream(ctx, s.history, params, s.streamFn)
	if err != nil {
		s.history = s.history[:len(s.history)-1]
		return "", err
	}
	assistant = strings.TrimSpace(assistant)
	if assistant == "" {
		s.history = s.history[:len(s.history)-1]
		return "", errors.New("empty response from model")
	}

	if s.mws != nil {
		e := &middleware.Event{
			Name:     middleware.EventAfterLLMResponse,
			UserText: input,
			LLMText:  assistant,
			Context:  mwCtx,
		}
		results, err := s.mws.Dispatch(ctx, e)
		if err != nil {
			s.history = s.history[:len(s.history)-1]
			return "", err
		}
		updated, canceled := applyTextDecisions(assistant, results)
		if canceled != nil && canceled.Cancel {
			if strings.TrimSpace(updated) != "" {
				assistant = updated
			} else {
				s.history = s.history[:len(s.history)-1]
				if strings.TrimSpace(canceled.Reason) == "" {
					return "", errors.New("response canceled by middleware")
				}
				return "", errors.New(canceled.Reason)
			}
		} else {
			assistant = updated
		}
	}

	s.history = append(s.history, Message{Role: RoleAssistant, Content: assistant})
	return assistant, nil
}

// Clear resets the conversation, keeping any seeded system messages.
func (s *Service) Clear() {
	kept := s.history[:0]
	for _, m := range s.history {
		if m.Role == RoleSystem {
			kept = append(kept, m)
		}
	}
	s.history = kept
}

func applyTextDecisions(initial string, results []middleware.DecisionResult) (string, *middleware.Decision) {
	cur := strings.TrimSpace(initial)
	for _, r := range results {
		dec := r.Decision
		if dec.ReplaceText != nil {
			cur = strings.TrimSpace(*dec.ReplaceText)
		}
		if dec.Cancel {
			return cur, &dec
		}
	}
	return cur, nil
}
