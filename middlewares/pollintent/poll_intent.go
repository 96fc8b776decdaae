package pollintent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/julienfritschheydon/doodates/internal/intent"
	mw "github.com/julienfritschheydon/doodates/internal/middleware"
	"github.com/julienfritschheydon/doodates/internal/poll"
)

func init() {
	instance = &PollIntent{}
	mw.Register(instance)
}

var instance *PollIntent

// Configure attaches the resolver to the registered instance. Until it is
// called the middleware reports ShouldLoad=false and the chain skips it.
func Configure(r *intent.Resolver) {
	instance.mu.Lock()
	defer instance.mu.Unlock()
	instance.resolver = r
}

// PollIntent intercepts chat messages and tries to resolve them as poll
// edits before they reach the model. A handled message cancels the LLM
// request and replaces it with the confirmation text.
type PollIntent struct {
	mu       sync.RWMutex
	resolver *intent.Resolver
}

func (p *PollIntent) ID() string    { return "poll_intent" }
func (p *PollIntent) Priority() int { return 120 } // intercept before anything else

func (p *PollIntent) ShouldLoad(_ context.Context, e *mw.Event) bool {
	if e != nil && e.Context != nil {
		if v, ok := e.Context["poll_intent"].(bool); ok && !v {
			return false
		}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resolver != nil
}

func (p *PollIntent) OnEvent(ctx context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil || e.Name != mw.EventBeforeLLMRequest {
		return mw.Decision{}, nil
	}

	input := strings.TrimSpace(e.UserText)
	if input == "" {
		return mw.Decision{}, nil
	}

	p.mu.RLock()
	resolver := p.resolver
	p.mu.RUnlock()

	res := resolver.DetectIntent(ctx, input)
	if !res.Handled {
		// Not an edit request; the model answers normally.
		return mw.Decision{}, nil
	}

	savedTokens := len(input) / 4
	if savedTokens < 1 {
		savedTokens = 1
	}

	if res.IsTypeSwitch {
		reply := typeSwitchConfirmation(res)
		return mw.Decision{
			Cancel:      true,
			ReplaceText: &reply,
			Reason:      "poll_intent: type switch pending confirmation",
		}, nil
	}

	reply := res.ConfirmMessage
	return mw.Decision{
		Cancel:      true,
		ReplaceText: &reply,
		Reason:      fmt.Sprintf("poll_intent: handled locally (saved ~%d tokens)", savedTokens),
	}, nil
}

// typeSwitchConfirmation asks the user to confirm before the document type
// changes; conversion drops data, so it never runs on detection alone.
func typeSwitchConfirmation(res intent.Result) string {
	label := "sondage de dates"
	if res.RequestedType == poll.KindForm {
		label = "questionnaire"
	}
	var b strings.Builder
	if res.ConfirmMessage != "" {
		b.WriteString("🔄 " + res.ConfirmMessage + "\n")
	}
	fmt.Fprintf(&b, "Voulez-vous transformer ce sondage en %s ? Les réponses déjà saisies seront perdues.", label)
	return b.String()
}
