package pollintent

import (
	"context"
	"strings"
	"testing"

	"github.com/julienfritschheydon/doodates/internal/intent"
	mw "github.com/julienfritschheydon/doodates/internal/middleware"
	"github.com/julienfritschheydon/doodates/internal/poll"
)

func newConfigured(t *testing.T) (*PollIntent, *poll.Store) {
	t.Helper()
	store := poll.NewStore(&poll.Poll{
		Type:  poll.KindDate,
		Title: "Réunion d'équipe",
		Dates: []string{"2025-12-01", "2025-12-02"},
	})
	resolver := intent.NewResolver(store, func(a poll.Action) { store.Apply(a) })
	p := &PollIntent{resolver: resolver}
	return p, store
}

func TestPollIntentHandlesDateEdit(t *testing.T) {
	p, store := newConfigured(t)

	e := &mw.Event{Name: mw.EventBeforeLLMRequest, UserText: "ajoute le 3 décembre"}
	dec, err := p.OnEvent(context.Background(), e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Cancel || dec.ReplaceText == nil {
		t.Fatalf("decision = %+v", dec)
	}
	if !strings.HasPrefix(*dec.ReplaceText, "📅") {
		t.Errorf("reply = %q", *dec.ReplaceText)
	}
	if !store.Current().HasDate("2025-12-03") {
		t.Fatalf("dates = %v", store.Current().Dates)
	}
}

func TestPollIntentPassesThroughSmallTalk(t *testing.T) {
	p, store := newConfigured(t)

	e := &mw.Event{Name: mw.EventBeforeLLMRequest, UserText: "merci beaucoup !"}
	dec, err := p.OnEvent(context.Background(), e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Cancel || dec.ReplaceText != nil {
		t.Fatalf("decision = %+v", dec)
	}
	if len(store.Current().Dates) != 2 {
		t.Fatalf("dates changed: %v", store.Current().Dates)
	}
}

func TestPollIntentTypeSwitchAsksConfirmation(t *testing.T) {
	p, store := newConfigured(t)

	e := &mw.Event{Name: mw.EventBeforeLLMRequest, UserText: "transforme ça en questionnaire"}
	dec, err := p.OnEvent(context.Background(), e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Cancel || dec.ReplaceText == nil {
		t.Fatalf("decision = %+v", dec)
	}
	if !strings.Contains(*dec.ReplaceText, "questionnaire") {
		t.Errorf("reply = %q", *dec.ReplaceText)
	}
	// Detection alone never converts the document.
	if store.Current().Type != poll.KindDate {
		t.Fatalf("poll type changed to %s", store.Current().Type)
	}
}

func TestPollIntentIgnoresOtherEvents(t *testing.T) {
	p, _ := newConfigured(t)

	dec, err := p.OnEvent(context.Background(), &mw.Event{
		Name:    mw.EventAfterLLMResponse,
		LLMText: "ajoute le 3 décembre",
	})
	if err != nil || dec.Cancel {
		t.Fatalf("dec=%+v err=%v", dec, err)
	}
}

func TestPollIntentShouldLoad(t *testing.T) {
	unconfigured := &PollIntent{}
	if unconfigured.ShouldLoad(context.Background(), &mw.Event{}) {
		t.Fatal("unconfigured middleware must not load")
	}

	p, _ := newConfigured(t)
	if !p.ShouldLoad(context.Background(), &mw.Event{}) {
		t.Fatal("configured middleware must load")
	}
	off := &mw.Event{Context: map[string]any{"poll_intent": false}}
	if p.ShouldLoad(context.Background(), off) {
		t.Fatal("context flag must disable the middleware")
	}
}
