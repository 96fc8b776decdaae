package intent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/julienfritschheydon/doodates/internal/poll"
)

var actionIcons = map[Action]string{
	ActionAddDate:            "📅",
	ActionRemoveDate:         "🗑️",
	ActionUpdateTitle:        "✏️",
	ActionAddTimeslot:        "🕐",
	ActionAddQuestion:        "➕",
	ActionRemoveQuestion:     "🗑️",
	ActionChangeQuestionType: "🔄",
	ActionAddOption:          "➕",
	ActionRemoveOption:       "❌",
	ActionSetRequired:        "⭐",
	ActionRenameQuestion:     "✏️",
}

func iconFor(a Action) string {
	if icon, ok := actionIcons[a]; ok {
		return icon
	}
	return "✅"
}

// Resolver runs the detection cascade in fixed priority order: type switch,
// multi-intent date parsing, form regex matching, generative fallback. The
// strategy set is fixed at construction; nothing is registered afterwards.
type Resolver struct {
	mu         sync.Mutex
	store      *poll.Store
	dispatch   Dispatch
	typeSwitch *TypeSwitchDetector
	form       *FormIntentService
	fallback   *Fallback
}

type ResolverOption func(*Resolver)

// WithFallback attaches the generative fallback. Without it the resolver is
// purely regex-driven and the AI escalation tiers are skipped.
func WithFallback(f *Fallback) ResolverOption {
	return func(r *Resolver) { r.fallback = f }
}

func NewResolver(store *poll.Store, dispatch Dispatch, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:      store,
		dispatch:   dispatch,
		typeSwitch: NewTypeSwitchDetector(),
		form:       NewFormIntentService(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) hasFallback() bool {
	return r.fallback != nil && r.fallback.completer != nil
}

// DetectIntent classifies one user message and dispatches the resulting
// actions. Every internal failure, panics included, degrades to a
// not-handled result: the chat layer cannot tell an error from a message
// that simply was not an edit request.
//
// Turns are serialized. Surfaces that share one resolver (Telegram runs a
// handler goroutine per chat) get their poll snapshot, guard checks, and
// dispatches executed as a unit, so one chat's edit cannot interleave with
// another's.
func (r *Resolver) DetectIntent(ctx context.Context, text string) (res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if recover() != nil {
			res = Result{}
		}
	}()

	p := r.store.Current()
	if p == nil || strings.TrimSpace(text) == "" {
		return Result{}
	}

	if switched, ok := r.detectTypeSwitch(ctx, text, p); ok {
		return Result{
			Handled:         true,
			IsTypeSwitch:    true,
			OriginalMessage: text,
			RequestedType:   switched.RequestedType,
			ConfirmMessage:  switched.Explanation,
		}
	}

	if p.Type == poll.KindDate {
		if res, ok := r.resolveDateEdit(text, p); ok {
			return res
		}
		return Result{}
	}

	return r.resolveFormEdit(ctx, text, p)
}

// detectTypeSwitch applies the three-tier escalation: trust a confident
// synchronous verdict outright, confirm an ambiguous one through the AI
// sibling, and as a last resort let the AI look at messages the detector
// saw nothing in. The AI acceptance bar stays at SwitchAIAcceptThreshold in
// both tiers; lowering it triggers false switches that destroy in-progress
// edits.
func (r *Resolver) detectTypeSwitch(ctx context.Context, text string, p *poll.Poll) (TypeSwitchResult, bool) {
	ts := r.typeSwitch.Detect(text, p)
	switch {
	case ts.IsTypeSwitch && ts.Confidence > SwitchTrustThreshold:
		return ts, true
	case ts.IsTypeSwitch && ts.Confidence > SwitchEscalateFloor:
		if !r.hasFallback() {
			return TypeSwitchResult{}, false
		}
		ai := r.fallback.DetectTypeSwitch(ctx, text, p)
		if ai.IsTypeSwitch && ai.Confidence > SwitchAIAcceptThreshold {
			return ai, true
		}
	case !ts.IsTypeSwitch && r.hasFallback():
		ai := r.fallback.DetectTypeSwitch(ctx, text, p)
		if ai.IsTypeSwitch && ai.Confidence > SwitchAIAcceptThreshold {
			return ai, true
		}
	}
	return TypeSwitchResult{}, false
}

// resolveDateEdit handles the multi-intent date path. Duplicate and absence
// guards run per sub-intent: an ADD_DATE already present or a REMOVE_DATE
// absent from the poll is reported instead of dispatched. An all-guarded
// result still counts as handled.
func (r *Resolver) resolveDateEdit(text string, p *poll.Poll) (Result, bool) {
	multi := DetectMultipleIntents(text, p)
	if multi == nil || multi.Confidence <= DispatchThreshold {
		return Result{}, false
	}

	lines := make([]string, 0, len(multi.Intents))
	var firstDispatched Action
	for _, it := range multi.Intents {
		switch it.Action {
		case ActionAddDate:
			date := it.Payload.(string)
			if p.HasDate(date) {
				lines = append(lines, fmt.Sprintf("ℹ️ La date %s est déjà dans le sondage", frenchDate(date)))
				continue
			}
		case ActionRemoveDate:
			date := it.Payload.(string)
			if !p.HasDate(date) {
				lines = append(lines, fmt.Sprintf("ℹ️ La date %s n'est pas dans le sondage", frenchDate(date)))
				continue
			}
		}
		r.dispatch(poll.Action{Type: string(it.Action), Payload: it.Payload})
		if firstDispatched == ActionNone {
			firstDispatched = it.Action
		}
		lines = append(lines, iconFor(it.Action)+" "+it.Explanation)
	}

	return Result{
		Handled:        true,
		Action:         firstDispatched,
		ConfirmMessage: strings.Join(lines, "\n"),
	}, true
}

// resolveFormEdit tries the regex catalogue, then the generative fallback
// under its stricter acceptance gate. The ADD_QUESTION payload is re-keyed
// from title to subject on dispatch, matching the reducer's convention.
func (r *Resolver) resolveFormEdit(ctx context.Context, text string, p *poll.Poll) Result {
	active := r.form.DetectIntent(text, p)
	if active == nil || !active.IsModification || active.Confidence < DispatchThreshold {
		ai := r.fallback.DetectFormIntent(ctx, text, p)
		if ai == nil || ai.Confidence < FallbackAcceptThreshold {
			// The designed escape hatch: an unrecognized message falls
			// through to generative poll creation outside this core.
			return Result{}
		}
		active = ai
	}

	if active.Confidence <= DispatchThreshold {
		return Result{}
	}

	payload := active.Payload
	if aq, ok := payload.(AddQuestionPayload); ok {
		payload = poll.SubjectPayload{Subject: aq.Title}
	}
	r.dispatch(poll.Action{Type: string(active.Action), Payload: payload})

	return Result{
		Handled:            true,
		Action:             active.Action,
		ConfirmMessage:     iconFor(active.Action) + " " + active.Explanation,
		ModifiedQuestionID: active.ModifiedQuestionID,
		ModifiedField:      active.ModifiedField,
	}
}
