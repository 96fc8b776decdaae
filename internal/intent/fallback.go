package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/julienfritschheydon/doodates/internal/poll"
)

// Completer is the external generative text service. EnsureReady is the
// initialization precheck; when it fails the fallback short-circuits to nil
// without attempting a completion.
type Completer interface {
	EnsureReady(ctx context.Context) error
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompletionTimeout bounds every generative call. The upstream behavior had
// no bound at all; 10s keeps a hung service from blocking detection forever.
const CompletionTimeout = 10 * time.Second

// Fallback forwards a message plus a serialized poll summary to the
// generative service and parses its JSON reply back into the intent shape.
// It never lets an error escape: every failure mode degrades to nil.
type Fallback struct {
	completer Completer
	logf      func(format string, args ...any)
}

// NewFallback wraps a completer. logf receives missing-pattern signals when
// the AI recognizes an intent the regex catalogue missed; nil disables it.
func NewFallback(c Completer, logf func(format string, args ...any)) *Fallback {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Fallback{completer: c, logf: logf}
}

// aiIntent is the wire shape the service is asked to produce.
type aiIntent struct {
	IsModification bool           `json:"isModification"`
	Action         string         `json:"action"`
	Payload        map[string]any `json:"payload"`
	Confidence     float64        `json:"confidence"`
	Explanation    string         `json:"explanation"`
}

// DetectFormIntent asks the service to classify a form-poll edit the regex
// catalogue did not recognize. Results below SwitchAIAcceptThreshold are
// rejected here; the resolver applies its own stricter gate on top.
func (f *Fallback) DetectFormIntent(ctx context.Context, message string, p *poll.Poll) (it *Intent) {
	if f == nil || f.completer == nil || p == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			it = nil
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, CompletionTimeout)
	defer cancel()

	if err := f.completer.EnsureReady(ctx); err != nil {
		return nil
	}
	raw, err := f.completer.Complete(ctx, formPrompt(message, p))
	if err != nil {
		return nil
	}
	blob, ok := extractJSON(raw)
	if !ok {
		return nil
	}
	var ai aiIntent
	if err := json.Unmarshal([]byte(blob), &ai); err != nil {
		return nil
	}
	if !ai.IsModification || ai.Action == "" || ai.Confidence < SwitchAIAcceptThreshold {
		return nil
	}
	payload, idx, ok := payloadFromMap(Action(ai.Action), ai.Payload, p)
	if !ok {
		return nil
	}

	f.logf("fallback: missing pattern for action %s on %q", ai.Action, message)

	result := &Intent{
		IsModification: true,
		Action:         Action(ai.Action),
		Payload:        payload,
		Confidence:     ai.Confidence,
		Explanation:    ai.Explanation,
	}
	if idx >= 0 && p.QuestionInRange(idx) {
		result.ModifiedQuestionID = p.Questions[idx].ID
	}
	return result
}

// DetectTypeSwitch is the AI sibling of the synchronous detector, used when
// its verdict falls in the ambiguous band.
func (f *Fallback) DetectTypeSwitch(ctx context.Context, message string, p *poll.Poll) (res TypeSwitchResult) {
	if f == nil || f.completer == nil || p == nil {
		return TypeSwitchResult{}
	}
	defer func() {
		if recover() != nil {
			res = TypeSwitchResult{}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, CompletionTimeout)
	defer cancel()

	if err := f.completer.EnsureReady(ctx); err != nil {
		return TypeSwitchResult{}
	}
	raw, err := f.completer.Complete(ctx, typeSwitchPrompt(message, p))
	if err != nil {
		return TypeSwitchResult{}
	}
	blob, ok := extractJSON(raw)
	if !ok {
		return TypeSwitchResult{}
	}
	var out TypeSwitchResult
	if err := json.Unmarshal([]byte(blob), &out); err != nil {
		return TypeSwitchResult{}
	}
	if out.RequestedType != poll.KindDate && out.RequestedType != poll.KindForm {
		return TypeSwitchResult{}
	}
	out.CurrentType = p.Type
	if out.RequestedType == p.Type {
		return TypeSwitchResult{CurrentType: p.Type}
	}
	return out
}

// extractJSON returns the span from the first '{' to the last '}' of the
// raw response, which tolerates models that wrap JSON in prose or fences.
func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// payloadFromMap converts the AI's loose payload object into the typed
// payload of the action, validating question indices against the live poll.
func payloadFromMap(action Action, m map[string]any, p *poll.Poll) (any, int, bool) {
	idx := func() (int, bool) {
		v, ok := m["questionIndex"].(float64)
		if !ok {
			return 0, false
		}
		i := int(v)
		if !p.QuestionInRange(i) {
			return 0, false
		}
		return i, true
	}

	switch action {
	case ActionAddQuestion:
		for _, key := range []string{"subject", "title"} {
			if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
				return AddQuestionPayload{Title: strings.TrimSpace(s)}, -1, true
			}
		}
	case ActionRemoveQuestion:
		if i, ok := idx(); ok {
			return poll.IndexPayload{QuestionIndex: i}, i, true
		}
	case ActionChangeQuestionType:
		i, ok := idx()
		if !ok {
			return nil, -1, false
		}
		if s, ok := m["newType"].(string); ok {
			switch kind := poll.QuestionKind(s); kind {
			case poll.QuestionText, poll.QuestionSingle, poll.QuestionMultiple, poll.QuestionMatrix:
				return poll.TypePayload{QuestionIndex: i, NewType: kind}, i, true
			}
		}
	case ActionAddOption, ActionRemoveOption:
		i, ok := idx()
		if !ok {
			return nil, -1, false
		}
		if s, ok := m["label"].(string); ok && s != "" {
			return poll.OptionPayload{QuestionIndex: i, Label: s}, i, true
		}
	case ActionSetRequired:
		i, ok := idx()
		if !ok {
			return nil, -1, false
		}
		if b, ok := m["required"].(bool); ok {
			return poll.RequiredPayload{QuestionIndex: i, Required: b}, i, true
		}
	case ActionRenameQuestion:
		i, ok := idx()
		if !ok {
			return nil, -1, false
		}
		if s, ok := m["newTitle"].(string); ok && strings.TrimSpace(s) != "" {
			return poll.RenamePayload{QuestionIndex: i, NewTitle: strings.TrimSpace(s)}, i, true
		}
	}
	return nil, -1, false
}

// summarizePoll serializes the poll into the fixed-format block the prompts
// embed.
func summarizePoll(p *poll.Poll) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Titre: %s\nType: %s\n", p.Title, p.Type)
	if p.Type == poll.KindDate {
		fmt.Fprintf(&b, "Dates: %s\n", strings.Join(p.Dates, ", "))
		return b.String()
	}
	for i, q := range p.Questions {
		required := "optionnelle"
		if q.Required {
			required = "obligatoire"
		}
		fmt.Fprintf(&b, "Question %d (%s, %s): %s\n", i+1, q.Kind, required, q.Title)
		if q.Kind == poll.QuestionSingle || q.Kind == poll.QuestionMultiple {
			labels := make([]string, 0, len(q.Options))
			for _, o := range q.Options {
				labels = append(labels, o.Label)
			}
			fmt.Fprintf(&b, "  Options: %s\n", strings.Join(labels, ", "))
		}
	}
	return b.String()
}

func formPrompt(message string, p *poll.Poll) string {
	return fmt.Sprintf(`Tu analyses des demandes de modification d'un questionnaire.

Questionnaire actuel:
%s
Actions possibles (avec la forme du payload attendu):
- ADD_QUESTION {"subject": "sujet de la question"}
- REMOVE_QUESTION {"questionIndex": index 0-based}
- CHANGE_QUESTION_TYPE {"questionIndex": n, "newType": "text"|"single"|"multiple"|"matrix"}
- ADD_OPTION {"questionIndex": n, "label": "texte de l'option"}
- REMOVE_OPTION {"questionIndex": n, "label": "texte de l'option"}
- SET_REQUIRED {"questionIndex": n, "required": true|false}
- RENAME_QUESTION {"questionIndex": n, "newTitle": "nouveau titre"}

Réponds UNIQUEMENT avec un objet JSON:
{"isModification": bool, "action": "UNE_DES_ACTIONS" ou null, "payload": {...}, "confidence": 0.0-1.0, "explanation": "texte court en français"}

Si le message ne demande aucune modification du questionnaire, renvoie {"isModification": false}.

Message: %s`, summarizePoll(p), message)
}

func typeSwitchPrompt(message string, p *poll.Poll) string {
	return fmt.Sprintf(`L'utilisateur édite un sondage de type %q ("date" = sondage de dates, "form" = questionnaire).

Sondage actuel:
%s
Détermine si le message demande de CHANGER le type du sondage.

Réponds UNIQUEMENT avec un objet JSON:
{"isTypeSwitch": bool, "requestedType": "date"|"form", "confidence": 0.0-1.0, "explanation": "texte court"}

Message: %s`, p.Type, summarizePoll(p), message)
}
