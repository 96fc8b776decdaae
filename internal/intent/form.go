package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/julienfritschheydon/doodates/internal/poll"
)

// AddQuestionPayload is the matcher-level payload of ADD_QUESTION. The
// resolver converts it to the reducer's subject-keyed payload on dispatch.
type AddQuestionPayload struct {
	Title string
}

// formRule is one row of the form-edit catalogue: a pattern plus a validator
// turning capture groups into a payload. Rows are tried in order and the
// first matching row wins; there is no confidence competition inside the
// matcher.
type formRule struct {
	action     Action
	confidence float64
	field      string
	re         *regexp.Regexp
	// build validates groups against the live poll and produces the payload
	// plus the 0-based index of the touched question (-1 when none).
	build func(p *poll.Poll, groups []string) (payload any, questionIdx int, ok bool)
}

// FormIntentService recognizes the closed catalogue of form-poll edits.
type FormIntentService struct {
	rules []formRule
}

const questionRef = `(\d+|\p{L}+)`

func NewFormIntentService() *FormIntentService {
	return &FormIntentService{rules: []formRule{
		{
			action:     ActionAddQuestion,
			confidence: ConfidenceFormDefault,
			field:      "title",
			re:         regexp.MustCompile(`(?i)r?ajoute[rsz]?\s+(?:une\s+)?question\s+(?:sur|concernant|[àa]\s+propos\s+d[eu']?)\s*(.+)`),
			build: func(_ *poll.Poll, g []string) (any, int, bool) {
				subject := strings.TrimSpace(g[1])
				if subject == "" {
					return nil, -1, false
				}
				return AddQuestionPayload{Title: subject}, -1, true
			},
		},
		{
			action:     ActionRemoveQuestion,
			confidence: ConfidenceFormStrong,
			field:      "",
			re:         regexp.MustCompile(`(?i)(?:supprime|retire|enl[eè]ve)[rsz]?\s+(?:la\s+)?question\s+` + questionRef),
			build:      buildIndexPayload,
		},
		{
			action:     ActionRemoveQuestion,
			confidence: ConfidenceFormStrong,
			field:      "",
			re:         regexp.MustCompile(`(?i)(?:supprime|retire|enl[eè]ve)[rsz]?\s+(?:la\s+)?q\s*(\d+)\b`),
			build:      buildIndexPayload,
		},
		{
			action:     ActionRemoveQuestion,
			confidence: ConfidenceFormStrong,
			field:      "",
			re:         regexp.MustCompile(`(?i)(?:supprime|retire|enl[eè]ve)[rsz]?\s+(?:la|le)\s+(\p{L}+)\s+question`),
			build:      buildIndexPayload,
		},
		{
			action:     ActionChangeQuestionType,
			confidence: ConfidenceFormDefault,
			field:      "type",
			re:         regexp.MustCompile(`(?i)change[rsz]?\s+(?:la\s+)?question\s+` + questionRef + `\s+en\s+(.+)`),
			build: func(p *poll.Poll, g []string) (any, int, bool) {
				idx, ok := resolveQuestionIndex(g[1], p)
				if !ok {
					return nil, -1, false
				}
				kind, ok := questionKindFromText(g[2])
				if !ok {
					return nil, -1, false
				}
				return poll.TypePayload{QuestionIndex: idx, NewType: kind}, idx, true
			},
		},
		{
			action:     ActionAddOption,
			confidence: ConfidenceFormDefault,
			field:      "options",
			re:         regexp.MustCompile(`(?i)r?ajoute[rsz]?\s+l'option\s+"?([^"]+?)"?\s+[àa]\s+la\s+question\s+` + questionRef),
			build: func(p *poll.Poll, g []string) (any, int, bool) {
				idx, ok := resolveQuestionIndex(g[2], p)
				if !ok {
					return nil, -1, false
				}
				// Text questions have no option list. Matrix questions are
				// accepted even though their options are structured
				// differently; the reducer owns that mapping.
				if p.Questions[idx].Kind == poll.QuestionText {
					return nil, -1, false
				}
				return poll.OptionPayload{QuestionIndex: idx, Label: strings.TrimSpace(g[1])}, idx, true
			},
		},
		{
			action:     ActionRemoveOption,
			confidence: ConfidenceFormDefault,
			field:      "options",
			re:         regexp.MustCompile(`(?i)(?:supprime|retire|enl[eè]ve)[rsz]?\s+l'option\s+"?([^"]+?)"?\s+de\s+la\s+question\s+` + questionRef),
			build: func(p *poll.Poll, g []string) (any, int, bool) {
				idx, ok := resolveQuestionIndex(g[2], p)
				if !ok {
					return nil, -1, false
				}
				// No option-existence check here; that stays with the reducer.
				return poll.OptionPayload{QuestionIndex: idx, Label: strings.TrimSpace(g[1])}, idx, true
			},
		},
		{
			action:     ActionSetRequired,
			confidence: ConfidenceFormStrong,
			field:      "required",
			re:         regexp.MustCompile(`(?i)rends?\s+(?:la\s+)?question\s+` + questionRef + `\s+(obligatoire|optionnelle|facultative)`),
			build: func(p *poll.Poll, g []string) (any, int, bool) {
				idx, ok := resolveQuestionIndex(g[1], p)
				if !ok {
					return nil, -1, false
				}
				return poll.RequiredPayload{QuestionIndex: idx, Required: strings.EqualFold(g[2], "obligatoire")}, idx, true
			},
		},
		{
			action:     ActionRenameQuestion,
			confidence: ConfidenceFormStrong,
			field:      "title",
			re:         regexp.MustCompile(`(?i)renomme[rsz]?\s+(?:la\s+)?question\s+` + questionRef + `\s+en\s+(.+)`),
			build: func(p *poll.Poll, g []string) (any, int, bool) {
				idx, ok := resolveQuestionIndex(g[1], p)
				if !ok {
					return nil, -1, false
				}
				title := strings.TrimSpace(g[2])
				if title == "" {
					return nil, -1, false
				}
				return poll.RenamePayload{QuestionIndex: idx, NewTitle: title}, idx, true
			},
		},
	}}
}

// DetectIntent matches the message against the catalogue. It returns nil for
// non-form polls and for any message no row validates.
func (s *FormIntentService) DetectIntent(message string, p *poll.Poll) *Intent {
	if p == nil || p.Type != poll.KindForm {
		return nil
	}
	for _, rule := range s.rules {
		g := rule.re.FindStringSubmatch(message)
		if g == nil {
			continue
		}
		payload, idx, ok := rule.build(p, g)
		if !ok {
			return nil
		}
		it := &Intent{
			IsModification: true,
			Action:         rule.action,
			Payload:        payload,
			Confidence:     rule.confidence,
			Explanation:    formExplanation(rule.action, p, payload, idx),
			ModifiedField:  rule.field,
		}
		if idx >= 0 {
			it.ModifiedQuestionID = p.Questions[idx].ID
		}
		return it
	}
	return nil
}

func buildIndexPayload(p *poll.Poll, g []string) (any, int, bool) {
	idx, ok := resolveQuestionIndex(g[1], p)
	if !ok {
		return nil, -1, false
	}
	return poll.IndexPayload{QuestionIndex: idx}, idx, true
}

// resolveQuestionIndex converts a 1-based user reference, numeric or worded
// ("troisième"), into a bounds-checked 0-based index. Every form rule goes
// through here so the off-by-one conversion lives in exactly one place.
func resolveQuestionIndex(token string, p *poll.Poll) (int, bool) {
	n, err := strconv.Atoi(token)
	if err != nil {
		var ok bool
		n, ok = ParseFrenchNumber(token)
		if !ok {
			return 0, false
		}
	}
	idx := n - 1
	if !p.QuestionInRange(idx) {
		return 0, false
	}
	return idx, true
}

func questionKindFromText(text string) (poll.QuestionKind, bool) {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "unique"):
		return poll.QuestionSingle, true
	case strings.Contains(t, "multiple"):
		return poll.QuestionMultiple, true
	case strings.Contains(t, "texte"):
		return poll.QuestionText, true
	case strings.Contains(t, "matrice"):
		return poll.QuestionMatrix, true
	}
	return "", false
}

func formExplanation(action Action, p *poll.Poll, payload any, idx int) string {
	num := idx + 1
	switch action {
	case ActionAddQuestion:
		return fmt.Sprintf("Ajout d'une question sur %s", payload.(AddQuestionPayload).Title)
	case ActionRemoveQuestion:
		return fmt.Sprintf("Suppression de la question %d", num)
	case ActionChangeQuestionType:
		return fmt.Sprintf("Question %d changée en %s", num, payload.(poll.TypePayload).NewType)
	case ActionAddOption:
		return fmt.Sprintf("Option \"%s\" ajoutée à la question %d", payload.(poll.OptionPayload).Label, num)
	case ActionRemoveOption:
		return fmt.Sprintf("Option \"%s\" retirée de la question %d", payload.(poll.OptionPayload).Label, num)
	case ActionSetRequired:
		if payload.(poll.RequiredPayload).Required {
			return fmt.Sprintf("Question %d rendue obligatoire", num)
		}
		return fmt.Sprintf("Question %d rendue optionnelle", num)
	case ActionRenameQuestion:
		return fmt.Sprintf("Question %d renommée en %s", num, payload.(poll.RenamePayload).NewTitle)
	}
	return ""
}
