package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/julienfritschheydon/doodates/internal/poll"
)

// TypeSwitchDetector decides whether a message asks to convert the poll
// between its two fundamental kinds. It is synchronous and stateless; the
// resolver escalates ambiguous verdicts to the generative fallback.
type TypeSwitchDetector struct {
	explicit []*regexp.Regexp
}

// Explicit conversion phrases, tried in order; the first match wins.
var explicitSwitchPatterns = []string{
	`(?i)plut[oô]t\s+(?:un|une|en)?\s*(questionnaire|formulaire|sondage\s+d'opinion|sondage\s+de\s+dates?|sondage)`,
	`(?i)(?:change|transforme|convertis|bascule|passe)(?:r|s|z)?\s*(?:le|la|ça|ca|tout)?\s*en\s+(?:un\s+|une\s+)?(questionnaire|formulaire|sondage\s+d'opinion|sondage\s+de\s+dates?|sondage)`,
	`(?i)(?:fais|fait|cr[ée]e|refais)(?:r|s|z)?\s+plut[oô]t\s+(?:un|une)\s+(questionnaire|formulaire|sondage\s+de\s+dates?|sondage)`,
	`(?i)je\s+(?:veux|voudrais|pr[ée]f[èe]re)\s+(?:plut[oô]t\s+)?(?:un|une)\s+(questionnaire|formulaire|sondage\s+de\s+dates?|sondage)`,
}

// Keyword vocabularies for the weighted fallback scoring. Presence counts,
// not frequency.
var formKeywords = []string{
	"questionnaire", "formulaire", "question", "questions", "réponse",
	"réponses", "choix", "option", "options", "obligatoire", "texte",
	"champ", "opinion", "avis", "remplir", "répondre",
}

var dateKeywords = []string{
	"date", "dates", "créneau", "créneaux", "jour", "jours", "semaine",
	"disponibilité", "disponibilités", "agenda", "calendrier",
	"rendez-vous", "réunion", "horaire", "horaires", "planning",
}

func NewTypeSwitchDetector() *TypeSwitchDetector {
	d := &TypeSwitchDetector{}
	for _, p := range explicitSwitchPatterns {
		d.explicit = append(d.explicit, regexp.MustCompile(p))
	}
	return d
}

// Detect runs the phrase patterns, then keyword scoring. Only a requested
// kind different from the current kind counts as a switch.
func (d *TypeSwitchDetector) Detect(message string, p *poll.Poll) TypeSwitchResult {
	if p == nil {
		return TypeSwitchResult{}
	}
	msg := strings.ToLower(message)

	for _, re := range d.explicit {
		m := re.FindString(msg)
		if m == "" {
			continue
		}
		target := kindFromPhrase(m)
		if target == p.Type {
			continue
		}
		return TypeSwitchResult{
			IsTypeSwitch:  true,
			CurrentType:   p.Type,
			RequestedType: target,
			Confidence:    ConfidenceExplicitSwitch,
			Explanation:   fmt.Sprintf("Demande explicite de conversion en sondage %s", kindLabel(target)),
		}
	}

	formScore := keywordScore(msg, formKeywords)
	dateScore := keywordScore(msg, dateKeywords)

	var requested poll.Kind
	var diff int
	switch {
	case formScore > dateScore && formScore > 0:
		requested, diff = poll.KindForm, formScore-dateScore
	case dateScore > formScore && dateScore > 0:
		requested, diff = poll.KindDate, dateScore-formScore
	default:
		return TypeSwitchResult{CurrentType: p.Type}
	}
	if requested == p.Type {
		return TypeSwitchResult{CurrentType: p.Type}
	}

	conf := 0.5 + 0.15*float64(diff)
	if conf > ConfidenceSwitchCeiling {
		conf = ConfidenceSwitchCeiling
	}
	return TypeSwitchResult{
		IsTypeSwitch:  true,
		CurrentType:   p.Type,
		RequestedType: requested,
		Confidence:    conf,
		Explanation:   fmt.Sprintf("Vocabulaire orienté %s (score %d contre %d)", kindLabel(requested), max(formScore, dateScore), min(formScore, dateScore)),
	}
}

// kindFromPhrase infers the requested kind from the matched phrase: the
// form-oriented cluster wins, anything else reads as a date poll.
func kindFromPhrase(phrase string) poll.Kind {
	for _, w := range []string{"questionnaire", "formulaire", "opinion"} {
		if strings.Contains(phrase, w) {
			return poll.KindForm
		}
	}
	return poll.KindDate
}

func kindLabel(k poll.Kind) string {
	if k == poll.KindForm {
		return "questionnaire"
	}
	return "de dates"
}

func keywordScore(msg string, vocab []string) int {
	score := 0
	for _, w := range vocab {
		if strings.Contains(msg, w) {
			score++
		}
	}
	return score
}
