package intent

import (
	"regexp"
	"strings"

	"github.com/julienfritschheydon/doodates/internal/poll"
)

// Clause boundaries: " et ", commas and " puis ".
var reClauseSplit = regexp.MustCompile(`(?i)\s+et\s+|\s*,\s*|\s+puis\s+`)

// DetectMultipleIntents splits a compound message into clauses and parses
// each one with DetectSimpleIntent. Clauses that lack their own action verb
// inherit the leading verb of the full message, so "ajoute vendredi 7 et
// jeudi 13" applies the shared verb to both parts. This is a best-effort
// split: nested conjunctions and cross-clause references ("la même heure")
// are parsed independently and may simply fail to match.
func DetectMultipleIntents(message string, p *poll.Poll) *MultiIntent {
	if p == nil {
		return nil
	}

	parts := splitClauses(message)
	if len(parts) == 0 {
		return nil
	}
	if len(parts) == 1 {
		single := DetectSimpleIntent(parts[0], p)
		if single == nil {
			return nil
		}
		return &MultiIntent{
			IsModification: true,
			Intents:        []Intent{*single},
			Confidence:     single.Confidence,
			Explanation:    single.Explanation,
		}
	}

	// Verb re-attachment only knows the add and remove families; a clause
	// using any other verb keeps whatever it carries.
	sharedVerb := leadingActionVerb(message)

	var collected []Intent
	for _, part := range parts {
		clause := part
		if sharedVerb != "" && !hasActionVerb(clause) {
			clause = sharedVerb + " " + clause
		}
		if it := DetectSimpleIntent(clause, p); it != nil {
			collected = append(collected, *it)
		}
	}
	if len(collected) == 0 {
		return nil
	}

	sum := 0.0
	explanations := make([]string, 0, len(collected))
	for _, it := range collected {
		sum += it.Confidence
		explanations = append(explanations, it.Explanation)
	}
	return &MultiIntent{
		IsModification: true,
		Intents:        collected,
		Confidence:     sum / float64(len(collected)),
		Explanation:    strings.Join(explanations, " + "),
	}
}

func splitClauses(message string) []string {
	var parts []string
	for _, p := range reClauseSplit.Split(message, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// leadingActionVerb extracts the first add or remove verb of the original
// message, preferring whichever appears first.
func leadingActionVerb(message string) string {
	addLoc := reAddVerb.FindStringIndex(message)
	removeLoc := reRemoveVerb.FindStringIndex(message)
	switch {
	case addLoc == nil && removeLoc == nil:
		return ""
	case removeLoc == nil || (addLoc != nil && addLoc[0] < removeLoc[0]):
		return message[addLoc[0]:addLoc[1]]
	default:
		return message[removeLoc[0]:removeLoc[1]]
	}
}

func hasActionVerb(clause string) bool {
	return reAddVerb.MatchString(clause) || reRemoveVerb.MatchString(clause)
}
