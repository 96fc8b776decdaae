package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/julienfritschheydon/doodates/internal/frdate"
	"github.com/julienfritschheydon/doodates/internal/poll"
)

// overridable in tests for polls without an existing date
var timeNow = time.Now

// Action-verb families. A clause with no recognizable verb never yields a
// date intent, whatever dates it contains.
var (
	reAddVerb    = regexp.MustCompile(`(?i)\b(r?ajoute[rsz]?|mets?|inclus|propose[rsz]?)\b`)
	reRemoveVerb = regexp.MustCompile(`(?i)\b(supprime[rsz]?|retire[rsz]?|enl[eè]ve[rsz]?|annule[rsz]?|vire[rsz]?)\b`)
	reTitle      = regexp.MustCompile(`(?i)(?:renomme|change)(?:r|s|z)?\s+le\s+titre\s+(?:en\s+|:\s*)(.+)$`)
)

// Time-slot forms, tried in order; the first match wins and bypasses the
// general date parser. The date token is numeric only: DD, DD/MM or
// DD/MM/YYYY.
const slotDate = `(\d{1,2}(?:/\d{1,2}(?:/\d{2,4})?)?)`

var slotPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2})h(\d{2})?\s*(?:-|à)\s*(\d{1,2})h(\d{2})?\s+le\s+` + slotDate),
	regexp.MustCompile(`(?i)le\s+` + slotDate + `\s+de\s+(\d{1,2})h(\d{2})?\s*(?:-|à)\s*(\d{1,2})h(\d{2})?`),
	regexp.MustCompile(`(?i)de\s+(\d{1,2})h(\d{2})?\s*(?:-|à)\s*(\d{1,2})h(\d{2})?\s+le\s+` + slotDate),
	regexp.MustCompile(`(?i)(\d{1,2})h(\d{2})?\s+le\s+` + slotDate), // bare hour: 1h default duration
}

// slotGroups maps each pattern's capture groups to (date, startH, startM,
// endH, endM) positions. A zero end hour position means "default duration".
var slotGroups = [][5]int{
	{5, 1, 2, 3, 4},
	{1, 2, 3, 4, 5},
	{5, 1, 2, 3, 4},
	{3, 1, 2, 0, 0},
}

// DetectSimpleIntent parses one clause against the current date poll.
// It returns nil for anything it cannot classify with an explicit verb.
func DetectSimpleIntent(message string, p *poll.Poll) *Intent {
	if p == nil {
		return nil
	}

	if m := reTitle.FindStringSubmatch(message); m != nil {
		title := strings.TrimSpace(m[1])
		if title == "" {
			return nil // empty titles are rejected, not defaulted
		}
		return &Intent{
			IsModification: true,
			Action:         ActionUpdateTitle,
			Payload:        title,
			Confidence:     ConfidenceTitle,
			Explanation:    fmt.Sprintf("Nouveau titre : %s", title),
		}
	}

	var action Action
	switch {
	case reAddVerb.MatchString(message):
		action = ActionAddDate
	case reRemoveVerb.MatchString(message):
		action = ActionRemoveDate
	default:
		return nil
	}

	if action == ActionAddDate {
		if slot := detectTimeslot(message, p); slot != nil {
			return slot
		}
	}

	ref := referenceDate(p)
	rewritten := rewriteBareDay(message, ref)
	rewritten = rewriteWeekdayDay(rewritten, ref)

	matches := frdate.Parse(rewritten, ref, true)
	if len(matches) == 0 {
		return nil
	}
	first := matches[0]
	iso := first.Date.Format("2006-01-02")

	conf := ConfidenceDateMatch
	if first.Direct {
		conf = ConfidenceDirectDate
	}
	verb := "Ajout"
	if action == ActionRemoveDate {
		verb = "Suppression"
	}
	return &Intent{
		IsModification: true,
		Action:         action,
		Payload:        iso,
		Confidence:     conf,
		Explanation:    fmt.Sprintf("%s de la date %s", verb, frenchDate(iso)),
	}
}

// referenceDate anchors partial expressions on the poll's last existing date
// rather than today, so a sequence of edits stays chronologically coherent.
func referenceDate(p *poll.Poll) time.Time {
	if last := p.LastDate(); last != "" {
		if t, err := time.Parse("2006-01-02", last); err == nil {
			return t
		}
	}
	return timeNow()
}

var reBareDay = regexp.MustCompile(`(?i)\ble\s+(\d{1,2})(er)?`)
var reWeekdayDay = regexp.MustCompile(`(?i)\b(lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche)\s+(\d{1,2})(er)?`)

// rewriteBareDay turns "le D" into "le D <mois> <année>" using the reference
// date. The rewrite is skipped when the number is immediately followed by
// '/', ':', 'h' or '-' (numeric date, time or range forms) or when a month
// name already follows, since the NL parser handles those directly.
func rewriteBareDay(text string, ref time.Time) string {
	return rewriteDayMatches(text, ref, reBareDay)
}

// rewriteWeekdayDay turns "<jour> D" into "<jour> D <mois> <année>" under the
// same guards as rewriteBareDay.
func rewriteWeekdayDay(text string, ref time.Time) string {
	return rewriteDayMatches(text, ref, reWeekdayDay)
}

func rewriteDayMatches(text string, ref time.Time, re *regexp.Regexp) string {
	suffix := fmt.Sprintf(" %s %d", frdate.MonthName(ref.Month()), ref.Year())

	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		if startsWithAny(rest, "/", ":", "h", "-") || nextWordIsMonth(rest) {
			continue
		}
		b.WriteString(text[last:loc[1]])
		b.WriteString(suffix)
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func startsWithAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

var reLeadingMonth = regexp.MustCompile(`(?i)^\s+(janvier|f[eé]vrier|mars|avril|mai|juin|juillet|ao[uû]t|septembre|octobre|novembre|d[eé]cembre)\b`)

func nextWordIsMonth(rest string) bool {
	return reLeadingMonth.MatchString(rest)
}

// detectTimeslot applies the slot patterns and short-circuits into an
// ADD_TIMESLOT intent on the first hit.
func detectTimeslot(message string, p *poll.Poll) *Intent {
	for i, re := range slotPatterns {
		m := re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		g := slotGroups[i]
		return buildTimeslotIntent(m[g[0]], m[g[1]], m[g[2]], group(m, g[3]), group(m, g[4]), p)
	}
	return nil
}

func group(m []string, idx int) string {
	if idx == 0 {
		return ""
	}
	return m[idx]
}

// buildTimeslotIntent normalizes a DD, DD/MM or DD/MM/YYYY date token and
// zero-padded times into an ADD_TIMESLOT intent. Missing month and year come
// from the poll's last date. An empty end hour defaults the slot to one hour.
func buildTimeslotIntent(dateToken, startH, startM, endH, endM string, p *poll.Poll) *Intent {
	ref := referenceDate(p)

	parts := strings.Split(dateToken, "/")
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	month := int(ref.Month())
	year := ref.Year()
	switch len(parts) {
	case 1:
	case 2:
		month, _ = strconv.Atoi(parts[1])
	case 3:
		month, _ = strconv.Atoi(parts[1])
		year, _ = strconv.Atoi(parts[2])
		if year < 100 {
			year += 2000
		}
	default:
		return nil
	}
	if month < 1 || month > 12 {
		return nil
	}

	sh, _ := strconv.Atoi(startH)
	sm := 0
	if startM != "" {
		sm, _ = strconv.Atoi(startM)
	}
	eh := sh + 1
	if endH != "" {
		eh, _ = strconv.Atoi(endH)
	}
	em := 0
	if endM != "" {
		em, _ = strconv.Atoi(endM)
	}
	if sh > 23 || eh > 23 || sm > 59 || em > 59 {
		return nil
	}

	slot := poll.TimeSlot{
		Date:  fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		Start: fmt.Sprintf("%02d:%02d", sh, sm),
		End:   fmt.Sprintf("%02d:%02d", eh, em),
	}
	return &Intent{
		IsModification: true,
		Action:         ActionAddTimeslot,
		Payload:        slot,
		Confidence:     ConfidenceTimeslot,
		Explanation:    fmt.Sprintf("Ajout du créneau %s-%s le %s", slot.Start, slot.End, frenchDate(slot.Date)),
	}
}

// frenchDate renders an ISO date as DD/MM/YYYY for user-facing text.
func frenchDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
