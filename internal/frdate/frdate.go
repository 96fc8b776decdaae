// Package frdate parses French natural-language date expressions.
// It is a rule-based parser in the spirit of a lightweight NLP lexicon:
// numeric dates, "jour mois [année]" phrases, weekday names and a few
// relative words. Callers pass a reference date used to resolve partial
// expressions and a forward flag that prefers future occurrences.
package frdate

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Match is one date expression found in the input text.
type Match struct {
	Date  time.Time
	Text  string // matched source span
	Index int    // byte offset of the span in the input
	// Direct marks fully-explicit DD/MM/YYYY matches, which the intent
	// layer scores higher than inferred dates.
	Direct bool
}

var months = map[string]time.Month{
	"janvier": time.January, "fevrier": time.February, "février": time.February,
	"mars": time.March, "avril": time.April, "mai": time.May,
	"juin": time.June, "juillet": time.July,
	"aout": time.August, "août": time.August,
	"septembre": time.September, "octobre": time.October,
	"novembre": time.November,
	"decembre": time.December, "décembre": time.December,
}

var weekdays = map[string]time.Weekday{
	"lundi": time.Monday, "mardi": time.Tuesday, "mercredi": time.Wednesday,
	"jeudi": time.Thursday, "vendredi": time.Friday,
	"samedi": time.Saturday, "dimanche": time.Sunday,
}

var monthNames = [...]string{
	time.January: "janvier", time.February: "février", time.March: "mars",
	time.April: "avril", time.May: "mai", time.June: "juin",
	time.July: "juillet", time.August: "août", time.September: "septembre",
	time.October: "octobre", time.November: "novembre", time.December: "décembre",
}

// MonthName returns the French name of a month, accented.
func MonthName(m time.Month) string {
	return monthNames[m]
}

const monthAlt = `janvier|f[eé]vrier|mars|avril|mai|juin|juillet|ao[uû]t|septembre|octobre|novembre|d[eé]cembre`

var (
	reNumeric = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	// An optional leading weekday is swallowed into the span so a phrase like
	// "vendredi 7 décembre 2025" yields one match, not a weekday plus a date.
	reDayName = regexp.MustCompile(`(?i)\b(?:(?:lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche)\s+)?(\d{1,2})(?:er)?\s+(` + monthAlt + `)(?:\s+(\d{4}))?\b`)
	reWeekday = regexp.MustCompile(`(?i)\b(lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche)\b`)
	reRelword = regexp.MustCompile(`(?i)\b(aujourd'hui|apr[eè]s[- ]demain|demain)\b`)
)

// Parse scans text for date expressions and returns the matches ordered by
// position. When forward is set, partial dates resolve to the nearest
// occurrence at or after ref; the year of a month-only date is bumped only
// when its month precedes the reference month, so a date later in the
// reference month stays in the reference year.
func Parse(text string, ref time.Time, forward bool) []Match {
	var out []Match
	claimed := make([]bool, len(text))

	claim := func(lo, hi int) bool {
		for i := lo; i < hi; i++ {
			if claimed[i] {
				return false
			}
		}
		for i := lo; i < hi; i++ {
			claimed[i] = true
		}
		return true
	}

	for _, loc := range reNumeric.FindAllStringSubmatchIndex(text, -1) {
		day := atoiSpan(text, loc[2], loc[3])
		month := atoiSpan(text, loc[4], loc[5])
		if month < 1 || month > 12 || !validDay(day) {
			continue
		}
		year, direct := 0, false
		if loc[6] >= 0 {
			year = atoiSpan(text, loc[6], loc[7])
			if year < 100 {
				year += 2000
			}
			direct = true
		}
		d, ok := resolve(day, time.Month(month), year, ref, forward)
		if !ok || !claim(loc[0], loc[1]) {
			continue
		}
		out = append(out, Match{Date: d, Text: text[loc[0]:loc[1]], Index: loc[0], Direct: direct})
	}

	for _, loc := range reDayName.FindAllStringSubmatchIndex(text, -1) {
		day := atoiSpan(text, loc[2], loc[3])
		month, ok := months[strings.ToLower(text[loc[4]:loc[5]])]
		if !ok || !validDay(day) {
			continue
		}
		year := 0
		if loc[6] >= 0 {
			year = atoiSpan(text, loc[6], loc[7])
		}
		d, ok := resolve(day, month, year, ref, forward)
		if !ok || !claim(loc[0], loc[1]) {
			continue
		}
		out = append(out, Match{Date: d, Text: text[loc[0]:loc[1]], Index: loc[0]})
	}

	for _, loc := range reRelword.FindAllStringSubmatchIndex(text, -1) {
		word := strings.ToLower(text[loc[2]:loc[3]])
		days := 0
		switch {
		case word == "demain":
			days = 1
		case strings.HasPrefix(word, "apr"):
			days = 2
		}
		if !claim(loc[0], loc[1]) {
			continue
		}
		out = append(out, Match{Date: midnight(ref.AddDate(0, 0, days)), Text: text[loc[0]:loc[1]], Index: loc[0]})
	}

	for _, loc := range reWeekday.FindAllStringSubmatchIndex(text, -1) {
		wd := weekdays[strings.ToLower(text[loc[2]:loc[3]])]
		ahead := (int(wd) - int(ref.Weekday()) + 7) % 7
		if ahead == 0 && forward {
			ahead = 7
		}
		if !claim(loc[0], loc[1]) {
			continue
		}
		out = append(out, Match{Date: midnight(ref.AddDate(0, 0, ahead)), Text: text[loc[0]:loc[1]], Index: loc[0]})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// resolve builds a calendar date, inferring a missing year from ref. The
// forward bump is month-granular: only a month strictly before the reference
// month rolls into the next year.
func resolve(day int, month time.Month, year int, ref time.Time, forward bool) (time.Time, bool) {
	if year == 0 {
		year = ref.Year()
		if forward && month < ref.Month() {
			year++
		}
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, ref.Location())
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false // e.g. 31 février
	}
	return d, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func validDay(d int) bool { return d >= 1 && d <= 31 }

func atoiSpan(s string, lo, hi int) int {
	if lo < 0 || hi < 0 {
		return 0
	}
	n, _ := strconv.Atoi(s[lo:hi])
	return n
}
