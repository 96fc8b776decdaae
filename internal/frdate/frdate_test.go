package frdate

import (
	"testing"
	"time"
)

func ref(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseSingleExpressions(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		ref     string
		want    string
		direct  bool
		noMatch bool
	}{
		{name: "full numeric", text: "ajoute le 12/03/2026", ref: "2025-12-02", want: "2026-03-12", direct: true},
		{name: "two digit year", text: "le 12/03/26", ref: "2025-12-02", want: "2026-03-12", direct: true},
		{name: "numeric without year forward", text: "le 12/03", ref: "2025-12-02", want: "2026-03-12"},
		{name: "numeric without year same month", text: "le 15/12", ref: "2025-12-02", want: "2025-12-15"},
		{name: "day month", text: "le 3 décembre", ref: "2025-12-02", want: "2025-12-03"},
		{name: "day month unaccented", text: "le 3 decembre", ref: "2025-12-02", want: "2025-12-03"},
		{name: "premier of same month stays in year", text: "le 1er décembre", ref: "2025-12-02", want: "2025-12-01"},
		{name: "earlier month bumps year", text: "le 3 janvier", ref: "2025-12-02", want: "2026-01-03"},
		{name: "day month year", text: "jeudi 5 mars 2026", ref: "2025-12-02", want: "2026-03-05"},
		{name: "weekday alone", text: "ajoute vendredi", ref: "2025-12-02", want: "2025-12-05"},
		{name: "weekday same day rolls a week", text: "mardi", ref: "2025-12-02", want: "2025-12-09"},
		{name: "demain", text: "mets demain", ref: "2025-12-02", want: "2025-12-03"},
		{name: "apres-demain", text: "après-demain", ref: "2025-12-02", want: "2025-12-04"},
		{name: "invalid calendar day", text: "le 31 février", ref: "2025-12-02", noMatch: true},
		{name: "no date", text: "change la couleur du thème", ref: "2025-12-02", noMatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text, ref(tt.ref), true)
			if tt.noMatch {
				if len(got) != 0 {
					t.Fatalf("Parse(%q) = %+v, want no match", tt.text, got)
				}
				return
			}
			if len(got) == 0 {
				t.Fatalf("Parse(%q) found nothing", tt.text)
			}
			if iso := got[0].Date.Format("2006-01-02"); iso != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.text, iso, tt.want)
			}
			if got[0].Direct != tt.direct {
				t.Errorf("Parse(%q) direct = %v, want %v", tt.text, got[0].Direct, tt.direct)
			}
		})
	}
}

func TestParseWeekdayPrefixedDateIsOneMatch(t *testing.T) {
	got := Parse("vendredi 7 décembre 2025", ref("2025-12-02"), true)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(got), got)
	}
	if iso := got[0].Date.Format("2006-01-02"); iso != "2025-12-07" {
		t.Fatalf("date = %s, want 2025-12-07", iso)
	}
}

func TestParseMultipleMatchesOrderedByPosition(t *testing.T) {
	got := Parse("le 3 décembre puis le 12/03/2026", ref("2025-12-02"), true)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(got), got)
	}
	if got[0].Date.Format("2006-01-02") != "2025-12-03" {
		t.Errorf("first match = %s, want 2025-12-03", got[0].Date.Format("2006-01-02"))
	}
	if !got[1].Direct {
		t.Error("second match should be direct (full numeric)")
	}
}

func TestMonthName(t *testing.T) {
	if MonthName(time.December) != "décembre" {
		t.Fatalf("MonthName(December) = %s", MonthName(time.December))
	}
	if MonthName(time.August) != "août" {
		t.Fatalf("MonthName(August) = %s", MonthName(time.August))
	}
}
