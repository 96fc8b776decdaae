package intent

import (
	"testing"
	"time"

	"github.com/julienfritschheydon/doodates/internal/poll"
)

func testDatePoll(dates ...string) *poll.Poll {
	return &poll.Poll{Type: poll.KindDate, Title: "Réunion", Dates: dates}
}

func decemberRef() time.Time {
	t, _ := time.Parse("2006-01-02", "2025-12-02")
	return t
}

func TestRewriteBareDay(t *testing.T) {
	ref := decemberRef()
	tests := []struct {
		name string
		in   string
		want string
	}{
		// Bare day numbers get the reference month and year appended.
		{"bare day", "ajoute le 3", "ajoute le 3 décembre 2025"},
		{"bare ordinal day", "enlève le 1er", "enlève le 1er décembre 2025"},
		// Guards: '/', ':', 'h' and '-' right after the number mean the
		// expression is already numeric, a time or a range.
		{"numeric date untouched", "ajoute le 3/12", "ajoute le 3/12"},
		{"hour untouched", "ajoute le 14h", "ajoute le 14h"},
		{"range untouched", "ajoute le 3-4", "ajoute le 3-4"},
		{"colon untouched", "le 14:30", "le 14:30"},
		// A following month name means the parser can already resolve it.
		{"month follows", "ajoute le 3 décembre", "ajoute le 3 décembre"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewriteBareDay(tt.in, ref); got != tt.want {
				t.Errorf("rewriteBareDay(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewriteWeekdayDay(t *testing.T) {
	ref := decemberRef()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"weekday day", "ajoute vendredi 7", "ajoute vendredi 7 décembre 2025"},
		{"weekday day with month untouched", "ajoute vendredi 7 décembre", "ajoute vendredi 7 décembre"},
		{"weekday alone untouched", "ajoute vendredi", "ajoute vendredi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewriteWeekdayDay(tt.in, ref); got != tt.want {
				t.Errorf("rewriteWeekdayDay(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectSimpleIntentAddRemove(t *testing.T) {
	p := testDatePoll("2025-12-01", "2025-12-02")

	tests := []struct {
		name    string
		message string
		action  Action
		date    string
		conf    float64
	}{
		{"add with month", "ajoute le 3 décembre", ActionAddDate, "2025-12-03", ConfidenceDateMatch},
		{"add bare day anchored on last date", "ajoute le 15", ActionAddDate, "2025-12-15", ConfidenceDateMatch},
		{"add weekday day", "rajoute vendredi 5", ActionAddDate, "2025-12-05", ConfidenceDateMatch},
		{"add full numeric is direct", "ajoute le 12/03/2026", ActionAddDate, "2026-03-12", ConfidenceDirectDate},
		{"remove", "enlève le 1er décembre", ActionRemoveDate, "2025-12-01", ConfidenceDateMatch},
		{"remove synonym", "retire le 2 décembre", ActionRemoveDate, "2025-12-02", ConfidenceDateMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := DetectSimpleIntent(tt.message, p)
			if it == nil {
				t.Fatalf("DetectSimpleIntent(%q) = nil", tt.message)
			}
			if it.Action != tt.action {
				t.Errorf("action = %s, want %s", it.Action, tt.action)
			}
			if got := it.Payload.(string); got != tt.date {
				t.Errorf("date = %s, want %s", got, tt.date)
			}
			if it.Confidence != tt.conf {
				t.Errorf("confidence = %v, want %v", it.Confidence, tt.conf)
			}
		})
	}
}

func TestDetectSimpleIntentVerbGate(t *testing.T) {
	p := testDatePoll("2025-12-01")

	// No action verb means no date is parsed, whatever the text contains.
	for _, message := range []string{"le 3 décembre", "vendredi 7", "demain"} {
		if it := DetectSimpleIntent(message, p); it != nil {
			t.Errorf("DetectSimpleIntent(%q) = %+v, want nil (no verb)", message, it)
		}
	}
}

func TestDetectSimpleIntentTitle(t *testing.T) {
	p := testDatePoll("2025-12-01")

	it := DetectSimpleIntent("renomme le titre en Apéro d'équipe", p)
	if it == nil || it.Action != ActionUpdateTitle {
		t.Fatalf("got %+v, want UPDATE_TITLE", it)
	}
	if it.Payload.(string) != "Apéro d'équipe" {
		t.Errorf("title = %q", it.Payload)
	}
	if it.Confidence != ConfidenceTitle {
		t.Errorf("confidence = %v, want %v", it.Confidence, ConfidenceTitle)
	}

	if it := DetectSimpleIntent("change le titre en    ", p); it != nil {
		t.Errorf("empty title should be rejected, got %+v", it)
	}
}

func TestDetectTimeslotVariants(t *testing.T) {
	p := testDatePoll("2026-03-01")

	tests := []struct {
		name    string
		message string
		want    poll.TimeSlot
	}{
		{
			"range then date",
			"ajoute un créneau 14h-16h le 12/03/2026",
			poll.TimeSlot{Date: "2026-03-12", Start: "14:00", End: "16:00"},
		},
		{
			"date then range",
			"ajoute le 12 de 9h30 à 11h",
			poll.TimeSlot{Date: "2026-03-12", Start: "09:30", End: "11:00"},
		},
		{
			"de a form",
			"ajoute de 14h à 16h le 12/03",
			poll.TimeSlot{Date: "2026-03-12", Start: "14:00", End: "16:00"},
		},
		{
			"bare hour defaults one hour",
			"ajoute 9h le 12",
			poll.TimeSlot{Date: "2026-03-12", Start: "09:00", End: "10:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := DetectSimpleIntent(tt.message, p)
			if it == nil || it.Action != ActionAddTimeslot {
				t.Fatalf("DetectSimpleIntent(%q) = %+v, want ADD_TIMESLOT", tt.message, it)
			}
			if got := it.Payload.(poll.TimeSlot); got != tt.want {
				t.Errorf("slot = %+v, want %+v", got, tt.want)
			}
			if it.Confidence != ConfidenceTimeslot {
				t.Errorf("confidence = %v, want %v", it.Confidence, ConfidenceTimeslot)
			}
		})
	}
}

func TestDetectSimpleIntentISODates(t *testing.T) {
	p := testDatePoll("2025-12-01", "2025-12-02")

	for _, message := range []string{"ajoute le 3", "ajoute vendredi 5", "enlève le 12/03/2026", "ajoute demain"} {
		it := DetectSimpleIntent(message, p)
		if it == nil {
			t.Fatalf("DetectSimpleIntent(%q) = nil", message)
		}
		if it.Action == ActionAddTimeslot {
			continue
		}
		iso := it.Payload.(string)
		if len(iso) != 10 || iso[4] != '-' || iso[7] != '-' {
			t.Errorf("payload %q is not YYYY-MM-DD", iso)
		}
	}
}
