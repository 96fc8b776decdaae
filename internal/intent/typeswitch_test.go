package intent

import (
	"testing"

	"github.com/julienfritschheydon/doodates/internal/poll"
)

func TestTypeSwitchExplicitPhrases(t *testing.T) {
	d := NewTypeSwitchDetector()
	datePoll := &poll.Poll{Type: poll.KindDate, Dates: []string{"2025-12-01"}}
	formPoll := &poll.Poll{Type: poll.KindForm}

	tests := []struct {
		name      string
		message   string
		poll      *poll.Poll
		want      bool
		requested poll.Kind
	}{
		{"plutot questionnaire", "plutôt un questionnaire", datePoll, true, poll.KindForm},
		{"plutot formulaire", "fais plutôt un formulaire", datePoll, true, poll.KindForm},
		{"change en sondage de date", "change en sondage de dates", formPoll, true, poll.KindDate},
		{"transforme en questionnaire", "transforme le en questionnaire", datePoll, true, poll.KindForm},
		{"same kind is not a switch", "plutôt un sondage de dates", datePoll, false, ""},
		{"plain edit", "ajoute le 3 décembre", datePoll, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.message, tt.poll)
			if got.IsTypeSwitch != tt.want {
				t.Fatalf("Detect(%q) switch = %v, want %v (%+v)", tt.message, got.IsTypeSwitch, tt.want, got)
			}
			if !tt.want {
				return
			}
			if got.RequestedType != tt.requested {
				t.Errorf("requested = %s, want %s", got.RequestedType, tt.requested)
			}
			if got.Confidence != ConfidenceExplicitSwitch {
				t.Errorf("confidence = %v, want %v", got.Confidence, ConfidenceExplicitSwitch)
			}
		})
	}
}

func TestTypeSwitchKeywordScoring(t *testing.T) {
	d := NewTypeSwitchDetector()
	datePoll := &poll.Poll{Type: poll.KindDate, Dates: []string{"2025-12-01"}}

	got := d.Detect("je voudrais des questions avec des choix et des options de réponse", datePoll)
	if !got.IsTypeSwitch || got.RequestedType != poll.KindForm {
		t.Fatalf("Detect = %+v, want form switch", got)
	}
	if got.Confidence <= 0.5 || got.Confidence > ConfidenceSwitchCeiling {
		t.Errorf("confidence = %v, want (0.5, %v]", got.Confidence, ConfidenceSwitchCeiling)
	}
}

func TestTypeSwitchKeywordSameKindIsNotASwitch(t *testing.T) {
	d := NewTypeSwitchDetector()
	datePoll := &poll.Poll{Type: poll.KindDate, Dates: []string{"2025-12-01"}}

	got := d.Detect("on regarde le calendrier pour un créneau dans la semaine", datePoll)
	if got.IsTypeSwitch {
		t.Fatalf("date vocabulary on a date poll must not switch: %+v", got)
	}
}

func TestTypeSwitchNilPoll(t *testing.T) {
	d := NewTypeSwitchDetector()
	got := d.Detect("plutôt un questionnaire", nil)
	if got.IsTypeSwitch || got.Confidence != 0 {
		t.Fatalf("Detect(nil poll) = %+v, want zero result", got)
	}
}
