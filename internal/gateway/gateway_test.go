package gateway

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julienfritschheydon/doodates/internal/poll"
)

func TestDescribePollDate(t *testing.T) {
	p := &poll.Poll{
		Type:  poll.KindDate,
		Title: "Réunion",
		Dates: []string{"2025-12-01", "2025-12-03"},
		Slots: []poll.TimeSlot{{Date: "2025-12-01", Start: "14:00", End: "15:00"}},
	}
	out := DescribePoll(p)
	for _, want := range []string{"Réunion", "sondage de dates", "2025-12-01", "14:00-15:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestDescribePollForm(t *testing.T) {
	p := &poll.Poll{
		Type:  poll.KindForm,
		Title: "Satisfaction",
		Questions: []poll.Question{
			{ID: "q1", Kind: poll.QuestionSingle, Title: "Couleur ?", Required: true, Options: []poll.Option{{ID: "o1", Label: "Bleu"}}},
		},
	}
	out := DescribePoll(p)
	for _, want := range []string{"questionnaire", "1. Couleur ? (single) *", "- Bleu"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestDescribePollNil(t *testing.T) {
	if got := DescribePoll(nil); got != "aucun sondage" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadPollRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poll.json")
	in := &poll.Poll{Type: poll.KindForm, Title: "Sondage", Questions: []poll.Question{
		{ID: "q1", Kind: poll.QuestionText, Title: "Avis ?"},
	}}
	if err := savePoll(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out := loadPoll(path)
	if out.Type != poll.KindForm || out.Title != "Sondage" || len(out.Questions) != 1 {
		t.Fatalf("got %+v", out)
	}
}

func TestLoadPollFallbacks(t *testing.T) {
	if p := loadPoll(""); p.Type != poll.KindDate {
		t.Fatalf("empty path: %+v", p)
	}
	if p := loadPoll(filepath.Join(t.TempDir(), "missing.json")); p.Type != poll.KindDate {
		t.Fatalf("missing file: %+v", p)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p := loadPoll(bad); p.Type != poll.KindDate || len(p.Dates) != 0 {
		t.Fatalf("bad file: %+v", p)
	}
}

func TestApplyDispatchLogsReducerErrors(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	store := poll.NewStore(&poll.Poll{Type: poll.KindDate, Title: "Réunion"})
	dispatch := applyDispatch(store)

	dispatch(poll.Action{Type: poll.ActionAddDate, Payload: 42})
	if !strings.Contains(buf.String(), poll.ActionAddDate) {
		t.Fatalf("log = %q, want reducer error naming %s", buf.String(), poll.ActionAddDate)
	}

	buf.Reset()
	dispatch(poll.Action{Type: poll.ActionAddDate, Payload: "2025-12-01"})
	if buf.Len() != 0 {
		t.Fatalf("unexpected log on clean apply: %q", buf.String())
	}
	if !store.Current().HasDate("2025-12-01") {
		t.Fatal("date not applied")
	}
}
