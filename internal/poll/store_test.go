package poll

import "testing"

func datePoll(dates ...string) *Poll {
	return &Poll{Type: KindDate, Title: "Réunion équipe", Dates: dates}
}

func formPoll(questions ...Question) *Poll {
	return &Poll{Type: KindForm, Title: "Satisfaction", Questions: questions}
}

func TestApplyAddDateKeepsOrderAndUniqueness(t *testing.T) {
	s := NewStore(datePoll("2025-12-02"))

	if err := s.Apply(Action{Type: ActionAddDate, Payload: "2025-12-01"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Apply(Action{Type: ActionAddDate, Payload: "2025-12-01"}); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}

	got := s.Current().Dates
	want := []string{"2025-12-01", "2025-12-02"}
	if len(got) != len(want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dates = %v, want %v", got, want)
		}
	}
}

func TestApplyRemoveDate(t *testing.T) {
	s := NewStore(datePoll("2025-12-01", "2025-12-02"))
	if err := s.Apply(Action{Type: ActionRemoveDate, Payload: "2025-12-01"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Current().HasDate("2025-12-01") {
		t.Fatal("date still present after removal")
	}
}

func TestApplyQuestionIDsNeverReused(t *testing.T) {
	s := NewStore(formPoll())

	for _, subject := range []string{"le budget", "la salle"} {
		if err := s.Apply(Action{Type: ActionAddQuestion, Payload: SubjectPayload{Subject: subject}}); err != nil {
			t.Fatalf("add question: %v", err)
		}
	}
	first := s.Current().Questions[0].ID

	if err := s.Apply(Action{Type: ActionRemoveQuestion, Payload: IndexPayload{QuestionIndex: 0}}); err != nil {
		t.Fatalf("remove question: %v", err)
	}
	if err := s.Apply(Action{Type: ActionAddQuestion, Payload: SubjectPayload{Subject: "les horaires"}}); err != nil {
		t.Fatalf("re-add question: %v", err)
	}

	for _, q := range s.Current().Questions {
		if q.ID == first {
			t.Fatalf("question ID %s was reused after deletion", first)
		}
	}
}

func TestNewStoreResumesAfterGappedIDs(t *testing.T) {
	s := NewStore(formPoll(
		Question{ID: "q1", Kind: QuestionText, Title: "Avis ?"},
		Question{ID: "q3", Kind: QuestionText, Title: "Budget ?"},
	))

	if err := s.Apply(Action{Type: ActionAddQuestion, Payload: SubjectPayload{Subject: "les horaires"}}); err != nil {
		t.Fatalf("add question: %v", err)
	}

	seen := map[string]bool{}
	for _, q := range s.Current().Questions {
		if seen[q.ID] {
			t.Fatalf("duplicate question ID %s", q.ID)
		}
		seen[q.ID] = true
	}
	if last := s.Current().Questions[2].ID; last != "q4" {
		t.Fatalf("new question ID = %s, want q4", last)
	}
}

func TestReplaceReseedsQuestionIDs(t *testing.T) {
	s := NewStore(formPoll())
	s.Replace(formPoll(Question{ID: "q7", Kind: QuestionText, Title: "Avis ?"}))

	if err := s.Apply(Action{Type: ActionAddQuestion, Payload: SubjectPayload{Subject: "la salle"}}); err != nil {
		t.Fatalf("add question: %v", err)
	}
	if got := s.Current().Questions[1].ID; got != "q8" {
		t.Fatalf("new question ID = %s, want q8", got)
	}
}

func TestApplyChangeTypeDropsOptionsForText(t *testing.T) {
	s := NewStore(formPoll(Question{
		ID: "q1", Kind: QuestionSingle, Title: "Couleur ?",
		Options: []Option{{ID: "q1-o1", Label: "Bleu"}},
	}))

	if err := s.Apply(Action{Type: ActionChangeQuestionType, Payload: TypePayload{QuestionIndex: 0, NewType: QuestionText}}); err != nil {
		t.Fatalf("change type: %v", err)
	}
	q := s.Current().Questions[0]
	if q.Kind != QuestionText || q.Options != nil {
		t.Fatalf("question = %+v, want text kind with no options", q)
	}
}

func TestApplyOptionRoundTrip(t *testing.T) {
	s := NewStore(formPoll(Question{ID: "q1", Kind: QuestionMultiple, Title: "Couleur ?"}))

	if err := s.Apply(Action{Type: ActionAddOption, Payload: OptionPayload{QuestionIndex: 0, Label: "Jaune"}}); err != nil {
		t.Fatalf("add option: %v", err)
	}
	if got := s.Current().Questions[0].Options; len(got) != 1 || got[0].Label != "Jaune" {
		t.Fatalf("options = %+v", got)
	}
	if err := s.Apply(Action{Type: ActionRemoveOption, Payload: OptionPayload{QuestionIndex: 0, Label: "Jaune"}}); err != nil {
		t.Fatalf("remove option: %v", err)
	}
	if got := s.Current().Questions[0].Options; len(got) != 0 {
		t.Fatalf("options = %+v, want empty", got)
	}
}

func TestApplyOutOfRangeIndexFails(t *testing.T) {
	s := NewStore(formPoll(Question{ID: "q1", Kind: QuestionText, Title: "Avis ?"}))
	if err := s.Apply(Action{Type: ActionRemoveQuestion, Payload: IndexPayload{QuestionIndex: 5}}); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestApplyReplacePoll(t *testing.T) {
	s := NewStore(datePoll("2025-12-01"))
	next := formPoll()
	if err := s.Apply(Action{Type: ActionReplacePoll, Payload: next}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if s.Current().Type != KindForm {
		t.Fatalf("poll type = %s, want form", s.Current().Type)
	}
}

func TestApplyAddTimeslotRegistersDate(t *testing.T) {
	s := NewStore(datePoll())
	slot := TimeSlot{Date: "2025-12-12", Start: "14:00", End: "16:00"}
	if err := s.Apply(Action{Type: ActionAddTimeslot, Payload: slot}); err != nil {
		t.Fatalf("add timeslot: %v", err)
	}
	p := s.Current()
	if !p.HasDate("2025-12-12") || len(p.Slots) != 1 {
		t.Fatalf("poll = %+v, want date and slot registered", p)
	}
}
