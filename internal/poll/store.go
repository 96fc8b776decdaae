package poll

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Store owns the live poll document and applies dispatched actions to it.
// The intent pipeline only reads the snapshot it is given; all writes come
// through Apply, keeping a single-writer discipline.
type Store struct {
	mu     sync.Mutex
	poll   *Poll
	nextID int
}

// NewStore creates a store around an initial poll (may be nil: no poll yet).
func NewStore(p *Poll) *Store {
	return &Store{poll: p, nextID: nextQuestionID(p)}
}

// nextQuestionID resumes the counter past the highest numeric suffix found in
// the existing question IDs. A document reloaded with deletion gaps (q1, q3)
// must never hand out q3 again.
func nextQuestionID(p *Poll) int {
	next := 1
	if p == nil {
		return next
	}
	for _, q := range p.Questions {
		n, err := strconv.Atoi(strings.TrimPrefix(q.ID, "q"))
		if err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

// Current returns a snapshot of the poll, or nil when none exists. Callers
// own the copy; a concurrent Apply never mutates it under them.
func (s *Store) Current() *Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poll.clone()
}

// Replace swaps in a new poll document.
func (s *Store) Replace(p *Poll) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poll = p
	s.nextID = nextQuestionID(p)
}

// Apply mutates the poll according to the action. Unknown action types and
// payload shape mismatches are reported as errors; the caller decides what
// to surface.
func (s *Store) Apply(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Type == ActionReplacePoll {
		if p, ok := a.Payload.(*Poll); ok {
			s.poll = p
			s.nextID = nextQuestionID(p)
			return nil
		}
		return fmt.Errorf("REPLACE_POLL: payload is %T, want *Poll", a.Payload)
	}
	if s.poll == nil {
		return fmt.Errorf("%s: no poll", a.Type)
	}

	switch a.Type {
	case ActionAddDate:
		iso, ok := a.Payload.(string)
		if !ok {
			return payloadErr(a)
		}
		if !s.poll.HasDate(iso) {
			s.poll.Dates = append(s.poll.Dates, iso)
			sort.Strings(s.poll.Dates)
		}
	case ActionRemoveDate:
		iso, ok := a.Payload.(string)
		if !ok {
			return payloadErr(a)
		}
		dates := s.poll.Dates[:0]
		for _, d := range s.poll.Dates {
			if d != iso {
				dates = append(dates, d)
			}
		}
		s.poll.Dates = dates
	case ActionUpdateTitle:
		title, ok := a.Payload.(string)
		if !ok {
			return payloadErr(a)
		}
		s.poll.Title = title
	case ActionAddTimeslot:
		slot, ok := a.Payload.(TimeSlot)
		if !ok {
			return payloadErr(a)
		}
		if !s.poll.HasDate(slot.Date) {
			s.poll.Dates = append(s.poll.Dates, slot.Date)
			sort.Strings(s.poll.Dates)
		}
		s.poll.Slots = append(s.poll.Slots, slot)
	case ActionAddQuestion:
		p, ok := a.Payload.(SubjectPayload)
		if !ok {
			return payloadErr(a)
		}
		s.poll.Questions = append(s.poll.Questions, Question{
			ID:    "q" + strconv.Itoa(s.nextID),
			Kind:  QuestionText,
			Title: p.Subject,
		})
		s.nextID++ // IDs are never reused, even after deletions
	case ActionRemoveQuestion:
		p, ok := a.Payload.(IndexPayload)
		if !ok {
			return payloadErr(a)
		}
		if !s.poll.QuestionInRange(p.QuestionIndex) {
			return indexErr(a.Type, p.QuestionIndex)
		}
		s.poll.Questions = append(s.poll.Questions[:p.QuestionIndex], s.poll.Questions[p.QuestionIndex+1:]...)
	case ActionChangeQuestionType:
		p, ok := a.Payload.(TypePayload)
		if !ok {
			return payloadErr(a)
		}
		if !s.poll.QuestionInRange(p.QuestionIndex) {
			return indexErr(a.Type, p.QuestionIndex)
		}
		q := &s.poll.Questions[p.QuestionIndex]
		q.Kind = p.NewType
		if p.NewType == QuestionText {
			q.Options = nil
		}
	case ActionAddOption:
		p, ok := a.Payload.(OptionPayload)
		if !ok {
			return payloadErr(a)
		}
		if !s.poll.QuestionInRange(p.QuestionIndex) {
			return indexErr(a.Type, p.QuestionIndex)
		}
		q := &s.poll.Questions[p.QuestionIndex]
		q.Options = append(q.Options, Option{
			ID:    fmt.Sprintf("%s-o%d", q.ID, len(q.Options)+1),
			Label: p.Label,
		})
	case ActionRemoveOption:
		p, ok := a.Payload.(OptionPayload)
		if !ok {
			return payloadErr(a)
		}
		if !s.poll.QuestionInRange(p.QuestionIndex) {
			return indexErr(a.Type, p.QuestionIndex)
		}
		q := &s.poll.Questions[p.QuestionIndex]
		opts := q.Options[:0]
		for _, o := range q.Options {
			if o.Label != p.Label {
				opts = append(opts, o)
			}
		}
		q.Options = opts
	case ActionSetRequired:
		p, ok := a.Payload.(RequiredPayload)
		if !ok {
			return payloadErr(a)
		}
		if !s.poll.QuestionInRange(p.QuestionIndex) {
			return indexErr(a.Type, p.QuestionIndex)
		}
		s.poll.Questions[p.QuestionIndex].Required = p.Required
	case ActionRenameQuestion:
		p, ok := a.Payload.(RenamePayload)
		if !ok {
			return payloadErr(a)
		}
		if !s.poll.QuestionInRange(p.QuestionIndex) {
			return indexErr(a.Type, p.QuestionIndex)
		}
		s.poll.Questions[p.QuestionIndex].Title = p.NewTitle
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}

func payloadErr(a Action) error {
	return fmt.Errorf("%s: unexpected payload type %T", a.Type, a.Payload)
}

func indexErr(action string, idx int) error {
	return fmt.Errorf("%s: question index %d out of range", action, idx)
}
