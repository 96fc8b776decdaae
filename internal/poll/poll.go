package poll

// Kind discriminates the two fundamental poll variants.
type Kind string

const (
	KindDate Kind = "date"
	KindForm Kind = "form"
)

// QuestionKind is the answer format of a form question.
type QuestionKind string

const (
	QuestionText     QuestionKind = "text"
	QuestionSingle   QuestionKind = "single"
	QuestionMultiple QuestionKind = "multiple"
	QuestionMatrix   QuestionKind = "matrix"
)

// Option is one selectable answer of a choice question.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Question is one entry of a form poll. IDs are assigned at creation and
// never reused after deletion, so in-flight edit commands stay unambiguous.
type Question struct {
	ID       string       `json:"id"`
	Kind     QuestionKind `json:"type"`
	Title    string       `json:"title"`
	Required bool         `json:"required"`
	Options  []Option     `json:"options,omitempty"`
}

// TimeSlot is a start/end window attached to a date of a date poll.
type TimeSlot struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Start string `json:"start"`
	End   string `json:"end"`
}

// Poll is the document the intent pipeline reads but never mutates.
// A date poll carries Dates (ISO YYYY-MM-DD, ordered) and optional Slots;
// a form poll carries Questions.
type Poll struct {
	Type      Kind       `json:"type"`
	Title     string     `json:"title"`
	Dates     []string   `json:"dates,omitempty"`
	Slots     []TimeSlot `json:"slots,omitempty"`
	Questions []Question `json:"questions,omitempty"`
}

// clone returns an independent copy of the poll, slices included. The store
// hands these out so readers never alias the document a reducer is mutating.
func (p *Poll) clone() *Poll {
	if p == nil {
		return nil
	}
	c := *p
	c.Dates = append([]string(nil), p.Dates...)
	c.Slots = append([]TimeSlot(nil), p.Slots...)
	c.Questions = append([]Question(nil), p.Questions...)
	for i, q := range c.Questions {
		c.Questions[i].Options = append([]Option(nil), q.Options...)
	}
	return &c
}

// HasDate reports whether the poll already contains the ISO date.
func (p *Poll) HasDate(iso string) bool {
	for _, d := range p.Dates {
		if d == iso {
			return true
		}
	}
	return false
}

// LastDate returns the chronologically last date of the poll, or "" when the
// poll has none. Dates are kept sorted by the reducer, so this is the tail.
func (p *Poll) LastDate() string {
	if len(p.Dates) == 0 {
		return ""
	}
	return p.Dates[len(p.Dates)-1]
}

// QuestionInRange reports whether the 0-based index refers to an existing
// question.
func (p *Poll) QuestionInRange(idx int) bool {
	return idx >= 0 && idx < len(p.Questions)
}
