package poll

// Action types understood by the reducer. They form a closed enumeration:
// the intent pipeline never emits anything outside this list.
const (
	ActionAddDate            = "ADD_DATE"
	ActionRemoveDate         = "REMOVE_DATE"
	ActionUpdateTitle        = "UPDATE_TITLE"
	ActionAddTimeslot        = "ADD_TIMESLOT"
	ActionAddQuestion        = "ADD_QUESTION"
	ActionRemoveQuestion     = "REMOVE_QUESTION"
	ActionChangeQuestionType = "CHANGE_QUESTION_TYPE"
	ActionAddOption          = "ADD_OPTION"
	ActionRemoveOption       = "REMOVE_OPTION"
	ActionSetRequired        = "SET_REQUIRED"
	ActionRenameQuestion     = "RENAME_QUESTION"
	ActionReplacePoll        = "REPLACE_POLL"
)

// Action is one mutation command handed to the reducer. Payload is one of
// the typed payload structs below, or a plain string for the date/title
// actions.
type Action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// SubjectPayload carries the topic of a new question (ADD_QUESTION).
type SubjectPayload struct {
	Subject string `json:"subject"`
}

// IndexPayload references an existing question by 0-based index
// (REMOVE_QUESTION).
type IndexPayload struct {
	QuestionIndex int `json:"questionIndex"`
}

// TypePayload changes the answer format of a question
// (CHANGE_QUESTION_TYPE).
type TypePayload struct {
	QuestionIndex int          `json:"questionIndex"`
	NewType       QuestionKind `json:"newType"`
}

// OptionPayload adds or removes an option label on a choice question
// (ADD_OPTION, REMOVE_OPTION).
type OptionPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	Label         string `json:"label"`
}

// RequiredPayload toggles the mandatory flag of a question (SET_REQUIRED).
type RequiredPayload struct {
	QuestionIndex int  `json:"questionIndex"`
	Required      bool `json:"required"`
}

// RenamePayload retitles a question (RENAME_QUESTION).
type RenamePayload struct {
	QuestionIndex int    `json:"questionIndex"`
	NewTitle      string `json:"newTitle"`
}
