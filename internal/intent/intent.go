// Package intent turns free-form French chat messages into structured
// mutation commands against the current poll. Detection runs as an ordered
// cascade: type-switch detection, the multi-intent date parser, the form
// regex matcher, then a generative fallback. Confidence values arbitrate
// between the stages.
package intent

import (
	"github.com/julienfritschheydon/doodates/internal/poll"
)

// Action identifies one recognizable poll edit.
type Action string

const (
	ActionNone               Action = ""
	ActionAddDate            Action = poll.ActionAddDate
	ActionRemoveDate         Action = poll.ActionRemoveDate
	ActionUpdateTitle        Action = poll.ActionUpdateTitle
	ActionAddTimeslot        Action = poll.ActionAddTimeslot
	ActionAddQuestion        Action = poll.ActionAddQuestion
	ActionRemoveQuestion     Action = poll.ActionRemoveQuestion
	ActionChangeQuestionType Action = poll.ActionChangeQuestionType
	ActionAddOption          Action = poll.ActionAddOption
	ActionRemoveOption       Action = poll.ActionRemoveOption
	ActionSetRequired        Action = poll.ActionSetRequired
	ActionRenameQuestion     Action = poll.ActionRenameQuestion
	ActionReplacePoll        Action = poll.ActionReplacePoll
)

// Confidence constants form the contract between detectors and the resolver
// thresholds. Changing one side means re-checking the comparisons on the
// other.
const (
	// Detector scores.
	ConfidenceExplicitSwitch = 0.95 // explicit type-switch phrase
	ConfidenceSwitchCeiling  = 0.85 // keyword-scored switch upper bound
	ConfidenceDateMatch      = 0.9  // date resolved through the NL parser
	ConfidenceDirectDate     = 0.95 // fully explicit DD/MM/YYYY
	ConfidenceTimeslot       = 0.9
	ConfidenceTitle          = 0.95
	ConfidenceFormStrong     = 0.95 // remove/required/rename rows
	ConfidenceFormDefault    = 0.9

	// Resolver thresholds.
	DispatchThreshold       = 0.7 // winning intent must strictly exceed this
	SwitchTrustThreshold    = 0.6 // synchronous switch accepted as-is above this
	SwitchEscalateFloor     = 0.3 // below this the sync switch result is noise
	SwitchAIAcceptThreshold = 0.7 // AI confirmation for ambiguous switches
	FallbackAcceptThreshold = 0.8 // form-path generative fallback gate
)

// Intent is the primary detector output: one recognized edit, or nothing.
type Intent struct {
	IsModification bool
	Action         Action
	// Payload is action-specific: an ISO date or title string, a
	// poll.TimeSlot, or one of the poll payload structs for form edits.
	Payload            any
	Confidence         float64
	Explanation        string
	ModifiedQuestionID string
	ModifiedField      string
}

// MultiIntent aggregates the per-clause intents of a compound date-poll
// message. Confidence is the arithmetic mean of the parts.
type MultiIntent struct {
	IsModification bool
	Intents        []Intent
	Confidence     float64
	Explanation    string
}

// TypeSwitchResult reports whether the user asked to convert the poll to the
// other fundamental kind. It never merges into Intent.
type TypeSwitchResult struct {
	IsTypeSwitch  bool      `json:"isTypeSwitch"`
	CurrentType   poll.Kind `json:"currentType,omitempty"`
	RequestedType poll.Kind `json:"requestedType,omitempty"`
	Confidence    float64   `json:"confidence"`
	Explanation   string    `json:"explanation,omitempty"`
}

// Result is the envelope DetectIntent hands back to the chat layer. The
// caller owns it from there: it appends the messages to history and drives
// any UI highlight keyed by ModifiedQuestionID/ModifiedField.
type Result struct {
	Handled            bool
	UserMessage        string
	ConfirmMessage     string
	Action             Action
	IsTypeSwitch       bool
	OriginalMessage    string
	RequestedType      poll.Kind
	ModifiedQuestionID string
	ModifiedField      string
}

// Dispatch hands one mutation command to the document layer. It is called
// synchronously, in clause order, and is assumed not to fail.
type Dispatch func(action poll.Action)
