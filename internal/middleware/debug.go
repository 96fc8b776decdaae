package middleware

import (
	"encoding/json"
	"io"
	"regexp"
	"time"
	"unicode/utf8"
)

// traceEntry is one JSONL line of the dispatch trace. One entry is written
// per middleware per event, skips included, so replaying a session shows
// which middleware produced each decision and what it cost.
type traceEntry struct {
	Timestamp    string `json:"ts"`
	Event        string `json:"event"`
	MiddlewareID string `json:"middleware"`
	Priority     int    `json:"priority"`
	Skipped      bool   `json:"skipped,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Cancel       bool   `json:"cancel,omitempty"`

	InputChars   int `json:"in_chars"`
	OutputChars  int `json:"out_chars"`
	InputTokens  int `json:"in_tokens_est"`
	OutputTokens int `json:"out_tokens_est"`

	SavedTokens int     `json:"saved_tokens_est"`
	SavedPct    float64 `json:"saved_pct,omitempty"`
}

// wordLike captures word chunks, keeping dotted, slashed, and dashed
// technical tokens ("poll.json", "14:00-16:00") whole; anything left counts
// one rune at a time.
var wordLike = regexp.MustCompile(`[\pL\pN]+(?:[._/\\-][\pL\pN]+)*|[^\s]`)

// estimateTokens sizes a string roughly the way a tokenizer would. French
// chat text runs near one token per word; the rune/4 floor keeps short
// punctuation-heavy strings from rating as nearly free.
func estimateTokens(s string) int {
	if s == "" {
		return 0
	}
	words := len(wordLike.FindAllString(s, -1))
	if floor := (utf8.RuneCountInString(s) + 3) / 4; words < floor {
		return floor
	}
	return words
}

// eventText picks the payload a middleware acts on for the given phase.
func eventText(e *Event) string {
	if e == nil {
		return ""
	}
	switch e.Name {
	case EventBeforeLLMRequest:
		return e.UserText
	case EventAfterLLMResponse, EventBeforeUserReply:
		return e.LLMText
	default:
		return ""
	}
}

// applyDecisionToEvent folds a decision back into the event so later
// middlewares and the trace see the replaced text.
func applyDecisionToEvent(e *Event, dec Decision) {
	if e == nil {
		return
	}
	if dec.OverrideParams != nil {
		e.Params = dec.OverrideParams
	}
	if dec.ReplaceText == nil {
		return
	}
	switch e.Name {
	case EventBeforeLLMRequest:
		e.UserText = *dec.ReplaceText
	case EventAfterLLMResponse, EventBeforeUserReply:
		e.LLMText = *dec.ReplaceText
	}
}

func (c *Chain) trace(e *Event, id string, priority int, skipped bool, inText, outText string, dec Decision) {
	c.debugMu.Lock()
	w := c.debugW
	c.debugMu.Unlock()
	if w == nil {
		return
	}

	inTok := estimateTokens(inText)
	outTok := estimateTokens(outText)
	saved := inTok - outTok
	var savedPct float64
	if inTok > 0 {
		savedPct = float64(saved) / float64(inTok)
	}

	entry := traceEntry{
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		Event:        string(e.Name),
		MiddlewareID: id,
		Priority:     priority,
		Skipped:      skipped,
		Reason:       dec.Reason,
		Cancel:       dec.Cancel,
		InputChars:   utf8.RuneCountInString(inText),
		OutputChars:  utf8.RuneCountInString(outText),
		InputTokens:  inTok,
		OutputTokens: outTok,
		SavedTokens:  saved,
		SavedPct:     savedPct,
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = io.WriteString(w, string(b)+"\n")
}
