package continuity

import (
	"strings"

	"scriptforge/internal/textutil"
)

const (
	// NoPriorContext stands in for carried context before the first batch.
	NoPriorContext = "暂无前序脚本"
	// OpeningSummary stands in for an empty accumulated summary.
	OpeningSummary = "这是故事的开篇。"

	separator = "\n\n"
)

// Carrier derives the bounded prior context handed to a batch request.
type Carrier struct {
	// ContextChars bounds the carried tail of prior output.
	ContextChars int
	// HandoffChars is the shorter tail placed directly in the request.
	HandoffChars int
}

// Context is the continuity input of one batch request.
type Context struct {
	// Recent is the last ContextChars code points of prior output, or
	// NoPriorContext.
	Recent string
	// Handoff is the last HandoffChars code points of Recent.
	Handoff string
	// Summary is the accumulated summary, passed through unchanged.
	Summary  string
	HasPrior bool
}

// SummaryOrOpening returns Summary, or OpeningSummary when it is blank.
func (c Context) SummaryOrOpening() string {
	if strings.TrimSpace(c.Summary) == "" {
		return OpeningSummary
	}
	return c.Summary
}

// Carry builds the continuity context from completed batch contents given in
// ascending sequence order. It never fails; empty input yields the
// NoPriorContext sentinel.
func (c Carrier) Carry(completed []string, summary string) Context {
	joined := strings.Join(completed, separator)
	if len(completed) == 0 || joined == "" {
		return Context{Recent: NoPriorContext, Handoff: NoPriorContext, Summary: summary}
	}
	recent := joined
	if c.ContextChars > 0 {
		recent = textutil.TailRunes(joined, c.ContextChars)
	}
	handoff := recent
	if c.HandoffChars > 0 {
		handoff = textutil.TailRunes(recent, c.HandoffChars)
	}
	return Context{Recent: recent, Handoff: handoff, Summary: summary, HasPrior: true}
}
