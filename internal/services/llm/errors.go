package llm

import (
	"fmt"
	"strings"
	"time"
)

const genericFailureMessage = "generation request failed"

// GenerationRequestError reports a non-success response or a transport failure.
// Message carries the service's error.message when the body provided one.
type GenerationRequestError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *GenerationRequestError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = genericFailureMessage
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("generation request: http %d: %s", e.StatusCode, msg)
	}
	return "generation request: " + msg
}

func (e *GenerationRequestError) Unwrap() error { return e.Err }

// ErrorKind classifies the failure for the boundary layer.
func (e *GenerationRequestError) ErrorKind() string { return "external" }

// MalformedResponseError reports a success response lacking
// choices[0].message.content.
type MalformedResponseError struct {
	FinishReason string
	Refusal      string
	Snippet      string
	Err          error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed generation response: %v (response_snippet=%s)", e.Err, e.Snippet)
	}
	return fmt.Sprintf(
		"malformed generation response: missing choices[0].message.content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.FinishReason,
		e.Refusal,
		e.Snippet,
	)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ErrorKind classifies the failure for the boundary layer.
func (e *MalformedResponseError) ErrorKind() string { return "external" }
