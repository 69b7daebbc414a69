// Package negotiate handles the clarification loop around schema generation:
// when the gateway reports a contradiction instead of a form, it collects the
// user's answers and merges them back into the original description for a
// retry. The flow is a small explicit state machine with pure transitions so
// it stays testable without a live gateway.
package negotiate

import (
	"fmt"
	"strings"

	"github.com/promptform/promptform/pkg/model"
)

// Phase enumerates the negotiation states.
type Phase string

const (
	// PhaseIdle means no clarification is pending; the session's description
	// is ready to send to the gateway.
	PhaseIdle Phase = "idle"
	// PhaseAwaitingAnswers means a clarification arrived and every question
	// needs a non-empty answer before the loop may continue.
	PhaseAwaitingAnswers Phase = "awaiting_answers"
	// PhaseAmending is the transient state while answers are folded into the
	// description. Transitions pass through it atomically.
	PhaseAmending Phase = "amending"
)

// Session is one negotiation in progress. It is a value type: transitions
// return the next session instead of mutating in place.
type Session struct {
	Phase         Phase
	Description   string
	Clarification *model.ClarificationRequest
	Round         int
}

// Start opens an idle session around the user's original description.
func Start(description string) Session {
	return Session{
		Phase:       PhaseIdle,
		Description: description,
	}
}

// ReceiveClarification moves an idle session into AwaitingAnswers. Each round
// fully replaces any prior generation result.
func (s Session) ReceiveClarification(req model.ClarificationRequest) (Session, error) {
	if s.Phase != PhaseIdle {
		return s, fmt.Errorf("negotiate: cannot receive a clarification in phase %q", s.Phase)
	}
	if err := req.Validate(); err != nil {
		return s, err
	}

	next := s
	next.Phase = PhaseAwaitingAnswers
	next.Clarification = &req
	next.Round++
	return next, nil
}

// SubmitAnswers amends the description with the collected answers and returns
// the session to Idle, ready for an immediate resubmission. Every question
// must have a non-empty answer.
func (s Session) SubmitAnswers(answers []string) (Session, error) {
	if s.Phase != PhaseAwaitingAnswers || s.Clarification == nil {
		return s, fmt.Errorf("negotiate: no clarification awaiting answers")
	}
	if len(answers) != len(s.Clarification.Questions) {
		return s, fmt.Errorf("negotiate: got %d answer(s) for %d question(s)",
			len(answers), len(s.Clarification.Questions))
	}
	for i, answer := range answers {
		if strings.TrimSpace(answer) == "" {
			return s, fmt.Errorf("negotiate: answer %d is empty", i+1)
		}
	}

	next := s
	next.Phase = PhaseAmending
	next.Description = Amend(s.Description, answers)
	next.Clarification = nil
	next.Phase = PhaseIdle
	return next, nil
}

// Cancel abandons a pending clarification without resubmitting. The
// description reverts to whatever it was before the clarification arrived.
func (s Session) Cancel() Session {
	next := s
	next.Phase = PhaseIdle
	next.Clarification = nil
	return next
}

// Amend deterministically concatenates a description with a labeled
// clarifications block. The original text stays verbatim as a prefix and the
// answers keep question order.
func Amend(description string, answers []string) string {
	var builder strings.Builder
	builder.WriteString(description)
	builder.WriteString("\n\nClarifications:\n")
	for i, answer := range answers {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.TrimSpace(answer)))
	}
	return builder.String()
}
