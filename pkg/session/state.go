// Package session owns the per-render-session answer and error state. Each
// render session gets its own State; nothing here is shared across sessions.
package session

import (
	"github.com/promptform/promptform/pkg/model"
)

// State tracks the answers a respondent has entered so far and the current
// validation message per field. It is intentionally small; validation and
// rendering live elsewhere.
type State struct {
	answers model.AnswerMap
	errors  model.ErrorMap
}

// NewState seeds the state with prefilled answers and errors. Both arguments
// may be nil.
func NewState(answers model.AnswerMap, errs model.ErrorMap) *State {
	return &State{
		answers: cloneAnswers(answers),
		errors:  cloneErrors(errs),
	}
}

// Set records a raw value for a field and, as a side effect, clears any error
// currently attached to that field. The clear happens on edit, not on the
// next validation pass.
func (s *State) Set(fieldID, value string) {
	if s.answers == nil {
		s.answers = make(model.AnswerMap)
	}
	s.answers[fieldID] = value
	delete(s.errors, fieldID)
}

// Get returns the raw value for a field. Untouched fields report ok=false;
// validation treats them the same as empty strings.
func (s *State) Get(fieldID string) (string, bool) {
	value, ok := s.answers[fieldID]
	return value, ok
}

// Answers returns a copy of the current answer map.
func (s *State) Answers() model.AnswerMap {
	return cloneAnswers(s.answers)
}

// Errors returns a copy of the current error map.
func (s *State) Errors() model.ErrorMap {
	return cloneErrors(s.errors)
}

// ErrorFor returns the message attached to a field, if any.
func (s *State) ErrorFor(fieldID string) (string, bool) {
	msg, ok := s.errors[fieldID]
	return msg, ok
}

// SetErrors replaces the error map wholesale, the way a full-form validation
// pass rebuilds it.
func (s *State) SetErrors(errs model.ErrorMap) {
	s.errors = cloneErrors(errs)
}

// Reset discards all answers and errors so the same schema can be filled
// again for a new response.
func (s *State) Reset() {
	s.answers = make(model.AnswerMap)
	s.errors = make(model.ErrorMap)
}

func cloneAnswers(src model.AnswerMap) model.AnswerMap {
	out := make(model.AnswerMap, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneErrors(src model.ErrorMap) model.ErrorMap {
	out := make(model.ErrorMap, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
