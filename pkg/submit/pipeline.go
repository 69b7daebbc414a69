// Package submit validates a full answer set against a schema and hands
// successful submissions to the storage collaborator.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/promptform/promptform/pkg/model"
	"github.com/promptform/promptform/pkg/validation"
)

// Store is the persistence collaborator. It is trusted to enforce ownership
// and to reject submissions to forms that stopped accepting responses.
type Store interface {
	InsertSubmission(ctx context.Context, submission model.Submission) error
}

// ValidationError carries every failed field from one submit attempt. The
// caller re-renders with the inline messages and must not persist anything.
type ValidationError struct {
	Fields model.ErrorMap
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("submit: %d field(s) failed validation", len(e.Fields))
}

// PersistError wraps a storage collaborator failure after validation passed.
// It is a different kind from ValidationError: the answers are fine, the
// caller keeps them and retries.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("submit: persist submission: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline runs full-form validation and persistence for one schema.
type Pipeline struct {
	store Store
	now   func() time.Time
}

// NewPipeline constructs a pipeline over the given store.
func NewPipeline(store Store, options ...Option) *Pipeline {
	p := &Pipeline{
		store: store,
		now:   time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Submit validates every field in the schema against the answer map (absent
// answers count as empty), collecting all failures rather than stopping at
// the first. A non-empty error map comes back as *ValidationError; otherwise
// the submission is built and inserted, with store failures wrapped in
// *PersistError.
func (p *Pipeline) Submit(ctx context.Context, formID string, schema model.FormSchema, answers model.AnswerMap) (*model.Submission, error) {
	failures := make(model.ErrorMap)
	for _, field := range schema.Fields {
		if err := validation.Field(field, answers[field.ID]); err != nil {
			var fieldErr *validation.FieldError
			if errors.As(err, &fieldErr) {
				failures[field.ID] = fieldErr.Message
				continue
			}
			return nil, err
		}
	}
	if len(failures) > 0 {
		return nil, &ValidationError{Fields: failures}
	}

	submission := model.Submission{
		FormID:      formID,
		SchemaTitle: schema.Title,
		Answers:     filledAnswers(schema, answers),
		CreatedAt:   p.now().UTC(),
	}

	if p.store == nil {
		return &submission, nil
	}
	if err := p.store.InsertSubmission(ctx, submission); err != nil {
		return nil, &PersistError{Err: err}
	}
	return &submission, nil
}

// filledAnswers keeps only schema fields the respondent actually filled, so
// untouched optional fields stay absent instead of present-with-empty-string.
func filledAnswers(schema model.FormSchema, answers model.AnswerMap) model.AnswerMap {
	out := make(model.AnswerMap, len(answers))
	for _, field := range schema.Fields {
		value, ok := answers[field.ID]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		out[field.ID] = value
	}
	return out
}
