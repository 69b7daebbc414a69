// Package tui renders a FormSchema as an interactive terminal session driven
// by survey prompts. Each prompt writes into the session state through the
// same edit path the web surface uses, so error clearing behaves identically.
package tui

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/promptform/promptform/pkg/model"
	"github.com/promptform/promptform/pkg/render"
	"github.com/promptform/promptform/pkg/session"
	"github.com/promptform/promptform/pkg/validation"
)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// Renderer implements render.Renderer for terminal-driven fill sessions.
type Renderer struct {
	driver PromptDriver
}

// New constructs a TUI renderer with the survey driver by default.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{driver: newSurveyDriver()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render prompts for every field in declared order and returns the collected
// answer map as JSON. Invalid input re-prompts the same field until it
// passes, so the serialized answers always validate.
func (r *Renderer) Render(ctx context.Context, schema model.FormSchema, opts render.Options) ([]byte, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	state := session.NewState(opts.Values, opts.Errors)

	for _, field := range schema.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}

	payload, err := json.Marshal(state.Answers())
	if err != nil {
		return nil, fmt.Errorf("tui: serialize answers: %w", err)
	}
	return payload, nil
}

// Fill runs the same prompting loop but hands back the live session state,
// for callers that submit through the pipeline instead of serializing.
func (r *Renderer) Fill(ctx context.Context, schema model.FormSchema, state *session.State) error {
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	for _, field := range schema.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field model.FieldDefinition, state *session.State) error {
	if msg, ok := state.ErrorFor(field.ID); ok {
		_ = r.driver.Info(ctx, fmt.Sprintf("%s: %s", field.Label, msg))
	}

	for {
		value, err := r.askOnce(ctx, field, state)
		if err != nil {
			return err
		}

		// Editing clears the field's previous error before validation runs.
		state.Set(field.ID, value)

		if err := validation.Field(field, value); err != nil {
			var fieldErr *validation.FieldError
			if errors.As(err, &fieldErr) {
				_ = r.driver.Info(ctx, fieldErr.Message)
				continue
			}
			return err
		}
		return nil
	}
}

func (r *Renderer) askOnce(ctx context.Context, field model.FieldDefinition, state *session.State) (string, error) {
	current, _ := state.Get(field.ID)
	label := promptLabel(field)

	switch field.Type {
	case model.FieldTypeSelect:
		defaultIdx := indexOf(field.Options, current)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      field.Options,
			DefaultIndex: defaultIdx,
			Help:         field.Placeholder,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx], nil
	case model.FieldTypeTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message: label,
			Default: current,
			Help:    field.Placeholder,
		})
	default:
		return r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: current,
			Help:    field.Placeholder,
		})
	}
}

func promptLabel(field model.FieldDefinition) string {
	if field.Required {
		return field.Label + " *"
	}
	return field.Label
}
