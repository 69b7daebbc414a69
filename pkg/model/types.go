package model

import "time"

// FieldType is the simplified enum for form-friendly input kinds.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
)

// ValidationRule is an optional custom constraint attached to a field. When a
// pattern is present it fully supersedes the built-in shape checks for the
// field's type; Message, when set, replaces the default error text.
type ValidationRule struct {
	Pattern string `json:"pattern"`
	Message string `json:"message,omitempty"`
}

// FieldDefinition models an individual input inside a generated form. Struct
// fields are annotated so renderers and the storage layer can serialise them
// directly.
type FieldDefinition struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Type        FieldType       `json:"type"`
	Placeholder string          `json:"placeholder,omitempty"`
	Required    bool            `json:"required"`
	Validation  *ValidationRule `json:"validation,omitempty"`
	// Options is meaningful only for select fields, where it must be
	// non-empty. It is ignored for every other type.
	Options []string `json:"options,omitempty"`
}

// FormSchema is the top-level representation renderers consume. Field order is
// rendering order and is significant.
type FormSchema struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Fields      []FieldDefinition `json:"fields"`
}

// ClarificationRequest is the gateway's alternate result when it judges the
// input description self-contradictory. Questions is never empty on a valid
// result.
type ClarificationRequest struct {
	Contradiction string   `json:"contradiction"`
	Questions     []string `json:"questions"`
}

// AnswerMap tracks current raw field values for one render session, keyed by
// field ID. Unset fields are absent until first touched; validation treats
// absent and empty uniformly.
type AnswerMap map[string]string

// ErrorMap tracks the single current validation message per field ID.
type ErrorMap map[string]string

// Submission is the immutable record of one completed, validated form
// response. It is created at successful validation and never mutated.
type Submission struct {
	FormID      string    `json:"form_id,omitempty"`
	SchemaTitle string    `json:"schema_title"`
	Answers     AnswerMap `json:"answers"`
	CreatedAt   time.Time `json:"created_at"`
}
