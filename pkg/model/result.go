package model

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// ResultKind discriminates the two GenerationResult variants.
type ResultKind string

const (
	ResultForm          ResultKind = "form"
	ResultClarification ResultKind = "clarification"
)

// GenerationResult is the tagged union the schema generation gateway returns:
// either a usable FormSchema or a ClarificationRequest describing a detected
// contradiction. Exactly one variant is active; callers must branch on Kind
// through the accessors, which report whether their variant is the live one.
type GenerationResult struct {
	kind          ResultKind
	form          *FormSchema
	clarification *ClarificationRequest
}

// FormResult wraps a FormSchema into a GenerationResult.
func FormResult(schema FormSchema) GenerationResult {
	return GenerationResult{kind: ResultForm, form: &schema}
}

// ClarificationResult wraps a ClarificationRequest into a GenerationResult.
func ClarificationResult(req ClarificationRequest) GenerationResult {
	return GenerationResult{kind: ResultClarification, clarification: &req}
}

// Kind reports which variant is active.
func (r GenerationResult) Kind() ResultKind {
	return r.kind
}

// Form returns the schema variant. The second return is false when the result
// is a clarification.
func (r GenerationResult) Form() (FormSchema, bool) {
	if r.kind != ResultForm || r.form == nil {
		return FormSchema{}, false
	}
	return *r.form, true
}

// Clarification returns the clarification variant. The second return is false
// when the result is a form.
func (r GenerationResult) Clarification() (ClarificationRequest, bool) {
	if r.kind != ResultClarification || r.clarification == nil {
		return ClarificationRequest{}, false
	}
	return *r.clarification, true
}

// resultEnvelope is the wire shape: one JSON object with a type discriminator
// plus the variant-specific fields.
type resultEnvelope struct {
	Type          ResultKind        `json:"type"`
	Title         string            `json:"title,omitempty"`
	Description   string            `json:"description,omitempty"`
	Fields        []FieldDefinition `json:"fields,omitempty"`
	Contradiction string            `json:"contradiction,omitempty"`
	Questions     []string          `json:"questions,omitempty"`
}

// MarshalJSON emits the discriminated wire format.
func (r GenerationResult) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case ResultForm:
		if r.form == nil {
			return nil, fmt.Errorf("model: form result has no schema")
		}
		return json.Marshal(resultEnvelope{
			Type:        ResultForm,
			Title:       r.form.Title,
			Description: r.form.Description,
			Fields:      r.form.Fields,
		})
	case ResultClarification:
		if r.clarification == nil {
			return nil, fmt.Errorf("model: clarification result has no request")
		}
		return json.Marshal(resultEnvelope{
			Type:          ResultClarification,
			Contradiction: r.clarification.Contradiction,
			Questions:     r.clarification.Questions,
		})
	default:
		return nil, fmt.Errorf("model: cannot marshal result kind %q", r.kind)
	}
}

// UnmarshalJSON decodes the discriminated wire format and enforces the
// variant invariants (unique field IDs, options on selects, at least one
// clarification question).
func (r *GenerationResult) UnmarshalJSON(data []byte) error {
	var envelope resultEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("model: decode generation result: %w", err)
	}

	switch envelope.Type {
	case ResultForm:
		schema := FormSchema{
			Title:       envelope.Title,
			Description: envelope.Description,
			Fields:      envelope.Fields,
		}
		if err := schema.Validate(); err != nil {
			return err
		}
		*r = FormResult(schema)
		return nil
	case ResultClarification:
		req := ClarificationRequest{
			Contradiction: envelope.Contradiction,
			Questions:     envelope.Questions,
		}
		if err := req.Validate(); err != nil {
			return err
		}
		*r = ClarificationResult(req)
		return nil
	case "":
		return fmt.Errorf("model: generation result is missing the type discriminator")
	default:
		return fmt.Errorf("model: unknown generation result type %q", envelope.Type)
	}
}
