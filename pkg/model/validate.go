package model

import (
	"fmt"
	"strings"
)

var fieldTypes = map[FieldType]struct{}{
	FieldTypeText:     {},
	FieldTypeEmail:    {},
	FieldTypeTel:      {},
	FieldTypeNumber:   {},
	FieldTypeSelect:   {},
	FieldTypeTextarea: {},
}

// KnownFieldType reports whether t is one of the supported input kinds.
func KnownFieldType(t FieldType) bool {
	_, ok := fieldTypes[t]
	return ok
}

// Validate enforces the schema invariants: a non-empty title, at least one
// field, unique non-empty field IDs, known field types, and non-empty options
// on every select field.
func (s FormSchema) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("model: form schema requires a title")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("model: form schema %q has no fields", s.Title)
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for i, field := range s.Fields {
		id := strings.TrimSpace(field.ID)
		if id == "" {
			return fmt.Errorf("model: field %d is missing an id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("model: duplicate field id %q", id)
		}
		seen[id] = struct{}{}

		if !KnownFieldType(field.Type) {
			return fmt.Errorf("model: field %q has unknown type %q", id, field.Type)
		}
		if field.Type == FieldTypeSelect && len(field.Options) == 0 {
			return fmt.Errorf("model: select field %q requires options", id)
		}
	}
	return nil
}

// Validate enforces the clarification invariant: at least one question.
func (c ClarificationRequest) Validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("model: clarification request carries no questions")
	}
	for i, q := range c.Questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("model: clarification question %d is empty", i)
		}
	}
	return nil
}

// Field returns the definition with the given ID, if present.
func (s FormSchema) Field(id string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDefinition{}, false
}
