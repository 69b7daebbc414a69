package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/promptform/promptform/pkg/model"
)

// FieldError reports a single field's validation failure. It is recoverable
// and rendered inline next to the field, never fatal.
type FieldError struct {
	FieldID string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation: field %q: %s", e.FieldID, e.Message)
}

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneShape = regexp.MustCompile(`^[\d\s\-()+]+$`)
)

// Field checks a candidate raw value against a field definition. It is a pure
// function: safe to call on every keystroke or only at submit time, same
// result both times.
//
// Rules apply in order and the first failure wins: required-empty, then the
// custom pattern, then the built-in type shape. A custom pattern fully
// supersedes the built-in email/phone checks; only one of the three can fire
// for a given field.
func Field(def model.FieldDefinition, raw string) error {
	trimmed := strings.TrimSpace(raw)

	if def.Required && trimmed == "" {
		return &FieldError{FieldID: def.ID, Message: def.Label + " is required"}
	}
	if trimmed == "" {
		return nil
	}

	if def.Validation != nil && def.Validation.Pattern != "" {
		return matchPattern(def, raw)
	}

	switch def.Type {
	case model.FieldTypeEmail:
		if !emailShape.MatchString(trimmed) {
			return &FieldError{FieldID: def.ID, Message: "Invalid email address"}
		}
	case model.FieldTypeTel:
		if !phoneShape.MatchString(trimmed) {
			return &FieldError{FieldID: def.ID, Message: "Invalid phone number"}
		}
	}
	return nil
}

func matchPattern(def model.FieldDefinition, raw string) error {
	re, err := regexp.Compile(wholeString(def.Validation.Pattern))
	if err != nil {
		// Schema text comes from the generation gateway; an uncompilable
		// pattern must not lock the respondent out, so the rule is skipped.
		return nil
	}
	if re.MatchString(raw) {
		return nil
	}

	message := def.Validation.Message
	if message == "" {
		message = "Invalid " + def.Label
	}
	return &FieldError{FieldID: def.ID, Message: message}
}

// wholeString anchors a pattern so the full value must match, matching how
// browser-native pattern attributes behave.
func wholeString(pattern string) string {
	return "^(?:" + pattern + ")$"
}
