package gateway

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"
)

// resultContract is the wire contract for Generation Result envelopes,
// expressed as an OpenAPI schema so provider output is checked structurally
// before any of it reaches the core.
var resultContract = buildResultContract()

func buildResultContract() *openapi3.Schema {
	fieldSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("label", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema().WithEnum(
			"text", "email", "tel", "number", "select", "textarea",
		)).
		WithProperty("placeholder", openapi3.NewStringSchema()).
		WithProperty("required", openapi3.NewBoolSchema()).
		WithProperty("validation", openapi3.NewObjectSchema().
			WithProperty("pattern", openapi3.NewStringSchema()).
			WithProperty("message", openapi3.NewStringSchema())).
		WithProperty("options", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	fieldSchema.Required = []string{"id", "label", "type"}

	formVariant := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema().WithEnum("form")).
		WithProperty("title", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("fields", openapi3.NewArraySchema().WithMinItems(1).WithItems(fieldSchema))
	formVariant.Required = []string{"type", "title", "fields"}

	clarificationVariant := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema().WithEnum("clarification")).
		WithProperty("contradiction", openapi3.NewStringSchema()).
		WithProperty("questions", openapi3.NewArraySchema().WithMinItems(1).WithItems(openapi3.NewStringSchema().WithMinLength(1)))
	clarificationVariant.Required = []string{"type", "questions"}

	return openapi3.NewOneOfSchema(formVariant, clarificationVariant)
}

// checkContract validates raw provider output against the wire contract.
func checkContract(raw []byte) error {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	if err := resultContract.VisitJSON(decoded); err != nil {
		return fmt.Errorf("contract violation: %w", err)
	}
	return nil
}
