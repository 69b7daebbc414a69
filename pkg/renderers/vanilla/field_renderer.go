package vanilla

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/promptform/promptform/pkg/model"
)

// fieldRenderer accumulates control markup for one render pass.
type fieldRenderer struct {
	builder   strings.Builder
	sanitizer *bluemonday.Policy
}

func newFieldRenderer(sanitizer *bluemonday.Policy) *fieldRenderer {
	return &fieldRenderer{sanitizer: sanitizer}
}

func (r *fieldRenderer) String() string {
	return r.builder.String()
}

// renderField emits the wrapper, label, control and inline error for a single
// field. Control mapping is deterministic: select -> choice widget populated
// from options, textarea -> multi-row text area, everything else -> a
// single-line input typed to match.
func (r *fieldRenderer) renderField(field model.FieldDefinition, value, errMsg string) {
	b := &r.builder

	b.WriteString(`<div class="promptform-field`)
	if errMsg != "" {
		b.WriteString(` promptform-field-invalid`)
	}
	b.WriteString(`" data-field="`)
	b.WriteString(html.EscapeString(field.ID))
	b.WriteString("\">\n")

	r.writeLabel(field)

	switch field.Type {
	case model.FieldTypeSelect:
		r.writeSelect(field, value, errMsg)
	case model.FieldTypeTextarea:
		r.writeTextarea(field, value, errMsg)
	default:
		r.writeInput(field, value, errMsg)
	}

	if errMsg != "" {
		b.WriteString(`  <p class="promptform-error" id="`)
		b.WriteString(html.EscapeString(field.ID))
		b.WriteString(`-error">`)
		b.WriteString(html.EscapeString(errMsg))
		b.WriteString("</p>\n")
	}

	b.WriteString("</div>\n")
}

func (r *fieldRenderer) writeLabel(field model.FieldDefinition) {
	b := &r.builder
	b.WriteString(`  <label for="`)
	b.WriteString(html.EscapeString(field.ID))
	b.WriteString(`">`)
	b.WriteString(r.clean(field.Label))
	if field.Required {
		b.WriteString(`<span class="promptform-required" aria-hidden="true">*</span>`)
	}
	b.WriteString("</label>\n")
}

func (r *fieldRenderer) writeInput(field model.FieldDefinition, value, errMsg string) {
	b := &r.builder
	b.WriteString(`  <input type="`)
	b.WriteString(inputType(field.Type))
	b.WriteString(`" id="`)
	b.WriteString(html.EscapeString(field.ID))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(field.ID))
	b.WriteString(`"`)
	if field.Placeholder != "" {
		b.WriteString(` placeholder="`)
		b.WriteString(r.clean(field.Placeholder))
		b.WriteString(`"`)
	}
	if value != "" {
		b.WriteString(` value="`)
		b.WriteString(html.EscapeString(value))
		b.WriteString(`"`)
	}
	r.writeCommonAttrs(field, errMsg)
	b.WriteString(" />\n")
}

func (r *fieldRenderer) writeTextarea(field model.FieldDefinition, value, errMsg string) {
	b := &r.builder
	b.WriteString(`  <textarea id="`)
	b.WriteString(html.EscapeString(field.ID))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(field.ID))
	b.WriteString(`" rows="4"`)
	if field.Placeholder != "" {
		b.WriteString(` placeholder="`)
		b.WriteString(r.clean(field.Placeholder))
		b.WriteString(`"`)
	}
	r.writeCommonAttrs(field, errMsg)
	b.WriteString(`>`)
	b.WriteString(html.EscapeString(value))
	b.WriteString("</textarea>\n")
}

func (r *fieldRenderer) writeSelect(field model.FieldDefinition, value, errMsg string) {
	b := &r.builder
	b.WriteString(`  <select id="`)
	b.WriteString(html.EscapeString(field.ID))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(field.ID))
	b.WriteString(`"`)
	r.writeCommonAttrs(field, errMsg)
	b.WriteString(">\n")

	b.WriteString(`    <option value="">`)
	if field.Placeholder != "" {
		b.WriteString(r.clean(field.Placeholder))
	} else {
		b.WriteString("Select an option")
	}
	b.WriteString("</option>\n")

	for _, option := range field.Options {
		b.WriteString(`    <option value="`)
		b.WriteString(html.EscapeString(option))
		b.WriteString(`"`)
		if option == value && value != "" {
			b.WriteString(` selected`)
		}
		b.WriteString(`>`)
		b.WriteString(r.clean(option))
		b.WriteString("</option>\n")
	}
	b.WriteString("  </select>\n")
}

func (r *fieldRenderer) writeCommonAttrs(field model.FieldDefinition, errMsg string) {
	b := &r.builder
	if field.Required {
		b.WriteString(` required`)
	}
	if errMsg != "" {
		b.WriteString(` aria-invalid="true" aria-describedby="`)
		b.WriteString(html.EscapeString(field.ID))
		b.WriteString(`-error"`)
	}
}

// clean strips markup from gateway-supplied text. The policy escapes what is
// left, so the output is safe for both body and attribute positions.
func (r *fieldRenderer) clean(text string) string {
	return r.sanitizer.Sanitize(text)
}

func inputType(t model.FieldType) string {
	switch t {
	case model.FieldTypeEmail:
		return "email"
	case model.FieldTypeTel:
		return "tel"
	case model.FieldTypeNumber:
		return "number"
	default:
		return "text"
	}
}
