package render

import (
	"context"

	"github.com/promptform/promptform/pkg/model"
)

// Renderer converts a FormSchema into a byte representation (HTML for the
// web surface, serialized answers for the terminal renderer, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, schema model.FormSchema, options Options) ([]byte, error)
}

// Options carry per-session data renderers use to customise their output
// without mutating the schema pipeline.
type Options struct {
	// Action is the URL the rendered form posts to. Renderers that do not
	// submit anywhere (terminal sessions) ignore it.
	Action string
	// Values pre-populates rendered controls from the session's answer map,
	// keyed by field ID.
	Values model.AnswerMap
	// Errors surfaces validation feedback keyed by field ID. Renderers map
	// these into inline messages next to the offending control; they never
	// run validation themselves.
	Errors model.ErrorMap
}
