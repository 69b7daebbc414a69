// Package vanilla renders a FormSchema as plain dependency-free HTML. The
// page shell is a pongo2 template; per-field control markup is built directly
// so widget rendering stays deterministic and easy to test.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/promptform/promptform/pkg/model"
	"github.com/promptform/promptform/pkg/render"
)

type Option func(*config)

type config struct {
	templateFS fs.FS
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

type Renderer struct {
	mu        sync.Mutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	sanitizer *bluemonday.Policy
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	return &Renderer{
		set:       pongo2.NewSet("promptform", pongo2.NewFSLoader(cfg.templateFS)),
		templates: make(map[string]*pongo2.Template),
		// Schema text arrives from the generation gateway, so every label,
		// title and placeholder is stripped of markup before it reaches the
		// page.
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces one control per field definition in declared order, wrapped
// in the page shell template. Values and Errors from the options prefill
// controls and surface inline messages; no validation happens here.
func (r *Renderer) Render(_ context.Context, schema model.FormSchema, opts render.Options) ([]byte, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	controls := newFieldRenderer(r.sanitizer)
	for _, field := range schema.Fields {
		controls.renderField(field, opts.Values[field.ID], opts.Errors[field.ID])
	}

	tmpl, err := r.template("templates/form.tmpl")
	if err != nil {
		return nil, err
	}

	out, err := tmpl.Execute(pongo2.Context{
		"title":       r.sanitizer.Sanitize(schema.Title),
		"description": r.sanitizer.Sanitize(schema.Description),
		"action":      opts.Action,
		"controls":    controls.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: execute template: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) template(path string) (*pongo2.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: load template %q: %w", path, err)
	}
	r.templates[path] = tmpl
	return tmpl, nil
}
