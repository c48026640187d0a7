package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-loginform/pkg/definition"
	"github.com/goliatone/go-loginform/pkg/form"
)

type Option func(*config)

type config struct {
	templateFS   fs.FS
	manifest     *theme.Manifest
	variant      string
	stylesheet   string
	defaultStyle bool
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

// WithTheme exposes manifest tokens as CSS custom properties on the form.
// Tokens from the named variant override the base tokens.
func WithTheme(manifest *theme.Manifest, variant string) Option {
	return func(cfg *config) {
		cfg.manifest = manifest
		cfg.variant = variant
	}
}

// WithDefaultStyles inlines the bundled stylesheet into full-page renders.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.defaultStyle = true
	}
}

// Renderer turns a definition plus a model snapshot into accessible HTML.
type Renderer struct {
	form       *pongo2.Template
	page       *pongo2.Template
	style      string
	stylesheet string
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

	set := pongo2.NewSet("loginform", pongo2.NewFSLoader(cfg.templateFS))
	formTpl, err := set.FromFile(FormTemplate)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: load %s: %w", FormTemplate, err)
	}
	pageTpl, err := set.FromFile(PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: load %s: %w", PageTemplate, err)
	}

	r := &Renderer{
		form:  formTpl,
		page:  pageTpl,
		style: themeStyle(cfg.manifest, cfg.variant),
	}
	if cfg.defaultStyle {
		r.stylesheet = defaultStylesheet()
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form fragment for state. The result region is present
// only when the snapshot carries a settled message.
func (r *Renderer) Render(ctx context.Context, def definition.Definition, state form.Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil || r.form == nil {
		return nil, errors.New("vanilla renderer: template is nil")
	}

	out, err := r.form.ExecuteBytes(r.viewContext(def, state))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render form: %w", err)
	}
	return out, nil
}

// RenderPage wraps the form fragment in a standalone HTML document.
func (r *Renderer) RenderPage(ctx context.Context, title string, def definition.Definition, state form.Snapshot) ([]byte, error) {
	body, err := r.Render(ctx, def, state)
	if err != nil {
		return nil, err
	}
	out, err := r.page.ExecuteBytes(pongo2.Context{
		"title":      title,
		"stylesheet": r.stylesheet,
		"body":       string(body),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render page: %w", err)
	}
	return out, nil
}

func (r *Renderer) viewContext(def definition.Definition, state form.Snapshot) pongo2.Context {
	images := make([]map[string]any, 0, len(def.Images))
	for _, image := range def.Images {
		images = append(images, map[string]any{
			"src":    image.Src,
			"alt":    image.Alt,
			"title":  image.Title,
			"width":  image.Width,
			"height": image.Height,
		})
	}

	fields := make([]map[string]any, 0, len(def.Fields))
	for _, field := range def.Fields {
		value := ""
		if !field.Masked() {
			value = state.Value(field.Name)
		}
		fields = append(fields, map[string]any{
			"name":         field.Name,
			"label":        field.Label,
			"type":         string(field.Type),
			"placeholder":  field.Placeholder,
			"autocomplete": field.AutoComplete,
			"required":     field.Required,
			"value":        value,
		})
	}

	message := ""
	if state.Status.Settled() {
		message = state.Message
	}

	return pongo2.Context{
		"classes": chromeClasses(),
		"form": map[string]any{
			"id":      def.ID,
			"status":  state.Status.String(),
			"pending": state.Status == form.StatusPending,
			"style":   r.style,
		},
		"hint":    sanitizeHint(def.Hint),
		"images":  images,
		"fields":  fields,
		"submit":  def.SubmitLabel,
		"message": message,
	}
}
