// Package loginform mounts a login form: a form.Model that owns the
// submission lifecycle, bound to an HTML rendering that can be queried the
// way a user perceives it.
package loginform

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/goliatone/go-loginform/pkg/definition"
	"github.com/goliatone/go-loginform/pkg/form"
	"github.com/goliatone/go-loginform/pkg/query"
	"github.com/goliatone/go-loginform/pkg/renderers/vanilla"
)

// ErrUnmounted is returned by events delivered after Unmount.
var ErrUnmounted = errors.New("loginform: form is unmounted")

// Form is a mounted form. Its Model lives until Unmount.
type Form struct {
	def      definition.Definition
	model    *form.Model
	renderer *vanilla.Renderer
	log      logr.Logger

	mu        sync.RWMutex
	unmounted bool
}

// Mount creates the Model for def, seeded with an empty value per field, and
// the renderer that displays it.
func Mount(def definition.Definition, gateway form.Gateway, options ...Option) (*Form, error) {
	cfg := config{log: logr.Discard()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	normalized, err := definition.Normalize(def)
	if err != nil {
		return nil, fmt.Errorf("loginform: mount: %w", err)
	}

	rendererOptions := append([]vanilla.Option(nil), cfg.rendererOptions...)
	if cfg.selector != nil {
		selection, err := cfg.selector.Select(cfg.themeName, cfg.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("loginform: select theme %q: %w", cfg.themeName, err)
		}
		if selection != nil && selection.Manifest != nil {
			rendererOptions = append(rendererOptions, vanilla.WithTheme(selection.Manifest, selection.Variant))
		}
	}

	renderer, err := vanilla.New(rendererOptions...)
	if err != nil {
		return nil, fmt.Errorf("loginform: mount: %w", err)
	}

	modelOptions := []form.Option{
		form.WithLogger(cfg.log.WithName("model")),
		form.WithFields(normalized.FieldNames()...),
	}
	for _, fn := range cfg.observers {
		modelOptions = append(modelOptions, form.WithObserver(fn))
	}

	cfg.log.V(1).Info("form mounted", "id", normalized.ID, "fields", len(normalized.Fields))
	return &Form{
		def:      normalized,
		model:    form.New(gateway, modelOptions...),
		renderer: renderer,
		log:      cfg.log,
	}, nil
}

// Type finds the control labelled label on the current rendering and records
// value for the field it edits.
func (f *Form) Type(ctx context.Context, label, value string) error {
	screen, err := f.Screen(ctx)
	if err != nil {
		return err
	}
	control, err := screen.Get(query.ByLabelText(label))
	if err != nil {
		return fmt.Errorf("loginform: type into %q: %w", label, err)
	}
	name, _ := control.Attr("name")
	if name == "" {
		return fmt.Errorf("loginform: control labelled %q has no field name", label)
	}
	f.model.SetField(name, value)
	return nil
}

// Submit activates the submit control. While a submission is pending the
// in-flight handle is returned with started set to false.
func (f *Form) Submit(ctx context.Context) (sub *form.Submission, started bool, err error) {
	if err := f.live(); err != nil {
		return nil, false, err
	}
	sub, started = f.model.Submit(ctx)
	return sub, started, nil
}

// State returns the current Model snapshot.
func (f *Form) State() form.Snapshot {
	return f.model.State()
}

// Render returns the HTML fragment for the current state.
func (f *Form) Render(ctx context.Context) ([]byte, error) {
	if err := f.live(); err != nil {
		return nil, err
	}
	return f.renderer.Render(ctx, f.def, f.model.State())
}

// RenderPage returns a standalone HTML document for the current state.
func (f *Form) RenderPage(ctx context.Context, title string) ([]byte, error) {
	if err := f.live(); err != nil {
		return nil, err
	}
	return f.renderer.RenderPage(ctx, title, f.def, f.model.State())
}

// Screen renders the current state and parses it for querying.
func (f *Form) Screen(ctx context.Context) (*query.Screen, error) {
	out, err := f.Render(ctx)
	if err != nil {
		return nil, err
	}
	return query.ParseBytes(out)
}

// Find re-renders until q matches, for elements that appear once a pending
// submission settles.
func (f *Form) Find(ctx context.Context, q query.Query, options ...query.FindOption) (*query.Element, error) {
	return query.Find(ctx, f.Screen, q, options...)
}

// Model exposes the underlying state machine.
func (f *Form) Model() *form.Model {
	return f.model
}

// Definition returns the normalized definition the form was mounted with.
func (f *Form) Definition() definition.Definition {
	return f.def
}

// Unmount discards the form. A pending gateway call still runs to completion
// but later events return ErrUnmounted.
func (f *Form) Unmount() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unmounted {
		return
	}
	f.unmounted = true
	f.log.V(1).Info("form unmounted", "id", f.def.ID)
}

func (f *Form) live() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.unmounted {
		return ErrUnmounted
	}
	return nil
}
