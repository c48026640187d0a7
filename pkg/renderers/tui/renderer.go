package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/go-logr/logr"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-loginform/pkg/definition"
	"github.com/goliatone/go-loginform/pkg/form"
)

// Renderer drives a form model from a terminal session: it prompts for each
// field, submits, and reports the settled result.
type Renderer struct {
	driver       PromptDriver
	stdio        *terminal.Stdio
	outputFormat OutputFormat
	theme        Theme
	log          logr.Logger
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		log:          logr.Discard(),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.stdio)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Result.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Run prompts for every field of def, recording each answer on model, then
// submits and waits for the result. Password fields are read without echo.
// The settled snapshot is returned and its message printed with the theme's
// info or error prefix.
func (r *Renderer) Run(ctx context.Context, def definition.Definition, model *form.Model) (form.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return form.Snapshot{}, err
	}
	if model == nil {
		return form.Snapshot{}, ErrNoModel
	}

	if hint := plainText(def.Hint); hint != "" {
		if err := r.driver.Info(ctx, hint); err != nil {
			return form.Snapshot{}, err
		}
	}

	current := model.State()
	for _, field := range def.Fields {
		value, err := r.prompt(ctx, field, current.Value(field.Name))
		if err != nil {
			r.log.V(1).Info("prompt stopped", "field", field.Name, "error", err.Error())
			return model.State(), err
		}
		model.SetField(field.Name, value)
	}

	sub, started := model.Submit(ctx)
	if !started {
		r.log.V(1).Info("joined in-flight submission")
	}
	result, err := sub.Wait(ctx)
	if err != nil {
		return model.State(), err
	}

	return result, r.report(ctx, result)
}

// Result serializes the outcome of a settled snapshot using the configured
// output format. Masked field values are left out.
func (r *Renderer) Result(def definition.Definition, state form.Snapshot) ([]byte, error) {
	values := map[string]string{
		"status":  state.Status.String(),
		"message": state.Message,
	}
	fields := make(map[string]string, len(def.Fields))
	for _, field := range def.Fields {
		if field.Masked() {
			continue
		}
		fields[field.Name] = state.Value(field.Name)
	}

	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values, fields)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values, fields)), nil
	default:
		return json.Marshal(struct {
			Status  string            `json:"status"`
			Message string            `json:"message,omitempty"`
			Fields  map[string]string `json:"fields,omitempty"`
		}{
			Status:  values["status"],
			Message: values["message"],
			Fields:  fields,
		})
	}
}

func (r *Renderer) prompt(ctx context.Context, field definition.Field, current string) (string, error) {
	cfg := InputConfig{
		Message: r.theme.PromptPrefix + field.Label,
		Help:    field.Placeholder,
	}
	if field.Masked() {
		return r.driver.Password(ctx, cfg)
	}
	cfg.Default = current
	return r.driver.Input(ctx, cfg)
}

func (r *Renderer) report(ctx context.Context, state form.Snapshot) error {
	if state.Message == "" {
		return nil
	}
	prefix := r.theme.InfoPrefix
	if state.Status == form.StatusFailed {
		prefix = r.theme.ErrorPrefix
	}
	return r.driver.Info(ctx, prefix+state.Message)
}

var (
	hintPolicyOnce sync.Once
	hintPolicy     *bluemonday.Policy
)

// plainText strips hint markup down to the text a terminal can show.
func plainText(markup string) string {
	hintPolicyOnce.Do(func() {
		hintPolicy = bluemonday.StrictPolicy()
	})
	stripped := hintPolicy.Sanitize(strings.TrimSpace(markup))
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}

func flattenForm(values, fields map[string]string) string {
	flattened := url.Values{}
	for key, value := range values {
		flattened.Set(key, value)
	}
	for key, value := range fields {
		flattened.Set("fields."+key, value)
	}
	return flattened.Encode()
}

func prettyPrint(values, fields map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "status=%s\n", values["status"])
	if values["message"] != "" {
		fmt.Fprintf(&b, "message=%s\n", values["message"])
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "fields.%s=%s\n", name, fields[name])
	}
	return b.String()
}
