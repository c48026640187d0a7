package tui

import (
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/go-logr/logr"
)

// OutputFormat controls how a settled result is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling renderer logic to ANSI specifics.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithStdio points the default survey driver at the given terminal streams.
// It has no effect when WithPromptDriver supplies a driver.
func WithStdio(stdio terminal.Stdio) Option {
	return func(r *Renderer) {
		r.stdio = &stdio
	}
}

// WithOutputFormat selects the serialization format used by Result.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger routes session logs to log.
func WithLogger(log logr.Logger) Option {
	return func(r *Renderer) {
		r.log = log
	}
}
