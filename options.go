package loginform

import (
	"github.com/go-logr/logr"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-loginform/pkg/form"
	"github.com/goliatone/go-loginform/pkg/renderers/vanilla"
)

// Option configures Mount.
type Option func(*config)

type config struct {
	log             logr.Logger
	rendererOptions []vanilla.Option
	observers       []func(form.Snapshot)
	selector        theme.ThemeSelector
	themeName       string
	themeVariant    string
}

// WithLogger routes mount and model logs to log.
func WithLogger(log logr.Logger) Option {
	return func(cfg *config) {
		cfg.log = log
	}
}

// WithRendererOptions forwards options to the vanilla renderer.
func WithRendererOptions(options ...vanilla.Option) Option {
	return func(cfg *config) {
		cfg.rendererOptions = append(cfg.rendererOptions, options...)
	}
}

// WithObserver registers fn on the mounted Model before any event occurs.
func WithObserver(fn func(form.Snapshot)) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.observers = append(cfg.observers, fn)
		}
	}
}

// WithThemeSelector resolves name and variant through selector at mount time
// and exposes the selected manifest's tokens on the rendered form.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.selector = selector
		cfg.themeName = name
		cfg.themeVariant = variant
	}
}
