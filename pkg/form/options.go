package form

import "github.com/go-logr/logr"

// Option configures a Model.
type Option func(*config)

type config struct {
	log       logr.Logger
	fields    []string
	observers []func(Snapshot)
}

// WithLogger routes lifecycle logs to log. Field values are never logged.
func WithLogger(log logr.Logger) Option {
	return func(cfg *config) {
		cfg.log = log
	}
}

// WithFields seeds the Model with empty values for the named fields so
// snapshots list every field before the first edit.
func WithFields(names ...string) Option {
	return func(cfg *config) {
		cfg.fields = append(cfg.fields, names...)
	}
}

// WithObserver registers fn as if Observe had been called right after New.
func WithObserver(fn func(Snapshot)) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.observers = append(cfg.observers, fn)
		}
	}
}
