package query

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultFindTimeout bounds Find when no timeout option is given.
	DefaultFindTimeout = time.Second
	// DefaultFindInterval is the delay between Find attempts.
	DefaultFindInterval = 50 * time.Millisecond
)

// Loader produces the current screen, typically by re-rendering.
type Loader func(ctx context.Context) (*Screen, error)

// FindOption configures Find.
type FindOption func(*findConfig)

type findConfig struct {
	timeout  time.Duration
	interval time.Duration
}

// WithTimeout overrides how long Find keeps polling.
func WithTimeout(d time.Duration) FindOption {
	return func(cfg *findConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithInterval overrides the delay between attempts.
func WithInterval(d time.Duration) FindOption {
	return func(cfg *findConfig) {
		if d > 0 {
			cfg.interval = d
		}
	}
}

// Find loads the screen repeatedly until q matches exactly one element, the
// timeout elapses or ctx is done. Multiple matches fail immediately.
func Find(ctx context.Context, load Loader, q Query, options ...FindOption) (*Element, error) {
	if load == nil {
		return nil, errors.New("query: find requires a loader")
	}
	cfg := findConfig{timeout: DefaultFindTimeout, interval: DefaultFindInterval}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	var lastErr error
	for {
		screen, err := load(ctx)
		if err != nil {
			// keep the last query failure when the deadline interrupted the load
			if lastErr == nil || ctx.Err() == nil {
				lastErr = fmt.Errorf("query: load screen: %w", err)
			}
		} else {
			el, err := screen.Get(q)
			if err == nil {
				return el, nil
			}
			if errors.Is(err, ErrMultipleFound) {
				return nil, err
			}
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("query: find %s: %w (%v)", q, lastErr, ctx.Err())
		case <-ticker.C:
		}
	}
}
