// Package gateway provides form.Gateway implementations: canned outcomes for
// demos and tests, simulated latency, a required-field guard and an HTTP
// client that posts the submitted fields to an endpoint.
package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-loginform/pkg/form"
)

// RequiredFieldMessage is the rejection reason produced by RequireFields.
const RequiredFieldMessage = "Required field missing"

// Resolve returns a gateway that always succeeds.
func Resolve() form.Gateway {
	return form.GatewayFunc(func(ctx context.Context, _ map[string]string) error {
		return ctx.Err()
	})
}

// Reject returns a gateway that always fails with reason.
func Reject(reason string) form.Gateway {
	return form.GatewayFunc(func(context.Context, map[string]string) error {
		return form.Fail(reason)
	})
}

// Delay waits d before delegating to next. The wait ends early when ctx is
// done, in which case the context error is returned.
func Delay(d time.Duration, next form.Gateway) form.Gateway {
	return form.GatewayFunc(func(ctx context.Context, fields map[string]string) error {
		if d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return next.Perform(ctx, fields)
	})
}

// RequireFields rejects submissions where any of names is blank and
// delegates everything else to next.
func RequireFields(next form.Gateway, names ...string) form.Gateway {
	return form.GatewayFunc(func(ctx context.Context, fields map[string]string) error {
		for _, name := range names {
			if strings.TrimSpace(fields[name]) == "" {
				return form.Fail(RequiredFieldMessage)
			}
		}
		return next.Perform(ctx, fields)
	})
}
