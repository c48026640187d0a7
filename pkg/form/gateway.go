package form

import (
	"context"
	"errors"
	"strings"
)

// Gateway performs the remote operation behind a submission. A nil error
// resolves the submission; any error rejects it. Implementations receive a
// private copy of the field values captured when Submit was called.
type Gateway interface {
	Perform(ctx context.Context, fields map[string]string) error
}

// GatewayFunc adapts a plain function to the Gateway interface.
type GatewayFunc func(ctx context.Context, fields map[string]string) error

// Perform calls fn.
func (fn GatewayFunc) Perform(ctx context.Context, fields map[string]string) error {
	return fn(ctx, fields)
}

// SubmissionFailure is the reason a gateway gives when it rejects a
// submission. The reason is shown verbatim in the result region.
type SubmissionFailure struct {
	Reason string
}

// Fail constructs a SubmissionFailure for reason.
func Fail(reason string) error {
	return &SubmissionFailure{Reason: reason}
}

func (e *SubmissionFailure) Error() string {
	return e.Reason
}

// FailureReason extracts the human readable reason from a gateway error.
// Errors wrapping a SubmissionFailure yield its Reason; anything else yields
// err.Error(). Blank reasons fall back to DefaultFailureMessage.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	reason := err.Error()
	var failure *SubmissionFailure
	if errors.As(err, &failure) {
		reason = failure.Reason
	}
	if strings.TrimSpace(reason) == "" {
		return DefaultFailureMessage
	}
	return reason
}
