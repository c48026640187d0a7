package testsupport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-loginform/pkg/form"
)

// SettleTimeout bounds how long helpers wait for asynchronous outcomes.
const SettleTimeout = 2 * time.Second

// Gateway is a form.Gateway whose calls block until the test resolves or
// rejects them, letting tests observe the pending window deterministically.
type Gateway struct {
	mu    sync.Mutex
	calls []map[string]string

	started  chan map[string]string
	outcomes chan error
}

var _ form.Gateway = (*Gateway)(nil)

// NewGateway returns a Gateway with no scripted outcomes.
func NewGateway() *Gateway {
	return &Gateway{
		started:  make(chan map[string]string, 16),
		outcomes: make(chan error),
	}
}

// Perform records the call and blocks until Resolve or Reject is called.
func (g *Gateway) Perform(ctx context.Context, fields map[string]string) error {
	g.mu.Lock()
	g.calls = append(g.calls, fields)
	g.mu.Unlock()

	g.started <- fields
	select {
	case err := <-g.outcomes:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resolve settles the oldest blocked call successfully.
func (g *Gateway) Resolve(t *testing.T) {
	t.Helper()
	g.settle(t, nil)
}

// Reject settles the oldest blocked call with reason.
func (g *Gateway) Reject(t *testing.T, reason string) {
	t.Helper()
	g.settle(t, form.Fail(reason))
}

// AwaitCall waits for the next call to reach the gateway and returns the
// fields it received.
func (g *Gateway) AwaitCall(t *testing.T) map[string]string {
	t.Helper()
	select {
	case fields := <-g.started:
		return fields
	case <-time.After(SettleTimeout):
		t.Fatalf("gateway was not called within %s", SettleTimeout)
		return nil
	}
}

// Calls returns how many times Perform has been invoked.
func (g *Gateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *Gateway) settle(t *testing.T, err error) {
	t.Helper()
	select {
	case g.outcomes <- err:
	case <-time.After(SettleTimeout):
		t.Fatalf("no gateway call waiting to settle")
	}
}

// MustSettle waits for sub to settle and returns the resulting snapshot.
func MustSettle(t *testing.T, sub *form.Submission) form.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), SettleTimeout)
	defer cancel()
	snap, err := sub.Wait(ctx)
	if err != nil {
		t.Fatalf("wait for submission: %v", err)
	}
	return snap
}
