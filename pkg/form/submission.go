package form

import (
	"context"
	"sync"
)

// Submission is the handle for one gateway call. It completes exactly once,
// when the gateway resolves or rejects.
type Submission struct {
	fields map[string]string
	done   chan struct{}

	mu     sync.Mutex
	result Snapshot
}

func newSubmission(fields map[string]string) *Submission {
	return &Submission{
		fields: fields,
		done:   make(chan struct{}),
	}
}

// Done is closed once the gateway call has settled.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Fields returns a copy of the values captured when the submission started.
func (s *Submission) Fields() map[string]string {
	return cloneFields(s.fields)
}

// Result returns the Model snapshot taken when the call settled and whether
// the call has settled yet.
func (s *Submission) Result() (Snapshot, bool) {
	select {
	case <-s.done:
	default:
		return Snapshot{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, true
}

// Wait blocks until the call settles or ctx is done. Giving up on the wait
// does not cancel the gateway call.
func (s *Submission) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-s.done:
		snap, _ := s.Result()
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (s *Submission) finish(result Snapshot) {
	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
	close(s.done)
}
