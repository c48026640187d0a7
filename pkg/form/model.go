package form

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Model owns the field values and submission status of one mounted form.
// All methods are safe for concurrent use; each event is applied atomically
// in the order it acquires the Model.
type Model struct {
	mu       sync.Mutex
	gateway  Gateway
	log      logr.Logger
	fields   map[string]string
	status   Status
	message  string
	inflight *Submission

	observers []observer
	nextID    int
	queue     []Snapshot
	draining  bool
}

type observer struct {
	id int
	fn func(Snapshot)
}

// New constructs a Model in the idle state with every field empty.
func New(gateway Gateway, options ...Option) *Model {
	cfg := config{log: logr.Discard()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if gateway == nil {
		gateway = GatewayFunc(func(context.Context, map[string]string) error {
			return Fail("form: no gateway configured")
		})
	}

	m := &Model{
		gateway: gateway,
		log:     cfg.log,
		fields:  make(map[string]string, len(cfg.fields)),
		status:  StatusIdle,
	}
	for _, name := range cfg.fields {
		if name != "" {
			m.fields[name] = ""
		}
	}
	for _, fn := range cfg.observers {
		m.observers = append(m.observers, observer{id: m.nextID, fn: fn})
		m.nextID++
	}
	return m
}

// SetField records value for name. A settled result (succeeded or failed) is
// cleared and the Model returns to idle. Edits made while pending are kept
// but never reach the in-flight gateway call. Empty names are ignored.
func (m *Model) SetField(name, value string) {
	if name == "" {
		m.log.V(1).Info("ignoring edit for unnamed field")
		return
	}

	m.mu.Lock()
	m.fields[name] = value
	if m.status.Settled() {
		m.log.V(1).Info("edit invalidated result", "field", name, "from", m.status.String())
		m.status = StatusIdle
		m.message = ""
	}
	m.enqueueLocked()
	m.mu.Unlock()

	m.flush()
}

// Submit starts a gateway call with a copy of the current field values and
// returns its handle with started set to true. While a call is already in
// flight, Submit returns that call's handle and false; the gateway is not
// invoked again.
//
// The gateway receives a context carrying ctx's values that is never
// cancelled: once pending, the call runs to completion.
func (m *Model) Submit(ctx context.Context) (sub *Submission, started bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()
	if m.status == StatusPending && m.inflight != nil {
		sub = m.inflight
		m.mu.Unlock()
		m.log.V(1).Info("submit ignored while pending")
		return sub, false
	}

	sub = newSubmission(cloneFields(m.fields))
	m.inflight = sub
	m.status = StatusPending
	m.message = ""
	m.enqueueLocked()
	m.mu.Unlock()

	m.log.V(1).Info("submission started", "fields", len(sub.fields))
	m.flush()

	go m.perform(context.WithoutCancel(ctx), sub)
	return sub, true
}

// State returns a snapshot of the current fields, status and message.
func (m *Model) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Observe registers fn to receive a snapshot after every state change. The
// returned func removes the observer. Snapshots are delivered in the order
// the changes were applied; fn may call back into the Model.
func (m *Model) Observe(fn func(Snapshot)) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.observers = append(m.observers, observer{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, obs := range m.observers {
			if obs.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

func (m *Model) perform(ctx context.Context, sub *Submission) {
	err := m.invoke(ctx, sub.fields)

	m.mu.Lock()
	if err != nil {
		m.status = StatusFailed
		m.message = FailureReason(err)
	} else {
		m.status = StatusSucceeded
		m.message = SuccessMessage
	}
	m.inflight = nil
	result := m.snapshotLocked()
	m.queue = append(m.queue, result)
	m.mu.Unlock()

	if err != nil {
		m.log.Info("submission failed", "reason", result.Message)
	} else {
		m.log.V(1).Info("submission succeeded")
	}

	m.flush()
	sub.finish(result)
}

func (m *Model) invoke(ctx context.Context, fields map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("form: gateway panic: %v", r)
			m.log.Error(err, "gateway panicked")
		}
	}()
	return m.gateway.Perform(ctx, fields)
}

func (m *Model) snapshotLocked() Snapshot {
	return Snapshot{
		Fields:  cloneFields(m.fields),
		Status:  m.status,
		Message: m.message,
	}
}

func (m *Model) enqueueLocked() {
	if len(m.observers) == 0 {
		return
	}
	m.queue = append(m.queue, m.snapshotLocked())
}

// flush delivers queued snapshots. Only one goroutine drains at a time so
// observers see changes in order; re-entrant events are appended and picked
// up by the active drain.
func (m *Model) flush() {
	m.mu.Lock()
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.draining = true
	for len(m.queue) > 0 {
		snap := m.queue[0]
		m.queue = m.queue[1:]
		observers := append([]observer(nil), m.observers...)
		m.mu.Unlock()
		for _, obs := range observers {
			obs.fn(snap)
		}
		m.mu.Lock()
	}
	m.queue = nil
	m.draining = false
	m.mu.Unlock()
}
