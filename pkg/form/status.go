package form

// Status enumerates the submission lifecycle states.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

const (
	// SuccessMessage is the message stored after the gateway resolves.
	SuccessMessage = "Success"
	// DefaultFailureMessage replaces blank rejection reasons so a failed
	// status always carries a message.
	DefaultFailureMessage = "Submission failed"
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Settled reports whether the status carries a result message.
func (s Status) Settled() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Snapshot is a point-in-time copy of a Model. Message is empty unless Status
// is StatusSucceeded or StatusFailed.
type Snapshot struct {
	Fields  map[string]string
	Status  Status
	Message string
}

// Value returns the recorded value for name, or "" when unset.
func (s Snapshot) Value(name string) string {
	return s.Fields[name]
}

func cloneFields(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
