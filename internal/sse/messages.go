package sse

// Event is one named frame pushed to a client.
type Event struct {
	Name string
	Data any
}

// Outcome is the terminal state of a push connection. Every Conn
// implementation reports exactly one outcome when it dies, and every outcome
// routes into the cleanup cascade.
type Outcome int

const (
	OutcomeComplete Outcome = iota
	OutcomeTimeout
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeError:
		return "error"
	}
	return "unknown"
}
