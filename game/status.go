package game

// Status is the load status of the current setup request.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusResolved
	StatusRejected
)

// String returns the protocol string for a Status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func (s Status) IsIdle() bool     { return s == StatusIdle }
func (s Status) IsPending() bool  { return s == StatusPending }
func (s Status) IsResolved() bool { return s == StatusResolved }
func (s Status) IsRejected() bool { return s == StatusRejected }

// Loading is true until the first setup either resolves or is rejected.
func (s Status) Loading() bool {
	return s == StatusIdle || s == StatusPending
}
