package models

// ExtractionStatus is the text extraction state of a Document.
// Stored verbatim in documentos.status.
type ExtractionStatus string

const (
	StatusNotStarted ExtractionStatus = "NOT_STARTED"
	StatusRunning    ExtractionStatus = "RUNNING"
	StatusDone       ExtractionStatus = "DONE"
	StatusFailed     ExtractionStatus = "FAILED"
)

func (s ExtractionStatus) rank() int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusRunning:
		return 1
	case StatusDone, StatusFailed:
		return 2
	default:
		return -1
	}
}

func (s ExtractionStatus) Valid() bool {
	return s.rank() >= 0
}

// Terminal reports whether no further transition can leave s.
func (s ExtractionStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Predecessors lists the states from which s may be entered.
// RUNNING may be re-entered so a message redelivered after a crash resumes the work.
func (s ExtractionStatus) Predecessors() []ExtractionStatus {
	switch s {
	case StatusRunning:
		return []ExtractionStatus{StatusNotStarted, StatusRunning}
	case StatusDone, StatusFailed:
		return []ExtractionStatus{StatusRunning}
	default:
		return nil
	}
}

// CanTransitionTo reports whether s -> next is an edge of the state machine.
func (s ExtractionStatus) CanTransitionTo(next ExtractionStatus) bool {
	for _, p := range next.Predecessors() {
		if p == s {
			return true
		}
	}
	return false
}

// NotBefore reports whether s is at or after other in the forward order.
func (s ExtractionStatus) NotBefore(other ExtractionStatus) bool {
	return s.rank() >= other.rank()
}
