// Package call drives one voice interview from the browser side: it starts
// the call through the action endpoint and folds provider events into a
// status, a speaking flag and a final transcript.
package call

// Status values are ordered. A session only ever moves to a later one.
type Status int

const (
	StatusInactive Status = iota
	StatusConnecting
	StatusActive
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "INACTIVE"
	case StatusConnecting:
		return "CONNECTING"
	case StatusActive:
		return "ACTIVE"
	case StatusFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}
