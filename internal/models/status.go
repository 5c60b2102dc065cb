package models

// Status is the lifecycle state of a catalog record. Soft deletion is
// modelled as a transition to StatusInactive; the row is never removed.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// CanTransitionTo reports whether the transition from s to next is allowed.
// The only permitted transition is active -> inactive; there is no undelete.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusActive && next == StatusInactive
}
