// Package booking provides the reservation status state machine.
package booking

import (
	"fmt"

	"github.com/ByeongIn-K/goat-server/internal/models"
)

// FSM answers which booking status transitions are allowed.
//
// rejected and cancelled are terminal. Re-applying a status to itself is not
// a listed transition; the application layer performs owner confirmations
// unconditionally and uses the FSM only where callers want to guard.
type FSM struct {
	transitions map[string][]string
}

// NewFSM creates the state machine with the reservation lifecycle.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[string][]string{
			models.StatusPending:   {models.StatusConfirmed, models.StatusRejected, models.StatusCancelled},
			models.StatusConfirmed: {models.StatusCancelled},
			models.StatusRejected:  {},
			models.StatusCancelled: {},
		},
	}
}

// CanTransition checks if moving from one status to another is allowed.
func (f *FSM) CanTransition(from, to string) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no outgoing transitions.
func (f *FSM) IsTerminal(status string) bool {
	allowed, ok := f.transitions[status]
	return ok && len(allowed) == 0
}

// Guard returns an error describing why a transition is not allowed, or nil.
func (f *FSM) Guard(from, to string) error {
	if f.CanTransition(from, to) {
		return nil
	}
	if f.IsTerminal(from) {
		return fmt.Errorf("booking status %q is terminal", from)
	}
	return fmt.Errorf("transition %s -> %s is not allowed", from, to)
}

// IsValidStatus reports whether s names a known booking status.
func IsValidStatus(s string) bool {
	switch s {
	case models.StatusPending, models.StatusConfirmed, models.StatusRejected, models.StatusCancelled:
		return true
	}
	return false
}
