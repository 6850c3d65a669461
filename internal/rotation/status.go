package rotation

import "github.com/dukerupert/bagshot/internal/model"

// transitions is the single source of truth for assignment status changes.
// Pending is the only non-terminal state; there is no path out of Overdue,
// so an overdue occurrence cannot be closed through complete or skip.
var transitions = map[model.Status][]model.Status{
	model.StatusPending: {
		model.StatusCompleted,
		model.StatusSkipped,
		model.StatusOverdue,
	},
}

// CanTransition reports whether an assignment may move from one status to
// another.
func CanTransition(from, to model.Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(s model.Status) bool {
	return len(transitions[s]) == 0
}
