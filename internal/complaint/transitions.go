package complaint

import "urbaneye/backend/internal/models"

// transitions defines the forward edges of the status state machine.
// Resolved, Rejected and Closed are terminal.
var transitions = map[string][]string{
	models.StatusPending: {
		models.StatusInProgress,
		models.StatusResolved,
		models.StatusRejected,
		models.StatusClosed,
	},
	models.StatusInProgress: {
		models.StatusResolved,
		models.StatusRejected,
		models.StatusClosed,
	},
	models.StatusResolved: {},
	models.StatusRejected: {},
	models.StatusClosed:   {},
}

// CanTransition reports whether the state machine permits moving from one
// status to another. Re-asserting the current status is allowed so repeated
// admin actions stay idempotent.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
