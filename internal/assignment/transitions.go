// Package assignment manages the Job lifecycle once a request is accepted.
//
// Valid status graph (contractor-driven):
//
//	accepted ──► in_progress ──► completed
//	    │             │
//	    └─────────────┴──► cancelled
//
// Time drives accepted→in_progress and in_progress→completed lazily: overdue
// records are advanced by a sweep at the top of every listing read.
package assignment

import "github.com/tradematch/tradematch-be/internal/domain"

// validTransitions lists every allowed contractor-driven (from → to) pair.
var validTransitions = map[domain.JobStatus][]domain.JobStatus{
	domain.JobAccepted:   {domain.JobInProgress, domain.JobCancelled},
	domain.JobInProgress: {domain.JobCompleted, domain.JobCancelled},
	// completed and cancelled are terminal, no outgoing transitions
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to domain.JobStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
