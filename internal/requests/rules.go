// Package requests implements the job-request state machine between a
// contractor and a subcontractor for a specific post.
//
// Valid status graph:
//
//	pending ──► accepted | denied | cancelled | withdrawn | expired
//
// Every status except pending is terminal. Terminal-non-accepted records can
// be revived back to pending by either party's entry point; the
// (post, subcontractor) uniqueness constraint guarantees a single slot.
package requests

import "github.com/tradematch/tradematch-be/internal/domain"

// Action identifies a party-driven operation on a pending request.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionDeny     Action = "deny"
	ActionWithdraw Action = "withdraw"
)

// Role is the actor's relationship to the request.
type Role string

const (
	RoleContractor    Role = "contractor"
	RoleSubcontractor Role = "sub"
)

// CanAct decides whether a role may perform an action given the request's
// origin. Authorization is origin-dependent: the party that did not open the
// request is the one entitled to answer it, except denial of a contractor
// invite, which either side may issue.
func CanAct(origin domain.Origin, action Action, role Role) bool {
	switch action {
	case ActionAccept:
		if origin == domain.OriginSub {
			return role == RoleContractor
		}
		return role == RoleSubcontractor

	case ActionDeny:
		if origin == domain.OriginSub {
			return role == RoleContractor
		}
		return true

	case ActionWithdraw:
		// Only the subcontractor who applied can withdraw their own request.
		return origin == domain.OriginSub && role == RoleSubcontractor
	}

	return false
}

// DenyOutcome maps a denial to its resulting status. A contractor retracting
// their own invite records as cancelled ("I withdrew my offer"); the
// subcontractor declining records as denied ("they rejected it"). The
// asymmetry is intentional and preserved.
func DenyOutcome(origin domain.Origin, role Role) domain.RequestStatus {
	if origin == domain.OriginContractor && role == RoleContractor {
		return domain.RequestCancelled
	}
	return domain.RequestDenied
}
