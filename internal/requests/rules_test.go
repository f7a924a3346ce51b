package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradematch/tradematch-be/internal/domain"
)

func TestCanAct(t *testing.T) {
	tests := []struct {
		name   string
		origin domain.Origin
		action Action
		role   Role
		want   bool
	}{
		// accept: only the counterparty may answer
		{
			name:   "contractor accepts a subcontractor application",
			origin: domain.OriginSub,
			action: ActionAccept,
			role:   RoleContractor,
			want:   true,
		},
		{
			name:   "subcontractor cannot accept their own application",
			origin: domain.OriginSub,
			action: ActionAccept,
			role:   RoleSubcontractor,
			want:   false,
		},
		{
			name:   "subcontractor accepts a contractor invite",
			origin: domain.OriginContractor,
			action: ActionAccept,
			role:   RoleSubcontractor,
			want:   true,
		},
		{
			name:   "contractor cannot accept their own invite",
			origin: domain.OriginContractor,
			action: ActionAccept,
			role:   RoleContractor,
			want:   false,
		},

		// deny: counterparty always; contractor may also retract their invite
		{
			name:   "contractor denies a subcontractor application",
			origin: domain.OriginSub,
			action: ActionDeny,
			role:   RoleContractor,
			want:   true,
		},
		{
			name:   "subcontractor cannot deny their own application",
			origin: domain.OriginSub,
			action: ActionDeny,
			role:   RoleSubcontractor,
			want:   false,
		},
		{
			name:   "subcontractor declines a contractor invite",
			origin: domain.OriginContractor,
			action: ActionDeny,
			role:   RoleSubcontractor,
			want:   true,
		},
		{
			name:   "contractor retracts their own invite",
			origin: domain.OriginContractor,
			action: ActionDeny,
			role:   RoleContractor,
			want:   true,
		},

		// withdraw: only the applying subcontractor
		{
			name:   "subcontractor withdraws their application",
			origin: domain.OriginSub,
			action: ActionWithdraw,
			role:   RoleSubcontractor,
			want:   true,
		},
		{
			name:   "contractor cannot withdraw a subcontractor application",
			origin: domain.OriginSub,
			action: ActionWithdraw,
			role:   RoleContractor,
			want:   false,
		},
		{
			name:   "nobody withdraws a contractor invite",
			origin: domain.OriginContractor,
			action: ActionWithdraw,
			role:   RoleSubcontractor,
			want:   false,
		},
		{
			name:   "contractor cannot withdraw their own invite",
			origin: domain.OriginContractor,
			action: ActionWithdraw,
			role:   RoleContractor,
			want:   false,
		},

		{
			name:   "unknown action is rejected",
			origin: domain.OriginSub,
			action: Action("approve"),
			role:   RoleContractor,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanAct(tt.origin, tt.action, tt.role)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDenyOutcome(t *testing.T) {
	tests := []struct {
		name   string
		origin domain.Origin
		role   Role
		want   domain.RequestStatus
	}{
		{
			name:   "contractor retracting own invite records cancelled",
			origin: domain.OriginContractor,
			role:   RoleContractor,
			want:   domain.RequestCancelled,
		},
		{
			name:   "subcontractor declining an invite records denied",
			origin: domain.OriginContractor,
			role:   RoleSubcontractor,
			want:   domain.RequestDenied,
		},
		{
			name:   "contractor denying an application records denied",
			origin: domain.OriginSub,
			role:   RoleContractor,
			want:   domain.RequestDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DenyOutcome(tt.origin, tt.role)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestStatusTerminal(t *testing.T) {
	assert.False(t, domain.RequestPending.Terminal())

	terminal := []domain.RequestStatus{
		domain.RequestAccepted,
		domain.RequestDenied,
		domain.RequestCancelled,
		domain.RequestWithdrawn,
		domain.RequestExpired,
	}
	for _, status := range terminal {
		assert.True(t, status.Terminal(), "status %s should be terminal", status)
	}
}
