package policy

import (
	"testing"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		role   domain.Role
		action Action
		want   bool
	}{
		{domain.RoleAgent, BookingsUpdateStatus, true},
		{domain.RoleAgent, TripsManage, false},
		{domain.RoleFinance, PaymentsConfirm, true},
		{domain.RoleFinance, BookingsActOnAny, false},
		{domain.RoleFinance, PaymentsCreateAny, true},
		{domain.RoleAdmin, UsersManage, false},
		{domain.RoleSuperAdmin, UsersManage, true},
		{domain.RoleCustomer, ReportsRead, false},
		{domain.RoleSuperAdmin, Action("unknown"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Allowed(tc.role, tc.action), "%s %s", tc.role, tc.action)
	}
}

func TestActor_CanActOn(t *testing.T) {
	owner := uuid.New()

	assert.True(t, Actor{UserID: owner, Role: domain.RoleCustomer}.CanActOn(owner, BookingsActOnAny))
	assert.False(t, Actor{UserID: uuid.New(), Role: domain.RoleCustomer}.CanActOn(owner, BookingsActOnAny))
	assert.True(t, Actor{UserID: uuid.New(), Role: domain.RoleAgent}.CanActOn(owner, BookingsActOnAny))
}
