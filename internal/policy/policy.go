// Package policy holds the single table deciding which roles may perform
// which actions.
package policy

import (
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

type Action string

const (
	TripsListAll         Action = "trips.list_all"
	TripsManage          Action = "trips.manage"
	DeparturesListAll    Action = "departures.list_all"
	DeparturesManage     Action = "departures.manage"
	DestinationsManage   Action = "destinations.manage"
	BookingsListAll      Action = "bookings.list_all"
	BookingsUpdateStatus Action = "bookings.update_status"
	BookingsActOnAny     Action = "bookings.act_on_any"
	PaymentsCreateAny    Action = "payments.create_any"
	PaymentsListAll      Action = "payments.list_all"
	PaymentsConfirm      Action = "payments.confirm"
	CustomersRead        Action = "customers.read"
	UsersManage          Action = "users.manage"
	ReportsRead          Action = "reports.read"
	SettingsManage       Action = "settings.manage"
)

var (
	staff   = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleAgent}
	admins  = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}
	finance = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleFinance}
)

var table = map[Action][]domain.Role{
	TripsListAll:         staff,
	TripsManage:          admins,
	DeparturesListAll:    staff,
	DeparturesManage:     admins,
	DestinationsManage:   admins,
	BookingsListAll:      staff,
	BookingsUpdateStatus: staff,
	BookingsActOnAny:     staff,
	PaymentsCreateAny:    {domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleAgent, domain.RoleFinance},
	PaymentsListAll:      finance,
	PaymentsConfirm:      finance,
	CustomersRead:        staff,
	UsersManage:          {domain.RoleSuperAdmin},
	ReportsRead:          finance,
	SettingsManage:       admins,
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role domain.Role, action Action) bool {
	for _, r := range table[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   domain.Role
}

// CanActOn reports whether the actor owns the resource or holds the
// override action.
func (a Actor) CanActOn(ownerID uuid.UUID, override Action) bool {
	return a.UserID == ownerID || Allowed(a.Role, override)
}
