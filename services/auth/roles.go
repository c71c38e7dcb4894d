package auth

// Role is a provider_role value.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleDispatcher Role = "dispatcher"
	RoleProvider   Role = "provider"
)

// Permission is a capability string checked by handlers.
type Permission string

const (
	PermViewBookings      Permission = "view_bookings"
	PermManageBookings    Permission = "manage_bookings"
	PermReassignBookings  Permission = "reassign_bookings"
	PermManageProviders   Permission = "manage_providers"
	PermManageBusiness    Permission = "manage_business"
	PermManageBilling     Permission = "manage_billing"
	PermViewReports       Permission = "view_reports"
	PermMessageCustomers  Permission = "message_customers"
	PermUpdateOwnBookings Permission = "update_own_bookings"
)

var rolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermViewBookings, PermManageBookings, PermReassignBookings,
		PermManageProviders, PermManageBusiness, PermManageBilling,
		PermViewReports, PermMessageCustomers,
	},
	RoleAdmin: {
		PermViewBookings, PermManageBookings, PermReassignBookings,
		PermManageProviders, PermViewReports, PermMessageCustomers,
	},
	RoleManager: {
		PermViewBookings, PermManageBookings, PermReassignBookings,
		PermViewReports, PermMessageCustomers,
	},
	RoleDispatcher: {
		PermViewBookings, PermReassignBookings, PermMessageCustomers,
	},
	RoleProvider: {
		PermViewBookings, PermUpdateOwnBookings, PermMessageCustomers,
	},
}

// PermissionsFor returns the static permission set of a role. Unknown roles
// get an empty set.
func PermissionsFor(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role grants p.
func HasPermission(role Role, p Permission) bool {
	for _, granted := range rolePermissions[role] {
		if granted == p {
			return true
		}
	}
	return false
}
