// Package staff defines the closed set of staff roles and the capability
// table gating operations. Authentication itself happens upstream; the
// core only receives an opaque actor id and a role.
package staff

// Role is a staff role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWaiter  Role = "waiter"
	RoleKitchen Role = "kitchen"
	RoleCashier Role = "cashier"
)

// Capability is a class of operations a role may perform.
type Capability string

const (
	CapTablesManage   Capability = "tables.manage"
	CapOrdersPlace    Capability = "orders.place"
	CapOrdersManage   Capability = "orders.manage"
	CapKitchenOperate Capability = "kitchen.operate"
	CapBillingOperate Capability = "billing.operate"
	CapMenuManage     Capability = "menu.manage"
)

var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapTablesManage:   true,
		CapOrdersPlace:    true,
		CapOrdersManage:   true,
		CapKitchenOperate: true,
		CapBillingOperate: true,
		CapMenuManage:     true,
	},
	RoleManager: {
		CapTablesManage:   true,
		CapOrdersPlace:    true,
		CapOrdersManage:   true,
		CapBillingOperate: true,
		CapMenuManage:     true,
	},
	RoleWaiter: {
		CapOrdersPlace:  true,
		CapOrdersManage: true,
	},
	RoleKitchen: {
		CapKitchenOperate: true,
	},
	RoleCashier: {
		CapBillingOperate: true,
	},
}

// Valid reports whether the role is one of the known roles.
func Valid(role Role) bool {
	_, ok := capabilities[role]
	return ok
}

// Allowed reports whether the role may perform the capability.
func Allowed(role Role, cap Capability) bool {
	return capabilities[role][cap]
}
