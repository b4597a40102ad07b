package staff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid(RoleWaiter))
	assert.True(t, Valid(RoleAdmin))
	assert.False(t, Valid(Role("")))
	assert.False(t, Valid(Role("intern")))
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(RoleWaiter, CapOrdersPlace))
	assert.False(t, Allowed(RoleWaiter, CapBillingOperate))
	assert.False(t, Allowed(RoleWaiter, CapMenuManage))

	assert.True(t, Allowed(RoleKitchen, CapKitchenOperate))
	assert.False(t, Allowed(RoleKitchen, CapOrdersManage))

	assert.True(t, Allowed(RoleCashier, CapBillingOperate))
	assert.False(t, Allowed(RoleCashier, CapTablesManage))

	// Admin holds every capability.
	for _, cap := range []Capability{
		CapTablesManage, CapOrdersPlace, CapOrdersManage,
		CapKitchenOperate, CapBillingOperate, CapMenuManage,
	} {
		assert.True(t, Allowed(RoleAdmin, cap), string(cap))
	}

	// Unknown roles hold none.
	assert.False(t, Allowed(Role("intern"), CapOrdersPlace))
}
