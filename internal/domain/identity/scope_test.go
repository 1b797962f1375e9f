package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCaller_Scope(t *testing.T) {
	tenant1 := uuid.New()
	tenant2 := uuid.New()

	t.Run("admin is unrestricted", func(t *testing.T) {
		scope := Caller{Role: RoleAdmin}.Scope()

		assert.True(t, scope.All)
		assert.True(t, scope.Allows(tenant1))
		assert.True(t, scope.Allows(tenant2))
	})

	t.Run("client sees only its own tenant", func(t *testing.T) {
		scope := Caller{Role: RoleClient, TenantID: &tenant1}.Scope()

		assert.True(t, scope.Allows(tenant1))
		assert.False(t, scope.Allows(tenant2))
	})

	t.Run("client without tenant matches nothing", func(t *testing.T) {
		scope := Caller{Role: RoleClient}.Scope()

		assert.True(t, scope.MatchesNothing())
		assert.False(t, scope.Allows(tenant1))
	})

	t.Run("agent sees assigned tenants", func(t *testing.T) {
		scope := Caller{Role: RoleAgent, AssignedTenantIDs: []uuid.UUID{tenant1, tenant2}}.Scope()

		assert.True(t, scope.Allows(tenant1))
		assert.True(t, scope.Allows(tenant2))
		assert.False(t, scope.Allows(uuid.New()))
	})

	t.Run("agent without assignments matches nothing", func(t *testing.T) {
		scope := Caller{Role: RoleAgent}.Scope()
		assert.True(t, scope.MatchesNothing())
	})

	t.Run("unknown role matches nothing", func(t *testing.T) {
		scope := Caller{Role: Role("AUDITOR"), TenantID: &tenant1}.Scope()
		assert.True(t, scope.MatchesNothing())
	})
}

func TestCallerFromUser(t *testing.T) {
	tenantID := uuid.New()
	u, err := NewUser("agent@inkasso.example", "s3cret-pass", "Agent A", RoleAgent)
	assert.NoError(t, err)
	assert.NoError(t, u.AssignTenant(tenantID))

	caller := CallerFromUser(u)

	assert.Equal(t, u.ID, caller.UserID)
	assert.Equal(t, RoleAgent, caller.Role)
	assert.Equal(t, []uuid.UUID{tenantID}, caller.AssignedTenantIDs)
	assert.True(t, caller.Scope().Allows(tenantID))
}
