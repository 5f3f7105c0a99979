package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"Mason/Models"
)

func TestSatisfiesOrdering(t *testing.T) {
	tests := []struct {
		held     Role
		required Role
		want     bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleForeman, true},
		{RoleAdmin, RoleWorker, true},
		{RoleAdmin, RoleGuest, true},
		{RoleForeman, RoleAdmin, false},
		{RoleForeman, RoleForeman, true},
		{RoleForeman, RoleWorker, true},
		{RoleWorker, RoleForeman, false},
		{RoleWorker, RoleWorker, true},
		{RoleGuest, RoleWorker, false},
		{RoleGuest, RoleGuest, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.held.Satisfies(tt.required), "%s satisfies %s", tt.held, tt.required)
	}
}

func TestParseRoleUnknownIsGuest(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleGuest, ParseRole("superuser"))
	assert.Equal(t, RoleGuest, ParseRole(""))
}

func TestResolveRolePicksHighestQualifying(t *testing.T) {
	now := time.Now()
	rows := []Models.RoleAssignment{
		{Role: "worker", IsActive: true},
		{Role: "foreman", IsActive: true},
	}
	assert.Equal(t, RoleForeman, ResolveRole(rows, now))
}

func TestResolveRoleIgnoresInactiveAndExpired(t *testing.T) {
	now := time.Now()
	expired := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	rows := []Models.RoleAssignment{
		{Role: "admin", IsActive: false},
		{Role: "foreman", IsActive: true, ExpiresAt: &expired},
		{Role: "worker", IsActive: true, ExpiresAt: &future},
	}
	assert.Equal(t, RoleWorker, ResolveRole(rows, now))
}

func TestResolveRoleDefaultsToGuest(t *testing.T) {
	now := time.Now()
	assert.Equal(t, RoleGuest, ResolveRole(nil, now))

	expired := now.Add(-time.Minute)
	rows := []Models.RoleAssignment{
		{Role: "admin", IsActive: true, ExpiresAt: &expired},
	}
	assert.Equal(t, RoleGuest, ResolveRole(rows, now))
}

func TestCapabilitiesFor(t *testing.T) {
	now := time.Now()
	rows := []Models.RoleAssignment{
		{Role: "foreman", IsActive: true},
		{Role: "worker", IsActive: true},
	}

	caps := CapabilitiesFor(rows, now)
	assert.Equal(t, RoleForeman, caps.PrimaryRole)
	assert.False(t, caps.IsAdmin)
	assert.True(t, caps.IsForeman)
	assert.True(t, caps.IsWorker)
	assert.False(t, caps.CanAccessAdmin)
	assert.True(t, caps.CanAccessForeman)
	assert.True(t, caps.CanAccessWorker)
}

func TestCapabilitiesForGuest(t *testing.T) {
	caps := CapabilitiesFor(nil, time.Now())
	assert.Equal(t, RoleGuest, caps.PrimaryRole)
	assert.False(t, caps.CanAccessWorker)
}
