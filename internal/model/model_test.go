package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(RolePartner, RoleManager))
	assert.True(t, RoleAtLeast(RoleManager, RoleManager))
	assert.True(t, RoleAtLeast(RoleSystemAdmin, RolePartner))
	assert.False(t, RoleAtLeast(RoleEmployee, RoleManager))
	assert.False(t, RoleAtLeast("INTERN", RoleEmployee), "unknown roles rank below everything")
}

func TestRoleRank_Unknown(t *testing.T) {
	assert.Equal(t, 0, RoleRank("INTERN"))
	assert.Equal(t, 1, RoleRank(RoleEmployee))
}

func TestApprovalTaskActive(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{ApprovalPending, true},
		{ApprovalApproved, true},
		{ApprovalRejected, false},
		{ApprovalCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			task := ApprovalTask{Status: tt.status}
			assert.Equal(t, tt.want, task.Active())
		})
	}
}
