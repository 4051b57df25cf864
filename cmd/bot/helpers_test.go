package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/porterbot/porter/pkg/entities"
)

func TestMemberIsStaffTier(t *testing.T) {
	cfg := &entities.TicketingConfig{StaffRoleIDs: []string{"111"}}
	guildRoles := []*discordgo.Role{
		{ID: "222"},
		{ID: "333", Permissions: discordgo.PermissionAdministrator},
	}

	tests := []struct {
		name   string
		member *discordgo.Member
		want   bool
	}{
		{
			name:   "nil member",
			member: nil,
			want:   false,
		},
		{
			name:   "no roles",
			member: &discordgo.Member{},
			want:   false,
		},
		{
			name:   "ordinary role only",
			member: &discordgo.Member{Roles: []string{"222"}},
			want:   false,
		},
		{
			name:   "configured staff role",
			member: &discordgo.Member{Roles: []string{"222", "111"}},
			want:   true,
		},
		{
			name:   "administrator role",
			member: &discordgo.Member{Roles: []string{"333"}},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, memberIsStaffTier(tt.member, guildRoles, cfg))
		})
	}
}

func TestPermissionDenied(t *testing.T) {
	require.False(t, permissionDenied(nil))
	require.False(t, permissionDenied(errors.New("boom")))

	denied := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions}}
	require.True(t, permissionDenied(denied))
	require.True(t, permissionDenied(fmt.Errorf("error revoking channel access: %w", denied)))

	gone := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel}}
	require.False(t, permissionDenied(gone))
}
