package main

import (
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/discordgo"

	"github.com/porterbot/porter/pkg/entities"
	"github.com/porterbot/porter/pkg/messages"
)

func respondSlashError(a IApp, i *discordgo.InteractionCreate) error {
	return respondSlashEphemeral(a, i, messages.ErrUserErrorProcessing)
}

func respondSlashEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// hasRole reports whether the member carries the given role.
func hasRole(member *discordgo.Member, roleID string) bool {
	for _, r := range member.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// isStaff reports whether the member carries any of the configured staff
// roles, or has the administrator permission as a fallback.
func isStaff(a IApp, i *discordgo.InteractionCreate, cfg *entities.TicketingConfig) bool {
	if i.Member == nil {
		return false
	}

	for _, roleID := range cfg.StaffRoleIDs {
		if hasRole(i.Member, roleID) {
			return true
		}
	}

	return i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// memberIsStaffTier reports whether a member counts as staff for ticket
// membership rules. Staff can't be added to or removed from a ticket: they
// hold a configured staff role, or one of their roles grants administrator.
func memberIsStaffTier(member *discordgo.Member, guildRoles []*discordgo.Role, cfg *entities.TicketingConfig) bool {
	if member == nil {
		return false
	}

	for _, roleID := range member.Roles {
		if cfg.IsStaffRole(roleID) {
			return true
		}
	}

	for _, role := range guildRoles {
		if role.Permissions&discordgo.PermissionAdministrator == 0 {
			continue
		}
		if hasRole(member, role.ID) {
			return true
		}
	}
	return false
}

// displayName returns the name shown for a member, preferring the guild
// nickname over the account username.
func displayName(member *discordgo.Member) string {
	if member == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		return member.User.Username
	}
	return ""
}

// interactionUser returns the user behind the interaction. Member is set for
// guild interactions, User for DMs.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// subCommand returns the first option name of the interaction, which for the
// commands registered here is always the sub command.
func subCommand(i *discordgo.InteractionCreate) string {
	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		return ""
	}
	return opts[0].Name
}

// channelMention formats a channel ID as a mention.
func channelMention(id string) string {
	return fmt.Sprintf("<#%s>", id)
}

// userMention formats a user ID as a mention.
func userMention(id string) string {
	return fmt.Sprintf("<@%s>", id)
}

// roleMention formats a role ID as a mention.
func roleMention(id string) string {
	return fmt.Sprintf("<@&%s>", id)
}

// channelGone reports whether the error is the API telling us the channel no
// longer exists.
func channelGone(err error) bool {
	if err == nil {
		return false
	}
	er := new(discordgo.RESTError)
	if !errors.As(err, &er) {
		return false
	}
	// General is thrown when a 404 is returned.
	return er.Message != nil && (er.Message.Code == discordgo.ErrCodeUnknownChannel || er.Message.Code == discordgo.ErrCodeGeneralError)
}

// permissionDenied reports whether the error is the API rejecting us for
// missing permissions.
func permissionDenied(err error) bool {
	if err == nil {
		return false
	}
	er := new(discordgo.RESTError)
	if !errors.As(err, &er) {
		return false
	}
	return er.Message != nil && er.Message.Code == discordgo.ErrCodeMissingPermissions
}
