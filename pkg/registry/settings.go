package registry

import (
	"context"

	"github.com/porterbot/porter/pkg/entities"
)

// SetTriggerMessage sets the message users react to in order to open a
// ticket.
func (r *Registry) SetTriggerMessage(ctx context.Context, guildID, channelID, messageID string) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.TriggerChannelID = channelID
		g.Ticketing.TriggerMessageID = messageID
		return nil
	})
}

// ClearTriggerMessage resets the trigger message reference. Used when the
// configured message or channel was deleted out of band.
func (r *Registry) ClearTriggerMessage(ctx context.Context, guildID string) error {
	return r.SetTriggerMessage(ctx, guildID, "", "")
}

// SetTriggerEmoji sets the reaction emoji, either a custom emoji ID or a
// unicode emoji.
func (r *Registry) SetTriggerEmoji(ctx context.Context, guildID, emoji string) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.TriggerEmoji = emoji
		return nil
	})
}

// SetOpenMessage sets the greeting template for new ticket channels.
func (r *Registry) SetOpenMessage(ctx context.Context, guildID, message string) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.OpenMessage = message
		return nil
	})
}

// SetCategory sets the category new ticket channels are created under.
func (r *Registry) SetCategory(ctx context.Context, guildID, categoryID string) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.CategoryID = categoryID
		return nil
	})
}

// SetMaxTickets sets the open ticket limit per user. notify, when non-nil,
// also updates whether limited users are sent a DM.
func (r *Registry) SetMaxTickets(ctx context.Context, guildID string, max int, notify *bool) error {
	if max < 1 {
		return ErrMaxTicketsTooLow
	}
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.MaxTickets = max
		if notify != nil {
			g.Ticketing.NotifyOnLimit = *notify
		}
		return nil
	})
}

// SetMemberCanClose sets whether ticket owners can close their own tickets.
func (r *Registry) SetMemberCanClose(ctx context.Context, guildID string, allowed bool) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.MemberCanClose = allowed
		return nil
	})
}

// SetMemberCanEditMembers sets whether ticket owners can add and remove
// users on their own tickets.
func (r *Registry) SetMemberCanEditMembers(ctx context.Context, guildID string, allowed bool) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.MemberCanEditMembers = allowed
		return nil
	})
}

// SetMemberCanRename sets whether ticket owners can rename their own
// tickets.
func (r *Registry) SetMemberCanRename(ctx context.Context, guildID string, allowed bool) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.MemberCanRename = allowed
		return nil
	})
}

// SetArchiveCategory sets the category closed tickets are archived to.
func (r *Registry) SetArchiveCategory(ctx context.Context, guildID, categoryID string) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.Archive.CategoryID = categoryID
		return nil
	})
}

// SetArchiveEnabled sets whether closed tickets are archived or deleted.
func (r *Registry) SetArchiveEnabled(ctx context.Context, guildID string, enabled bool) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.Archive.Enabled = enabled
		return nil
	})
}

// SetReportChannel sets the channel opened and closed tickets are reported
// to. An empty channel ID disables reporting.
func (r *Registry) SetReportChannel(ctx context.Context, guildID, channelID string) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.ReportChannelID = channelID
		return nil
	})
}

// SetDMOnClose sets whether the owner is sent a DM when their ticket closes.
func (r *Registry) SetDMOnClose(ctx context.Context, guildID string, enabled bool) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.DMOnClose = enabled
		return nil
	})
}

// SetCloseOnLeave sets whether a member's tickets close when they leave.
func (r *Registry) SetCloseOnLeave(ctx context.Context, guildID string, enabled bool) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.CloseOnLeave = enabled
		return nil
	})
}

// ToggleStaffRole adds the role to the staff set, or removes it if already
// present. Returns true if the role is now staff.
func (r *Registry) ToggleStaffRole(ctx context.Context, guildID, roleID string) (added bool, err error) {
	err = r.update(ctx, guildID, func(g *entities.Guild) error {
		for i, id := range g.Ticketing.StaffRoleIDs {
			if id == roleID {
				g.Ticketing.StaffRoleIDs = append(g.Ticketing.StaffRoleIDs[:i], g.Ticketing.StaffRoleIDs[i+1:]...)
				return nil
			}
		}
		g.Ticketing.StaffRoleIDs = append(g.Ticketing.StaffRoleIDs, roleID)
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// SetStaffRoles replaces the staff role set. Used to drop roles deleted out
// of band.
func (r *Registry) SetStaffRoles(ctx context.Context, guildID string, roleIDs []string) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.StaffRoleIDs = roleIDs
		return nil
	})
}

// ToggleBlocked adds the user to the block list, or removes them if already
// blocked. Returns true if the user is now blocked.
func (r *Registry) ToggleBlocked(ctx context.Context, guildID, userID string) (blocked bool, err error) {
	err = r.update(ctx, guildID, func(g *entities.Guild) error {
		for i, id := range g.Ticketing.BlockedUserIDs {
			if id == userID {
				g.Ticketing.BlockedUserIDs = append(g.Ticketing.BlockedUserIDs[:i], g.Ticketing.BlockedUserIDs[i+1:]...)
				return nil
			}
		}
		g.Ticketing.BlockedUserIDs = append(g.Ticketing.BlockedUserIDs, userID)
		blocked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return blocked, nil
}

// SetEnabled flips the open ticket listener on or off. The pre flight
// validation that gates enabling lives at the command layer as it needs the
// chat gateway.
func (r *Registry) SetEnabled(ctx context.Context, guildID string, enabled bool) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.Enabled = enabled
		return nil
	})
}
