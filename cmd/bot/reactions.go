package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"

	"github.com/porterbot/porter/cmd/bot/monitoring"
	"github.com/porterbot/porter/pkg/entities"
	"github.com/porterbot/porter/pkg/logging"
	"github.com/porterbot/porter/pkg/messages"
	"github.com/porterbot/porter/pkg/registry"
)

func reactionAddHandler(a IApp) func(s *discordgo.Session, m *discordgo.MessageReactionAdd) {
	return func(_ *discordgo.Session, m *discordgo.MessageReactionAdd) {
		if err := handleReactionOpen(a, m); err != nil {
			a.Log().Error("Error handling reaction open",
				slog.String(logging.KeyGuild, m.GuildID),
				slog.String(logging.KeyUser, m.UserID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}

// handleReactionOpen runs the open ticket precondition chain for a reaction.
// Every failed precondition aborts quietly; a reacting user never sees an
// error in the channel.
func handleReactionOpen(a IApp, m *discordgo.MessageReactionAdd) error {
	if m.GuildID == "" {
		return nil
	}
	if m.Member != nil && m.Member.User != nil && m.Member.User.Bot {
		return nil
	}

	ctx := context.Background()

	guild, err := a.Registry().Config(ctx, m.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}
	cfg := &guild.Ticketing

	if !cfg.Enabled {
		return nil
	}

	// Only the configured trigger message with the configured emoji opens a
	// ticket.
	if !cfg.TriggerSet() || m.ChannelID != cfg.TriggerChannelID || m.MessageID != cfg.TriggerMessageID {
		return nil
	}
	if !emojiMatches(cfg.TriggerEmoji, &m.Emoji) {
		return nil
	}

	// The category going away, or the bot losing channel management there,
	// degrades the whole feature to off rather than failing on every
	// reaction.
	if err := checkCategory(a, m.GuildID, cfg.CategoryID); err != nil {
		a.Log().Warn("Ticket category unusable, disabling ticketing",
			slog.String(logging.KeyGuild, m.GuildID),
			slog.String(logging.KeyError, err.Error()),
		)
		if err := a.Registry().SetEnabled(ctx, m.GuildID, false); err != nil {
			return fmt.Errorf("error disabling ticketing: %w", err)
		}
		return nil
	}

	if cfg.IsBlocked(m.UserID) {
		removeReaction(a, m)
		return nil
	}

	username := m.UserID
	if m.Member != nil {
		username = displayName(m.Member)
	}

	ticket, err := a.Registry().Open(ctx, m.GuildID, m.UserID, func(g *entities.Guild) (string, error) {
		return createTicketChannel(a, g, m.UserID, username)
	})
	if errors.Is(err, registry.ErrTicketLimit) {
		if cfg.NotifyOnLimit && a.AllowLimitNotify() {
			notifyTicketLimit(a, m.GuildID, m.UserID)
		}
		removeReaction(a, m)
		return nil
	} else if err != nil {
		return fmt.Errorf("error opening ticket: %w", err)
	}

	monitoring.TicketsOpened.Inc()
	removeReaction(a, m)

	reportTicket(a, cfg, fmt.Sprintf("Ticket opened by %s in %s.", userMention(m.UserID), channelMention(ticket.ChannelID)))
	return nil
}

// emojiMatches compares the configured trigger emoji against a reaction
// emoji. Custom emoji are stored by ID, unicode emoji by the character
// itself.
func emojiMatches(configured string, emoji *discordgo.Emoji) bool {
	if emoji.ID != "" {
		return configured == emoji.ID
	}
	return configured == emoji.Name
}

// checkCategory verifies the ticket category exists and the bot can manage
// channels within it.
func checkCategory(a IApp, guildID, categoryID string) error {
	if categoryID == "" {
		return errors.New("no category configured")
	}

	if _, err := a.Session().Channel(categoryID); err != nil {
		return fmt.Errorf("error getting category: %w", err)
	}

	perms, err := a.Session().UserChannelPermissions(a.Session().State.User.ID, categoryID)
	if err != nil {
		return fmt.Errorf("error getting category permissions: %w", err)
	}
	if perms&discordgo.PermissionManageChannels == 0 {
		return errors.New("missing manage channels permission in category")
	}
	return nil
}

// createTicketChannel creates the channel for a new ticket and posts the
// greeting. Called inside the registry's open critical section.
func createTicketChannel(a IApp, g *entities.Guild, ownerID, username string) (string, error) {
	cfg := &g.Ticketing

	preset := ""
	if len(cfg.NamePresets.Presets) > 0 {
		preset = cfg.NamePresets.Presets[cfg.NamePresets.Chosen]
	}
	name := registry.RenderChannelName(preset, username, ownerID, time.Now())

	channel, err := a.Session().GuildChannelCreateComplex(g.ID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Ticket opened by %s", username),
		ParentID:             cfg.CategoryID,
		PermissionOverwrites: ticketOverwrites(a, g.ID, ownerID, cfg),
	})
	if err != nil {
		return "", fmt.Errorf("error creating ticket channel: %w", err)
	}

	greeting := registry.RenderOpenMessage(cfg, userMention(ownerID), username, ownerID)
	if _, err := a.Session().ChannelMessageSend(channel.ID, greeting); err != nil {
		// The channel exists; a failed greeting is not worth losing the
		// ticket over.
		a.Log().Error("Error sending ticket greeting",
			slog.String(logging.KeyGuild, g.ID),
			slog.String(logging.KeyChannel, channel.ID),
			slog.String(logging.KeyError, err.Error()),
		)
	}

	return channel.ID, nil
}

// ticketOverwrites builds the permission set for a ticket channel: hidden
// from everyone, managed by the bot, visible to the owner and the staff
// roles.
func ticketOverwrites(a IApp, guildID, ownerID string, cfg *entities.TicketingConfig) []*discordgo.PermissionOverwrite {
	const memberPerms = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory

	overwrites := []*discordgo.PermissionOverwrite{
		// Deny @everyone from seeing the ticket.
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		// The bot manages the channel through its whole lifecycle.
		{
			ID:    a.Session().State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberPerms | discordgo.PermissionManageChannels | discordgo.PermissionManageMessages,
		},
		// The ticket owner can see and use the ticket.
		{
			ID:    ownerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberPerms,
		},
	}

	for _, roleID := range cfg.StaffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberPerms,
		})
	}
	return overwrites
}

// removeReaction clears the user's reaction off the trigger message so it can
// be used again. Best effort.
func removeReaction(a IApp, m *discordgo.MessageReactionAdd) {
	if err := a.Session().MessageReactionRemove(m.ChannelID, m.MessageID, m.Emoji.APIName(), m.UserID); err != nil {
		a.Log().Debug("Error removing trigger reaction",
			slog.String(logging.KeyGuild, m.GuildID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// notifyTicketLimit DMs a user who is at their open ticket limit. Best
// effort; DMs can be disabled.
func notifyTicketLimit(a IApp, guildID, userID string) {
	guildName := guildID
	if g, err := a.Session().Guild(guildID); err == nil {
		guildName = g.Name
	}

	dm, err := a.Session().UserChannelCreate(userID)
	if err != nil {
		a.Log().Debug("Error creating DM channel", slog.String(logging.KeyError, err.Error()))
		return
	}
	if _, err := a.Session().ChannelMessageSend(dm.ID, fmt.Sprintf(messages.TicketLimitDM, guildName)); err != nil {
		a.Log().Debug("Error sending ticket limit DM", slog.String(logging.KeyError, err.Error()))
	}
}

// reportTicket posts to the configured report channel, if any. Best effort.
func reportTicket(a IApp, cfg *entities.TicketingConfig, content string) {
	if cfg.ReportChannelID == "" {
		return
	}
	if _, err := a.Session().ChannelMessageSend(cfg.ReportChannelID, content); err != nil {
		a.Log().Debug("Error posting to report channel",
			slog.String(logging.KeyChannel, cfg.ReportChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}
