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
	"github.com/porterbot/porter/pkg/registry"
)

func memberLeaveHandler(a IApp) func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	return func(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if err := handleMemberLeave(a, m); err != nil {
			a.Log().Error("Error reconciling member leave",
				slog.String(logging.KeyGuild, m.GuildID),
				slog.String(logging.KeyUser, m.User.ID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}

// handleMemberLeave closes every ticket a departed member owned, mirroring
// the two phase structure of an explicit close: the records come out of the
// registry first, then each channel gets the slow best effort cleanup.
func handleMemberLeave(a IApp, m *discordgo.GuildMemberRemove) error {
	ctx := context.Background()

	guild, err := a.Registry().Config(ctx, m.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}
	if !guild.Ticketing.CloseOnLeave {
		return nil
	}

	removed, err := a.Registry().CloseAllForOwner(ctx, m.GuildID, m.User.ID)
	if errors.Is(err, registry.ErrNoTickets) {
		return nil
	} else if err != nil {
		return fmt.Errorf("error closing tickets for departed member: %w", err)
	}

	a.Log().Info(fmt.Sprintf("Closing %d tickets for departed member", len(removed)),
		slog.String(logging.KeyGuild, m.GuildID),
		slog.String(logging.KeyUser, m.User.ID),
	)

	for _, ticket := range removed {
		go finalizeLeaveClose(a, m.GuildID, m.User.ID, ticket, &guild.Ticketing)
	}
	return nil
}

// finalizeLeaveClose is the slow half of a close-on-leave: revoke the added
// users' access, report, wait the close delay, then archive or delete.
func finalizeLeaveClose(a IApp, guildID, ownerID string, ticket *entities.Ticket, cfg *entities.TicketingConfig) {
	monitoring.TicketsClosed.Inc()

	if _, err := a.Session().ChannelMessageSend(ticket.ChannelID, fmt.Sprintf("%s has left the server, so this ticket is being closed.", userMention(ownerID))); err != nil {
		a.Log().Debug("Error sending leave close notice", slog.String(logging.KeyError, err.Error()))
	}

	for _, userID := range ticket.AddedUserIDs {
		if err := a.Session().ChannelPermissionDelete(ticket.ChannelID, userID); err != nil {
			a.Log().Debug("Error revoking added user access",
				slog.String(logging.KeyUser, userID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}

	reportTicket(a, cfg, fmt.Sprintf("Ticket %s closed because its owner %s left the server.", channelMention(ticket.ChannelID), userMention(ownerID)))

	time.Sleep(closeDelay)

	if cfg.Archive.Enabled && cfg.Archive.CategoryID != "" {
		archiveChannel(a, guildID, ticket.ChannelID, cfg)
		return
	}

	if _, err := a.Session().ChannelDelete(ticket.ChannelID); err != nil {
		a.Log().Error("Error deleting ticket channel",
			slog.String(logging.KeyChannel, ticket.ChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}
