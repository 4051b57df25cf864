package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"

	"github.com/porterbot/porter/cmd/bot/monitoring"
	"github.com/porterbot/porter/pkg/entities"
	"github.com/porterbot/porter/pkg/logging"
	"github.com/porterbot/porter/pkg/messages"
	"github.com/porterbot/porter/pkg/registry"
)

const (
	// TicketCmdName is the command for controlling tickets.
	TicketCmdName = "ticket"

	// CloseCmdName is the sub command for closing a ticket.
	CloseCmdName = "close"

	// LockCmdName is the sub command for locking a ticket.
	LockCmdName = "lock"

	// UnlockCmdName is the sub command for unlocking a ticket.
	UnlockCmdName = "unlock"

	// AddCmdName is the sub command for adding a user to a ticket.
	AddCmdName = "add"

	// RemoveCmdName is the sub command for removing a user from a ticket.
	RemoveCmdName = "remove"

	// RenameCmdName is the sub command for renaming a ticket channel.
	RenameCmdName = "rename"

	// AssignCmdName is the sub command for assigning a staff member.
	AssignCmdName = "assign"

	// QueueCmdName is the sub command for listing open tickets.
	QueueCmdName = "queue"
)

const (
	// QueuePrevButtonID is the ID for the queue previous page button.
	QueuePrevButtonID = "ticket_queue_prev"

	// QueueNextButtonID is the ID for the queue next page button.
	QueueNextButtonID = "ticket_queue_next"
)

// closeDelay is how long a closed ticket channel stays readable before it is
// archived or deleted.
const closeDelay = time.Minute

// RenameLimit is the maximum length accepted for a ticket rename.
const RenameLimit = 99

// ticketCmd is the command for controlling tickets.
var ticketCmd = &discordgo.ApplicationCommand{
	Name:        TicketCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "This is the command for controlling tickets.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        CloseCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This closes the ticket for the channel that the command was executed in.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "reason",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The reason for closing the ticket.",
					Required:    false,
				},
			},
		},
		{
			Name:        LockCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This locks the ticket so only staff can send messages.",
		},
		{
			Name:        UnlockCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This unlocks the ticket for its members.",
		},
		{
			Name:        AddCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This adds a user to the ticket.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "user",
					Type:        discordgo.ApplicationCommandOptionUser,
					Description: "The user to add to the ticket.",
					Required:    true,
				},
			},
		},
		{
			Name:        RemoveCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This removes a user from the ticket.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "user",
					Type:        discordgo.ApplicationCommandOptionUser,
					Description: "The user to remove from the ticket.",
					Required:    true,
				},
			},
		},
		{
			Name:        RenameCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This renames the ticket channel.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The new name for the ticket channel.",
					Required:    true,
				},
			},
		},
		{
			Name:        AssignCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This assigns a staff member to the ticket.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "staff",
					Type:        discordgo.ApplicationCommandOptionUser,
					Description: "The staff member to assign.",
					Required:    true,
				},
				{
					Name:        "channel",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Description: "The ticket channel. Defaults to the current channel.",
					Required:    false,
				},
			},
		},
		{
			Name:        QueueCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "This lists every open ticket, newest first.",
		},
	},
}

// ticketCmdController routes a /ticket interaction to its processor.
func ticketCmdController(_ IApp, i *discordgo.InteractionCreate) (commandProcessor, error) {
	switch sub := subCommand(i); sub {
	case CloseCmdName:
		return closeTicketProcessor, nil
	case LockCmdName:
		return lockTicketProcessor(true), nil
	case UnlockCmdName:
		return lockTicketProcessor(false), nil
	case AddCmdName:
		return addMemberProcessor, nil
	case RemoveCmdName:
		return removeMemberProcessor, nil
	case RenameCmdName:
		return renameTicketProcessor, nil
	case AssignCmdName:
		return assignTicketProcessor, nil
	case QueueCmdName:
		return queueProcessor, nil
	default:
		return nil, fmt.Errorf("unknown sub command %q", sub)
	}
}

// subOptions returns the options of the invoked sub command keyed by name.
func subOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := map[string]*discordgo.ApplicationCommandInteractionDataOption{}
	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		return out
	}
	for _, o := range opts[0].Options {
		out[o.Name] = o
	}
	return out
}

// resolveOwner works out whose ticket a command targets. Staff commands
// resolve by the channel the command was issued in; members always act on
// their own tickets.
func resolveOwner(a IApp, i *discordgo.InteractionCreate, staff bool) string {
	if staff {
		if owner, _, err := a.Registry().FindByChannel(context.Background(), i.GuildID, i.ChannelID); err == nil {
			return owner
		}
	}
	return interactionUser(i).ID
}

// respondRegistryError translates a registry sentinel into its user facing
// reply. Unknown errors are returned for the middleware to handle.
func respondRegistryError(a IApp, i *discordgo.InteractionCreate, err error) error {
	switch {
	case errors.Is(err, registry.ErrNoTickets):
		return respondSlashEphemeral(a, i, messages.ErrNoOpenTickets)
	case errors.Is(err, registry.ErrAmbiguousTicket):
		return respondSlashEphemeral(a, i, messages.ErrAmbiguousTicket)
	case errors.Is(err, registry.ErrTicketNotFound):
		return respondSlashEphemeral(a, i, messages.ErrTicketNotFound)
	default:
		return err
	}
}

func closeTicketProcessor(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	guild, err := a.Registry().Config(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}
	cfg := &guild.Ticketing

	staff := isStaff(a, i, cfg)
	if !staff && !cfg.MemberCanClose {
		return respondSlashEphemeral(a, i, messages.ErrStaffOnlyClose)
	}

	reason := ""
	if o, ok := subOptions(i)["reason"]; ok {
		reason = o.StringValue()
	}

	ownerID := resolveOwner(a, i, staff)
	removed, err := a.Registry().Close(ctx, i.GuildID, ownerID, i.ChannelID)
	if err != nil {
		return respondRegistryError(a, i, err)
	}

	if err := respondSlashEphemeral(a, i, "Ticket closed."); err != nil {
		a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
	}

	// The record is already gone; everything from here is best effort
	// cleanup.
	go finalizeClose(a, i.GuildID, ownerID, removed, reason, interactionUser(i).ID)
	return nil
}

// finalizeClose runs the slow half of a close: notify, revoke send
// permissions, wait, then archive or delete the channel. Failures are
// reported and logged, never retried and never rolled back.
func finalizeClose(a IApp, guildID, ownerID string, ticket *entities.Ticket, reason, closedBy string) {
	monitoring.TicketsClosed.Inc()

	guild, err := a.Registry().Config(context.Background(), guildID)
	if err != nil {
		a.Log().Error("Error getting guild configuration",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyError, err.Error()),
		)
		return
	}
	cfg := &guild.Ticketing

	notice := fmt.Sprintf("This ticket has been closed by %s.", userMention(closedBy))
	if reason != "" {
		notice += " Reason: " + reason
	}
	if cfg.Archive.Enabled && cfg.Archive.CategoryID != "" {
		notice += "\nThe channel will be archived shortly."
	} else {
		notice += "\nThe channel will be deleted shortly."
	}

	if _, err := a.Session().ChannelMessageSend(ticket.ChannelID, notice); err != nil {
		a.Log().Debug("Error sending closing notice", slog.String(logging.KeyError, err.Error()))
	}

	// Members lose write access immediately; the channel stays readable
	// until the delay runs out.
	for _, userID := range append([]string{ownerID}, ticket.AddedUserIDs...) {
		if err := a.Session().ChannelPermissionSet(ticket.ChannelID, userID, discordgo.PermissionOverwriteTypeMember,
			discordgo.PermissionViewChannel|discordgo.PermissionReadMessageHistory,
			discordgo.PermissionSendMessages,
		); err != nil {
			a.Log().Debug("Error revoking send permission",
				slog.String(logging.KeyUser, userID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}

	reportTicket(a, cfg, fmt.Sprintf("Ticket %s (owner %s) closed by %s.", channelMention(ticket.ChannelID), userMention(ownerID), userMention(closedBy)))

	if cfg.DMOnClose {
		dmClosedOwner(a, guildID, ownerID, reason)
	}

	// Not cancellable. If a second close raced this one, the registry
	// already rejected it.
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

// archiveChannel moves a closed ticket channel under the archive category
// with staff only visibility.
func archiveChannel(a IApp, guildID, channelID string, cfg *entities.TicketingConfig) {
	const staffPerms = discordgo.PermissionViewChannel | discordgo.PermissionReadMessageHistory

	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    a.Session().State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: staffPerms | discordgo.PermissionManageChannels,
		},
	}
	for _, roleID := range cfg.StaffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: staffPerms,
		})
	}

	if _, err := a.Session().ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		ParentID:             cfg.Archive.CategoryID,
		PermissionOverwrites: overwrites,
	}); err != nil {
		a.Log().Error("Error archiving ticket channel",
			slog.String(logging.KeyChannel, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// dmClosedOwner tells the owner their ticket was closed. Best effort.
func dmClosedOwner(a IApp, guildID, ownerID, reason string) {
	guildName := guildID
	if g, err := a.Session().Guild(guildID); err == nil {
		guildName = g.Name
	}

	msg := fmt.Sprintf("Your ticket in %s has been closed.", guildName)
	if reason != "" {
		msg += " Reason: " + reason
	}

	dm, err := a.Session().UserChannelCreate(ownerID)
	if err != nil {
		a.Log().Debug("Error creating DM channel", slog.String(logging.KeyError, err.Error()))
		return
	}
	if _, err := a.Session().ChannelMessageSend(dm.ID, msg); err != nil {
		a.Log().Debug("Error sending close DM", slog.String(logging.KeyError, err.Error()))
	}
}

// lockTicketProcessor locks or unlocks the ticket in the current channel.
// Staff only; a lock takes write access away from the owner and every added
// user.
func lockTicketProcessor(lock bool) commandProcessor {
	return func(a IApp, i *discordgo.InteractionCreate) error {
		ctx := context.Background()

		guild, err := a.Registry().Config(ctx, i.GuildID)
		if err != nil {
			return fmt.Errorf("error getting guild configuration: %w", err)
		}

		if !isStaff(a, i, &guild.Ticketing) {
			return respondSlashEphemeral(a, i, messages.ErrNotStaff)
		}

		ownerID, ticket, err := a.Registry().SetLocked(ctx, i.GuildID, i.ChannelID, lock)
		if err != nil {
			return respondRegistryError(a, i, err)
		}

		var allow, deny int64
		if lock {
			allow = discordgo.PermissionViewChannel | discordgo.PermissionReadMessageHistory
			deny = discordgo.PermissionSendMessages
		} else {
			allow = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory
		}

		for _, userID := range append([]string{ownerID}, ticket.AddedUserIDs...) {
			if err := a.Session().ChannelPermissionSet(ticket.ChannelID, userID, discordgo.PermissionOverwriteTypeMember, allow, deny); err != nil {
				a.Log().Debug("Error updating lock permission",
					slog.String(logging.KeyUser, userID),
					slog.String(logging.KeyError, err.Error()),
				)
			}
		}

		if lock {
			return respondSlashEphemeral(a, i, "Ticket locked. Only staff can send messages.")
		}
		return respondSlashEphemeral(a, i, "Ticket unlocked.")
	}
}

func addMemberProcessor(a IApp, i *discordgo.InteractionCreate) error {
	return editMembersProcessor(a, i, true)
}

func removeMemberProcessor(a IApp, i *discordgo.InteractionCreate) error {
	return editMembersProcessor(a, i, false)
}

func editMembersProcessor(a IApp, i *discordgo.InteractionCreate, add bool) error {
	ctx := context.Background()

	guild, err := a.Registry().Config(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}
	cfg := &guild.Ticketing

	staff := isStaff(a, i, cfg)
	if !staff && !cfg.MemberCanEditMembers {
		return respondSlashEphemeral(a, i, messages.ErrStaffOnlyEdit)
	}

	userOpt, ok := subOptions(i)["user"]
	if !ok {
		return errors.New("missing user option")
	}
	target := userOpt.UserValue(a.Session())

	// Staff never sit in the member list; they keep channel access through
	// their roles.
	targetMember, err := a.Session().GuildMember(i.GuildID, target.ID)
	if err != nil {
		return fmt.Errorf("error fetching target member: %w", err)
	}
	guildRoles, err := a.Session().GuildRoles(i.GuildID)
	if err != nil {
		return fmt.Errorf("error fetching guild roles: %w", err)
	}
	if memberIsStaffTier(targetMember, guildRoles, cfg) {
		if add {
			return respondSlashEphemeral(a, i, messages.ErrAddStaff)
		}
		return respondSlashEphemeral(a, i, messages.ErrRemoveStaff)
	}

	ownerID := resolveOwner(a, i, staff)

	if add {
		ticket, err := a.Registry().AddMember(ctx, i.GuildID, ownerID, i.ChannelID, target.ID)
		if errors.Is(err, registry.ErrAlreadyAdded) {
			return respondSlashEphemeral(a, i, fmt.Sprintf("%s is already in this ticket.", userMention(target.ID)))
		} else if err != nil {
			return respondRegistryError(a, i, err)
		}

		if err := a.Session().ChannelPermissionSet(ticket.ChannelID, target.ID, discordgo.PermissionOverwriteTypeMember,
			discordgo.PermissionViewChannel|discordgo.PermissionSendMessages|discordgo.PermissionReadMessageHistory, 0,
		); err != nil {
			if permissionDenied(err) {
				return respondSlashEphemeral(a, i, messages.ErrNoManageChannels)
			}
			return fmt.Errorf("error granting channel access: %w", err)
		}
		return respondSlashEphemeral(a, i, fmt.Sprintf("Added %s to the ticket.", userMention(target.ID)))
	}

	ticket, err := a.Registry().RemoveMember(ctx, i.GuildID, ownerID, i.ChannelID, target.ID)
	if errors.Is(err, registry.ErrNotAdded) {
		return respondSlashEphemeral(a, i, fmt.Sprintf("%s is not in this ticket.", userMention(target.ID)))
	} else if err != nil {
		return respondRegistryError(a, i, err)
	}

	if err := a.Session().ChannelPermissionDelete(ticket.ChannelID, target.ID); err != nil {
		if permissionDenied(err) {
			return respondSlashEphemeral(a, i, messages.ErrNoManageChannels)
		}
		return fmt.Errorf("error revoking channel access: %w", err)
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Removed %s from the ticket.", userMention(target.ID)))
}

func renameTicketProcessor(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	guild, err := a.Registry().Config(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}
	cfg := &guild.Ticketing

	staff := isStaff(a, i, cfg)
	if !staff && !cfg.MemberCanRename {
		return respondSlashEphemeral(a, i, messages.ErrStaffOnlyRename)
	}

	nameOpt, ok := subOptions(i)["name"]
	if !ok {
		return errors.New("missing name option")
	}
	name := strings.TrimSpace(nameOpt.StringValue())
	if len([]rune(name)) > RenameLimit {
		return respondSlashEphemeral(a, i, messages.ErrNameTooLong)
	}

	// Only ticket channels get renamed through this command.
	if _, _, err := a.Registry().FindByChannel(ctx, i.GuildID, i.ChannelID); err != nil {
		return respondRegistryError(a, i, err)
	}

	if _, err := a.Session().ChannelEditComplex(i.ChannelID, &discordgo.ChannelEdit{Name: name}); err != nil {
		if channelGone(err) {
			return respondSlashEphemeral(a, i, messages.ErrChannelGone)
		}
		return fmt.Errorf("error renaming channel: %w", err)
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Ticket renamed to %s.", name))
}

func assignTicketProcessor(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	guild, err := a.Registry().Config(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}

	if !isStaff(a, i, &guild.Ticketing) {
		return respondSlashEphemeral(a, i, messages.ErrNotStaff)
	}

	opts := subOptions(i)
	staffOpt, ok := opts["staff"]
	if !ok {
		return errors.New("missing staff option")
	}
	target := staffOpt.UserValue(a.Session())

	channelID := i.ChannelID
	if o, ok := opts["channel"]; ok {
		channelID = o.ChannelValue(a.Session()).ID
	}

	ownerID, err := a.Registry().Assign(ctx, i.GuildID, channelID, target.ID)
	switch {
	case errors.Is(err, registry.ErrAssignOwner):
		return respondSlashEphemeral(a, i, "The ticket owner can't be assigned to their own ticket.")
	case errors.Is(err, registry.ErrAlreadyAssigned):
		return respondSlashEphemeral(a, i, fmt.Sprintf("%s is already assigned to this ticket.", userMention(target.ID)))
	case err != nil:
		return respondRegistryError(a, i, err)
	}

	if _, err := a.Session().ChannelMessageSend(channelID, fmt.Sprintf("%s has been assigned to this ticket (owner %s).", userMention(target.ID), userMention(ownerID))); err != nil {
		a.Log().Debug("Error announcing assignment", slog.String(logging.KeyError, err.Error()))
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Assigned %s to the ticket.", userMention(target.ID)))
}

func queueProcessor(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	guild, err := a.Registry().Config(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}

	if !isStaff(a, i, &guild.Ticketing) {
		return respondSlashEphemeral(a, i, messages.ErrNotStaff)
	}

	pages, err := a.Registry().Queue(ctx, i.GuildID)
	if errors.Is(err, registry.ErrNoTickets) {
		return respondSlashEphemeral(a, i, "There are no open tickets.")
	} else if err != nil {
		return err
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:      discordgo.MessageFlagsEphemeral,
			Embeds:     []*discordgo.MessageEmbed{queueEmbed(pages, 0)},
			Components: queueButtons(0, len(pages)),
		},
	})
}

// queueEmbed renders one page of the ticket queue.
func queueEmbed(pages [][]registry.QueueEntry, page int) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(pages[page]))
	for _, e := range pages[page] {
		value := fmt.Sprintf("Owner: %s\nOpened: %s", userMention(e.OwnerID), e.Ticket.OpenedAt.Time().Format(time.RFC1123))
		if e.Ticket.AssignedStaffID != "" {
			value += "\nAssigned: " + userMention(e.Ticket.AssignedStaffID)
		}
		if e.Ticket.Locked {
			value += "\nLocked"
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  channelMention(e.Ticket.ChannelID),
			Value: value,
		})
	}

	return &discordgo.MessageEmbed{
		Title:  "Open Tickets",
		Color:  0x5865F2,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d", page+1, len(pages)),
		},
	}
}

// queueButtons builds the pager row, disabling whichever direction has no
// further page.
func queueButtons(page, total int) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Previous",
					Style:    discordgo.SecondaryButton,
					Disabled: page == 0,
					CustomID: QueuePrevButtonID,
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.SecondaryButton,
					Disabled: page >= total-1,
					CustomID: QueueNextButtonID,
				},
			},
		},
	}
}

// queuePageHandler turns a pager button press into an updated queue page.
// The current page lives in the embed footer, so the handler is stateless.
func queuePageHandler(delta int) commandProcessor {
	return func(a IApp, i *discordgo.InteractionCreate) error {
		page := 0
		if embeds := i.Message.Embeds; len(embeds) > 0 && embeds[0].Footer != nil {
			// Footer format is "Page x/y".
			var total int
			if _, err := fmt.Sscanf(embeds[0].Footer.Text, "Page %d/%d", &page, &total); err != nil {
				page = 1
			}
			page-- // zero based
		}

		pages, err := a.Registry().Queue(context.Background(), i.GuildID)
		if errors.Is(err, registry.ErrNoTickets) {
			return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseUpdateMessage,
				Data: &discordgo.InteractionResponseData{
					Content:    "There are no open tickets.",
					Embeds:     []*discordgo.MessageEmbed{},
					Components: []discordgo.MessageComponent{},
				},
			})
		} else if err != nil {
			return err
		}

		page += delta
		if page < 0 {
			page = 0
		}
		if page >= len(pages) {
			page = len(pages) - 1
		}

		return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{queueEmbed(pages, page)},
				Components: queueButtons(page, len(pages)),
			},
		})
	}
}
