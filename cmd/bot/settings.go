package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/forPelevin/gomoji"

	"github.com/porterbot/porter/pkg/logging"
	"github.com/porterbot/porter/pkg/registry"
)

const (
	// SetupCmdName is the command for configuring the bot.
	SetupCmdName = "setup"

	// OpenTicketsGroupName holds the settings for opening tickets.
	OpenTicketsGroupName = "opentickets"

	// ManageTicketsGroupName holds the settings for managing open tickets.
	ManageTicketsGroupName = "managetickets"

	// TicketNameGroupName holds the channel name preset settings.
	TicketNameGroupName = "ticketname"

	// CloseTicketsGroupName holds the settings for closing tickets.
	CloseTicketsGroupName = "closetickets"

	// MemberPermsGroupName holds the owner self service flags.
	MemberPermsGroupName = "memberperms"

	// EnableCmdName turns the reaction listener on after validation.
	EnableCmdName = "enable"

	// DisableCmdName turns the reaction listener off.
	DisableCmdName = "disable"
)

const (
	// PruneConfirmButtonID is the ID for the archive prune confirm button.
	PruneConfirmButtonID = "archive_prune_confirm"

	// PruneCancelButtonID is the ID for the archive prune cancel button.
	PruneCancelButtonID = "archive_prune_cancel"
)

// setupCmd is the command for configuring the bot. Admin only.
var setupCmd = &discordgo.ApplicationCommand{
	Name:        SetupCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "This is the command for configuring the ticket system.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        OpenTicketsGroupName,
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Description: "Settings for opening tickets.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "setmsg",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets the message users react to in order to open a ticket.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "channel",
							Type:        discordgo.ApplicationCommandOptionChannel,
							Description: "The channel the message is in.",
							Required:    true,
						},
						{
							Name:        "messageid",
							Type:        discordgo.ApplicationCommandOptionString,
							Description: "The ID of the message.",
							Required:    true,
						},
					},
				},
				{
					Name:        "reaction",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets the emoji that opens a ticket.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "emoji",
							Type:        discordgo.ApplicationCommandOptionString,
							Description: "A unicode emoji, or a custom emoji from this server.",
							Required:    true,
						},
					},
				},
				{
					Name:        "block",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Toggles whether a user is blocked from opening tickets.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "user",
							Type:        discordgo.ApplicationCommandOptionUser,
							Description: "The user to block or unblock.",
							Required:    true,
						},
					},
				},
				{
					Name:        "blocklist",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Lists the users blocked from opening tickets.",
				},
				{
					Name:        "maxtickets",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets how many tickets a user can have open at once.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "max",
							Type:        discordgo.ApplicationCommandOptionInteger,
							Description: "The maximum number of open tickets per user. At least 1.",
							Required:    true,
						},
						{
							Name:        "notify",
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Description: "Whether to DM users who hit the limit.",
							Required:    false,
						},
					},
				},
			},
		},
		{
			Name:        ManageTicketsGroupName,
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Description: "Settings for managing open tickets.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "greeting",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets the greeting posted in new tickets. {default} restores the built in one.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "message",
							Type:        discordgo.ApplicationCommandOptionString,
							Description: "Supports {mention}, {username} and {id}.",
							Required:    true,
						},
					},
				},
				{
					Name:        "category",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets the category new ticket channels are created under.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "category",
							Type:        discordgo.ApplicationCommandOptionChannel,
							Description: "The category channel.",
							Required:    true,
						},
					},
				},
				{
					Name:        "roles",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Toggles a role's staff access to tickets.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "role",
							Type:        discordgo.ApplicationCommandOptionRole,
							Description: "The role to add or remove.",
							Required:    true,
						},
					},
				},
				{
					Name:        "listroles",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Lists the staff roles, dropping any deleted ones.",
				},
			},
		},
		{
			Name:        TicketNameGroupName,
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Description: "Channel name presets for new tickets.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "list",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Lists the name presets.",
				},
				{
					Name:        "add",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Adds a name preset.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "preset",
							Type:        discordgo.ApplicationCommandOptionString,
							Description: "Supports {user}, {userid}, {minute}, {hour}, {day_name}, {day}, {month_name}, {month}, {year}, {random}.",
							Required:    true,
						},
					},
				},
				{
					Name:        "remove",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Removes a name preset by its position.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "position",
							Type:        discordgo.ApplicationCommandOptionInteger,
							Description: "The position from the list, starting at 1.",
							Required:    true,
						},
					},
				},
				{
					Name:        "select",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Selects the preset used for new tickets.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "position",
							Type:        discordgo.ApplicationCommandOptionInteger,
							Description: "The position from the list, starting at 1.",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        CloseTicketsGroupName,
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Description: "Settings for closing tickets.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "archivecategory",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets the category closed tickets are archived to.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "category",
							Type:        discordgo.ApplicationCommandOptionChannel,
							Description: "The category channel.",
							Required:    true,
						},
					},
				},
				{
					Name:        "archive",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets whether closed tickets are archived instead of deleted.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "enabled",
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Description: "Whether to archive closed tickets.",
							Required:    true,
						},
					},
				},
				{
					Name:        "reports",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets the channel ticket activity is reported to.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "channel",
							Type:        discordgo.ApplicationCommandOptionChannel,
							Description: "The report channel.",
							Required:    true,
						},
					},
				},
				{
					Name:        "dm",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets whether owners get a DM when their ticket closes.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "enabled",
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Description: "Whether to DM on close.",
							Required:    true,
						},
					},
				},
				{
					Name:        "closeonleave",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets whether tickets close when their owner leaves the server.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "enabled",
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Description: "Whether to close on leave.",
							Required:    true,
						},
					},
				},
				{
					Name:        "prune",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Deletes every channel in the archive category.",
				},
			},
		},
		{
			Name:        MemberPermsGroupName,
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Description: "What ticket owners can do themselves.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "memberclose",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets whether owners can close their own tickets.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "enabled",
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Description: "Whether owners can close.",
							Required:    true,
						},
					},
				},
				{
					Name:        "memberedit",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets whether owners can add and remove users.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "enabled",
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Description: "Whether owners can edit members.",
							Required:    true,
						},
					},
				},
				{
					Name:        "membername",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Sets whether owners can rename their tickets.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "enabled",
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Description: "Whether owners can rename.",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        EnableCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "Validates the configuration and turns the ticket system on.",
		},
		{
			Name:        DisableCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "Turns the ticket system off.",
		},
	},
}

// setupTarget unpacks the invoked group, sub command and its options.
func setupTarget(i *discordgo.InteractionCreate) (group, sub string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	opts = map[string]*discordgo.ApplicationCommandInteractionDataOption{}

	top := i.ApplicationCommandData().Options
	if len(top) == 0 {
		return "", "", opts
	}

	o := top[0]
	if o.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
		group = o.Name
		if len(o.Options) == 0 {
			return group, "", opts
		}
		o = o.Options[0]
	}

	sub = o.Name
	for _, arg := range o.Options {
		opts[arg.Name] = arg
	}
	return group, sub, opts
}

// setupCmdController routes a /setup interaction to its processor. Every
// branch is admin only.
func setupCmdController(_ IApp, i *discordgo.InteractionCreate) (commandProcessor, error) {
	group, sub, _ := setupTarget(i)

	var processor commandProcessor
	switch group {
	case OpenTicketsGroupName:
		switch sub {
		case "setmsg":
			processor = setTriggerMessageProcessor
		case "reaction":
			processor = setTriggerEmojiProcessor
		case "block":
			processor = toggleBlockedProcessor
		case "blocklist":
			processor = blockListProcessor
		case "maxtickets":
			processor = setMaxTicketsProcessor
		}
	case ManageTicketsGroupName:
		switch sub {
		case "greeting":
			processor = setGreetingProcessor
		case "category":
			processor = setCategoryProcessor
		case "roles":
			processor = toggleStaffRoleProcessor
		case "listroles":
			processor = listStaffRolesProcessor
		}
	case TicketNameGroupName:
		switch sub {
		case "list":
			processor = listPresetsProcessor
		case "add":
			processor = addPresetProcessor
		case "remove":
			processor = removePresetProcessor
		case "select":
			processor = selectPresetProcessor
		}
	case CloseTicketsGroupName:
		switch sub {
		case "archivecategory":
			processor = setArchiveCategoryProcessor
		case "archive":
			processor = setArchiveEnabledProcessor
		case "reports":
			processor = setReportChannelProcessor
		case "dm":
			processor = setDMOnCloseProcessor
		case "closeonleave":
			processor = setCloseOnLeaveProcessor
		case "prune":
			processor = pruneProcessor
		}
	case MemberPermsGroupName:
		switch sub {
		case "memberclose":
			processor = memberPermsProcessor(setMemberClose,
				"Owners can now close their own tickets.",
				"Only staff can close tickets now.")
		case "memberedit":
			processor = memberPermsProcessor(setMemberEdit,
				"Owners can now add and remove users on their tickets.",
				"Only staff can add and remove users now.")
		case "membername":
			processor = memberPermsProcessor(setMemberRename,
				"Owners can now rename their tickets.",
				"Only staff can rename tickets now.")
		}
	case "":
		switch sub {
		case EnableCmdName:
			processor = enableProcessor
		case DisableCmdName:
			processor = disableProcessor
		}
	}

	if processor == nil {
		return nil, fmt.Errorf("unknown setup target %s/%s", group, sub)
	}
	return adminOnly(processor), nil
}

// adminOnly rejects the interaction unless the member has the administrator
// permission.
func adminOnly(next commandProcessor) commandProcessor {
	return func(a IApp, i *discordgo.InteractionCreate) error {
		if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
			return respondSlashEphemeral(a, i, "Only administrators can change the ticket configuration.")
		}
		return next(a, i)
	}
}

func setTriggerMessageProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	channel := opts["channel"].ChannelValue(a.Session())
	messageID := strings.TrimSpace(opts["messageid"].StringValue())

	// The reference has to resolve before it is saved; a typo here would
	// quietly break every future reaction.
	if _, err := a.Session().ChannelMessage(channel.ID, messageID); err != nil {
		return respondSlashEphemeral(a, i, fmt.Sprintf("I couldn't find that message in %s. Check the message ID.", channelMention(channel.ID)))
	}

	if err := a.Registry().SetTriggerMessage(context.Background(), i.GuildID, channel.ID, messageID); err != nil {
		return fmt.Errorf("error setting trigger message: %w", err)
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Users can now open tickets by reacting to that message in %s.", channelMention(channel.ID)))
}

func setTriggerEmojiProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	raw := strings.TrimSpace(opts["emoji"].StringValue())

	emoji, err := resolveEmoji(a, i.GuildID, raw)
	if err != nil {
		return respondSlashEphemeral(a, i, "That doesn't look like an emoji I can use. Give me a unicode emoji or a custom emoji from this server.")
	}

	if err := a.Registry().SetTriggerEmoji(context.Background(), i.GuildID, emoji); err != nil {
		return fmt.Errorf("error setting trigger emoji: %w", err)
	}
	return respondSlashEphemeral(a, i, "Trigger emoji updated.")
}

// resolveEmoji normalises the emoji input to its stored form: the character
// itself for unicode emoji, the emoji ID for custom server emoji.
func resolveEmoji(a IApp, guildID, raw string) (string, error) {
	if gomoji.ContainsEmoji(raw) {
		found := gomoji.FindAll(raw)
		if len(found) != 1 {
			return "", errors.New("expected exactly one emoji")
		}
		return found[0].Character, nil
	}

	// Custom emoji arrive as <:name:id> or <a:name:id>.
	trimmed := strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	parts := strings.Split(trimmed, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("unrecognised emoji %q", raw)
	}
	id := parts[2]

	emojis, err := a.Session().GuildEmojis(guildID)
	if err != nil {
		return "", fmt.Errorf("error listing guild emojis: %w", err)
	}
	for _, e := range emojis {
		if e.ID == id {
			return id, nil
		}
	}
	return "", fmt.Errorf("emoji %s is not from this guild", id)
}

func toggleBlockedProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	target := opts["user"].UserValue(a.Session())

	blocked, err := a.Registry().ToggleBlocked(context.Background(), i.GuildID, target.ID)
	if err != nil {
		return fmt.Errorf("error toggling block: %w", err)
	}

	if blocked {
		return respondSlashEphemeral(a, i, fmt.Sprintf("%s can no longer open tickets.", userMention(target.ID)))
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("%s can open tickets again.", userMention(target.ID)))
}

func blockListProcessor(a IApp, i *discordgo.InteractionCreate) error {
	guild, err := a.Registry().Config(context.Background(), i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}

	blocked := guild.Ticketing.BlockedUserIDs
	if len(blocked) == 0 {
		return respondSlashEphemeral(a, i, "Nobody is blocked from opening tickets.")
	}

	lines := make([]string, 0, len(blocked))
	for _, id := range blocked {
		lines = append(lines, userMention(id))
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Blocked Users",
					Description: strings.Join(lines, "\n"),
					Color:       0xED4245,
				},
			},
		},
	})
}

func setMaxTicketsProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	max := int(opts["max"].IntValue())

	var notify *bool
	if o, ok := opts["notify"]; ok {
		v := o.BoolValue()
		notify = &v
	}

	err := a.Registry().SetMaxTickets(context.Background(), i.GuildID, max, notify)
	if errors.Is(err, registry.ErrMaxTicketsTooLow) {
		return respondSlashEphemeral(a, i, "The ticket limit has to be at least 1.")
	} else if err != nil {
		return fmt.Errorf("error setting max tickets: %w", err)
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Users can now have up to %d tickets open at once.", max))
}

func setGreetingProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	message := opts["message"].StringValue()

	if err := a.Registry().SetOpenMessage(context.Background(), i.GuildID, message); err != nil {
		return fmt.Errorf("error setting greeting: %w", err)
	}
	return respondSlashEphemeral(a, i, "Ticket greeting updated.")
}

func setCategoryProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	category := opts["category"].ChannelValue(a.Session())

	if category.Type != discordgo.ChannelTypeGuildCategory {
		return respondSlashEphemeral(a, i, "That channel isn't a category.")
	}

	if err := a.Registry().SetCategory(context.Background(), i.GuildID, category.ID); err != nil {
		return fmt.Errorf("error setting category: %w", err)
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("New tickets will be created under **%s**.", category.Name))
}

func toggleStaffRoleProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	role := opts["role"].RoleValue(a.Session(), i.GuildID)

	added, err := a.Registry().ToggleStaffRole(context.Background(), i.GuildID, role.ID)
	if err != nil {
		return fmt.Errorf("error toggling staff role: %w", err)
	}

	if added {
		return respondSlashEphemeral(a, i, fmt.Sprintf("%s is now a staff role.", roleMention(role.ID)))
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("%s is no longer a staff role.", roleMention(role.ID)))
}

// listStaffRolesProcessor lists the staff roles and silently drops any that
// no longer exist in the guild.
func listStaffRolesProcessor(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	guild, err := a.Registry().Config(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}

	roles, err := a.Session().GuildRoles(i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild roles: %w", err)
	}
	live := map[string]bool{}
	for _, r := range roles {
		live[r.ID] = true
	}

	var kept []string
	for _, id := range guild.Ticketing.StaffRoleIDs {
		if live[id] {
			kept = append(kept, id)
		}
	}

	if len(kept) != len(guild.Ticketing.StaffRoleIDs) {
		a.Log().Info("Dropping deleted staff roles",
			slog.String(logging.KeyGuild, i.GuildID),
			slog.Int("dropped", len(guild.Ticketing.StaffRoleIDs)-len(kept)),
		)
		if err := a.Registry().SetStaffRoles(ctx, i.GuildID, kept); err != nil {
			return fmt.Errorf("error pruning staff roles: %w", err)
		}
	}

	if len(kept) == 0 {
		return respondSlashEphemeral(a, i, "No staff roles are configured.")
	}

	lines := make([]string, 0, len(kept))
	for _, id := range kept {
		lines = append(lines, roleMention(id))
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Staff Roles",
					Description: strings.Join(lines, "\n"),
					Color:       0x5865F2,
				},
			},
		},
	})
}

func listPresetsProcessor(a IApp, i *discordgo.InteractionCreate) error {
	guild, err := a.Registry().Config(context.Background(), i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}
	p := guild.Ticketing.NamePresets

	lines := make([]string, 0, len(p.Presets))
	for idx, preset := range p.Presets {
		marker := ""
		if idx == p.Chosen {
			marker = " (selected)"
		}
		lines = append(lines, fmt.Sprintf("%d. `%s`%s", idx+1, preset, marker))
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Ticket Name Presets",
					Description: strings.Join(lines, "\n"),
					Color:       0x5865F2,
				},
			},
		},
	})
}

func addPresetProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	preset := strings.TrimSpace(opts["preset"].StringValue())
	if preset == "" {
		return respondSlashEphemeral(a, i, "The preset can't be empty.")
	}

	index, err := a.Registry().AddPreset(context.Background(), i.GuildID, preset)
	if err != nil {
		return fmt.Errorf("error adding preset: %w", err)
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Added preset %d. Use `/setup ticketname select` to start using it.", index+1))
}

func removePresetProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	index := int(opts["position"].IntValue()) - 1

	err := a.Registry().RemovePreset(context.Background(), i.GuildID, index)
	switch {
	case errors.Is(err, registry.ErrPresetIndex):
		return respondSlashEphemeral(a, i, "There's no preset at that position.")
	case errors.Is(err, registry.ErrPresetChosen):
		return respondSlashEphemeral(a, i, "That preset is currently selected. Select another one first.")
	case err != nil:
		return fmt.Errorf("error removing preset: %w", err)
	}
	return respondSlashEphemeral(a, i, "Preset removed.")
}

func selectPresetProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	index := int(opts["position"].IntValue()) - 1

	err := a.Registry().SelectPreset(context.Background(), i.GuildID, index)
	switch {
	case errors.Is(err, registry.ErrPresetIndex):
		return respondSlashEphemeral(a, i, "There's no preset at that position.")
	case errors.Is(err, registry.ErrPresetAlreadyChosen):
		return respondSlashEphemeral(a, i, "That preset is already selected.")
	case err != nil:
		return fmt.Errorf("error selecting preset: %w", err)
	}
	return respondSlashEphemeral(a, i, "New tickets will use that preset.")
}

func setArchiveCategoryProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	category := opts["category"].ChannelValue(a.Session())

	if category.Type != discordgo.ChannelTypeGuildCategory {
		return respondSlashEphemeral(a, i, "That channel isn't a category.")
	}

	if err := a.Registry().SetArchiveCategory(context.Background(), i.GuildID, category.ID); err != nil {
		return fmt.Errorf("error setting archive category: %w", err)
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Closed tickets will be archived under **%s**.", category.Name))
}

func setArchiveEnabledProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	enabled := opts["enabled"].BoolValue()

	if err := a.Registry().SetArchiveEnabled(context.Background(), i.GuildID, enabled); err != nil {
		return fmt.Errorf("error setting archive flag: %w", err)
	}

	if enabled {
		return respondSlashEphemeral(a, i, "Closed tickets will now be archived.")
	}
	return respondSlashEphemeral(a, i, "Closed tickets will now be deleted.")
}

func setReportChannelProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	channel := opts["channel"].ChannelValue(a.Session())

	if err := a.Registry().SetReportChannel(context.Background(), i.GuildID, channel.ID); err != nil {
		return fmt.Errorf("error setting report channel: %w", err)
	}
	return respondSlashEphemeral(a, i, fmt.Sprintf("Ticket activity will be reported to %s.", channelMention(channel.ID)))
}

func setDMOnCloseProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	enabled := opts["enabled"].BoolValue()

	if err := a.Registry().SetDMOnClose(context.Background(), i.GuildID, enabled); err != nil {
		return fmt.Errorf("error setting DM on close: %w", err)
	}

	if enabled {
		return respondSlashEphemeral(a, i, "Owners will now get a DM when their ticket closes.")
	}
	return respondSlashEphemeral(a, i, "Owners will no longer get a DM when their ticket closes.")
}

func setCloseOnLeaveProcessor(a IApp, i *discordgo.InteractionCreate) error {
	_, _, opts := setupTarget(i)
	enabled := opts["enabled"].BoolValue()

	if err := a.Registry().SetCloseOnLeave(context.Background(), i.GuildID, enabled); err != nil {
		return fmt.Errorf("error setting close on leave: %w", err)
	}

	if enabled {
		return respondSlashEphemeral(a, i, "Tickets will now close when their owner leaves the server.")
	}
	return respondSlashEphemeral(a, i, "Tickets will now stay open when their owner leaves the server.")
}

func setMemberClose(a IApp, ctx context.Context, guildID string, v bool) error {
	return a.Registry().SetMemberCanClose(ctx, guildID, v)
}

func setMemberEdit(a IApp, ctx context.Context, guildID string, v bool) error {
	return a.Registry().SetMemberCanEditMembers(ctx, guildID, v)
}

func setMemberRename(a IApp, ctx context.Context, guildID string, v bool) error {
	return a.Registry().SetMemberCanRename(ctx, guildID, v)
}

func memberPermsProcessor(set func(IApp, context.Context, string, bool) error, onMsg, offMsg string) commandProcessor {
	return func(a IApp, i *discordgo.InteractionCreate) error {
		_, _, opts := setupTarget(i)
		enabled := opts["enabled"].BoolValue()

		if err := set(a, context.Background(), i.GuildID, enabled); err != nil {
			return fmt.Errorf("error setting member permission: %w", err)
		}

		if enabled {
			return respondSlashEphemeral(a, i, onMsg)
		}
		return respondSlashEphemeral(a, i, offMsg)
	}
}

// pruneProcessor asks for confirmation before deleting the archive.
func pruneProcessor(a IApp, i *discordgo.InteractionCreate) error {
	guild, err := a.Registry().Config(context.Background(), i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}

	if guild.Ticketing.Archive.CategoryID == "" {
		return respondSlashEphemeral(a, i, "There's no archive category configured.")
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: "This will permanently delete every channel in the archive category. Are you sure?",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Delete them all",
							Style:    discordgo.DangerButton,
							CustomID: PruneConfirmButtonID,
						},
						discordgo.Button{
							Label:    "Cancel",
							Style:    discordgo.SecondaryButton,
							CustomID: PruneCancelButtonID,
						},
					},
				},
			},
		},
	})
}

func pruneConfirmHandler(a IApp, i *discordgo.InteractionCreate) error {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		return respondSlashEphemeral(a, i, "Only administrators can prune the archive.")
	}

	guild, err := a.Registry().Config(context.Background(), i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}
	categoryID := guild.Ticketing.Archive.CategoryID
	if categoryID == "" {
		return respondSlashEphemeral(a, i, "There's no archive category configured.")
	}

	channels, err := a.Session().GuildChannels(i.GuildID)
	if err != nil {
		return fmt.Errorf("error listing guild channels: %w", err)
	}

	deleted := 0
	for _, ch := range channels {
		if ch.ParentID != categoryID {
			continue
		}
		if _, err := a.Session().ChannelDelete(ch.ID); err != nil {
			a.Log().Error("Error pruning archived channel",
				slog.String(logging.KeyChannel, ch.ID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}
		deleted++
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    fmt.Sprintf("Deleted %d archived ticket channels.", deleted),
			Components: []discordgo.MessageComponent{},
		},
	})
}

func pruneCancelHandler(a IApp, i *discordgo.InteractionCreate) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    "Prune cancelled. Nothing was deleted.",
			Components: []discordgo.MessageComponent{},
		},
	})
}

// enableProcessor validates the whole configuration before turning the
// reaction listener on. Each failed check gets its own remediation reply so
// the admin knows exactly what to fix.
func enableProcessor(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	guild, err := a.Registry().Config(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}
	cfg := &guild.Ticketing

	if !cfg.TriggerSet() {
		return respondSlashEphemeral(a, i, "No trigger message is set. Use `/setup opentickets setmsg` first.")
	}
	if _, err := a.Session().ChannelMessage(cfg.TriggerChannelID, cfg.TriggerMessageID); err != nil {
		return respondSlashEphemeral(a, i, "I can't reach the trigger message anymore. Set it again with `/setup opentickets setmsg`.")
	}

	if err := validateEmoji(a, i.GuildID, cfg.TriggerEmoji); err != nil {
		return respondSlashEphemeral(a, i, "The trigger emoji is no longer usable. Set a new one with `/setup opentickets reaction`.")
	}

	if err := checkCategory(a, i.GuildID, cfg.CategoryID); err != nil {
		if cfg.CategoryID == "" {
			return respondSlashEphemeral(a, i, "No ticket category is set. Use `/setup managetickets category` first.")
		}
		return respondSlashEphemeral(a, i, "The ticket category is gone or I can't manage channels in it. Fix the category or my permissions, then try again.")
	}

	if cfg.Archive.Enabled {
		if cfg.Archive.CategoryID == "" {
			return respondSlashEphemeral(a, i, "Archiving is on but no archive category is set. Use `/setup closetickets archivecategory`.")
		}
		if _, err := a.Session().Channel(cfg.Archive.CategoryID); err != nil {
			return respondSlashEphemeral(a, i, "The archive category is gone. Set a new one with `/setup closetickets archivecategory`.")
		}
	}

	if cfg.ReportChannelID != "" {
		perms, err := a.Session().UserChannelPermissions(a.Session().State.User.ID, cfg.ReportChannelID)
		if err != nil || perms&discordgo.PermissionSendMessages == 0 {
			return respondSlashEphemeral(a, i, "I can't post in the report channel. Fix it or point reports elsewhere with `/setup closetickets reports`.")
		}
	}

	if err := a.Registry().SetEnabled(ctx, i.GuildID, true); err != nil {
		return fmt.Errorf("error enabling ticketing: %w", err)
	}
	return respondSlashEphemeral(a, i, "Ticketing is now enabled. React to the trigger message to open a ticket.")
}

// validateEmoji checks a stored trigger emoji is still usable: unicode emoji
// always are, custom emoji must still exist in the guild.
func validateEmoji(a IApp, guildID, stored string) error {
	if stored == "" {
		return errors.New("no emoji configured")
	}
	if gomoji.ContainsEmoji(stored) {
		return nil
	}

	emojis, err := a.Session().GuildEmojis(guildID)
	if err != nil {
		return fmt.Errorf("error listing guild emojis: %w", err)
	}
	for _, e := range emojis {
		if e.ID == stored {
			return nil
		}
	}
	return fmt.Errorf("emoji %s no longer exists", stored)
}

func disableProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if err := a.Registry().SetEnabled(context.Background(), i.GuildID, false); err != nil {
		return fmt.Errorf("error disabling ticketing: %w", err)
	}
	return respondSlashEphemeral(a, i, "Ticketing is now disabled. Open tickets are unaffected.")
}
