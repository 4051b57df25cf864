package registry

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/porterbot/porter/pkg/entities"
)

// ChannelNameLimit is the platform limit on channel name length.
const ChannelNameLimit = 100

// AddPreset appends a new name preset and returns its index.
func (r *Registry) AddPreset(ctx context.Context, guildID, preset string) (index int, err error) {
	err = r.update(ctx, guildID, func(g *entities.Guild) error {
		g.Ticketing.NamePresets.Presets = append(g.Ticketing.NamePresets.Presets, preset)
		index = len(g.Ticketing.NamePresets.Presets) - 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// RemovePreset deletes the preset at index. The chosen preset cannot be
// deleted; deleting a preset before it shifts the chosen index down so the
// same preset stays selected.
func (r *Registry) RemovePreset(ctx context.Context, guildID string, index int) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		p := &g.Ticketing.NamePresets
		if index < 0 || index >= len(p.Presets) {
			return ErrPresetIndex
		}
		if index == p.Chosen {
			return ErrPresetChosen
		}

		if index < p.Chosen {
			p.Chosen--
		}
		p.Presets = append(p.Presets[:index], p.Presets[index+1:]...)
		return nil
	})
}

// SelectPreset makes the preset at index the one used for new tickets.
func (r *Registry) SelectPreset(ctx context.Context, guildID string, index int) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		p := &g.Ticketing.NamePresets
		if index < 0 || index >= len(p.Presets) {
			return ErrPresetIndex
		}
		if index == p.Chosen {
			return ErrPresetAlreadyChosen
		}
		p.Chosen = index
		return nil
	})
}

// RenderChannelName expands the chosen preset for a new ticket channel.
// Dates are UTC. The result is truncated to the platform channel name limit.
func RenderChannelName(preset, username, userID string, now time.Time) string {
	now = now.UTC()

	name := strings.NewReplacer(
		"{user}", username,
		"{userid}", userID,
		"{minute}", fmt.Sprint(now.Minute()),
		"{hour}", fmt.Sprint(now.Hour()),
		"{day_name}", now.Weekday().String(),
		"{day}", fmt.Sprint(now.Day()),
		"{month_name}", now.Month().String(),
		"{month}", fmt.Sprint(int(now.Month())),
		"{year}", fmt.Sprint(now.Year()),
		"{random}", fmt.Sprint(rand.Intn(900000)+100000),
	).Replace(preset)

	runes := []rune(name)
	if len(runes) > ChannelNameLimit {
		name = string(runes[:ChannelNameLimit])
	}
	return name
}

// RenderOpenMessage expands the guild's greeting template for a new ticket.
// The "{default}" sentinel selects a built in greeting, which tells the
// owner how the ticket gets closed depending on the self service close flag.
func RenderOpenMessage(cfg *entities.TicketingConfig, mention, username, userID string) string {
	if cfg.OpenMessage == entities.DefaultOpenMessage {
		if cfg.MemberCanClose {
			return fmt.Sprintf("Ticket opened for %s.\nTo close it, use `/ticket close`.", username)
		}
		return fmt.Sprintf("Ticket opened for %s.\nStaff: to close this ticket, use `/ticket close`.", username)
	}

	return strings.NewReplacer(
		"{mention}", mention,
		"{username}", username,
		"{id}", userID,
	).Replace(cfg.OpenMessage)
}
