package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Jeffail/gabs/v2"
)

// CurrentSchemaVersion is the schema version this build writes. Stored guild
// documents at older versions are upgraded in order at startup.
//
// Version history of a ticket entry:
//
//	0: owner maps to a bare channel ID
//	1: owner maps to a single {channel, added} object
//	2: owner maps to a list of ticket objects
//	3: ticket objects carry an assigned staff field
//	4: ticket objects carry a locked flag
const CurrentSchemaVersion = 4

// ticketsPath is the location of the per owner ticket map in a guild
// document.
const ticketsPath = "ticketing.tickets"

// upgrades are the ordered schema upgrade passes. upgrades[n] moves a guild
// document from version n to n+1. Every pass is pure and idempotent: running
// it on already upgraded data changes nothing.
var upgrades = []func(doc *gabs.Container){
	upgradeWrapBareChannels,
	upgradeSingleToList,
	upgradeAddAssigned,
	upgradeAddLocked,
}

// Migrate upgrades every stored guild document from the persisted schema
// version to CurrentSchemaVersion. It is safe to run on every startup; once
// the stored version is current it does nothing.
func Migrate(ctx context.Context, store MigrationStore, l *slog.Logger) error {
	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("error reading schema version: %w", err)
	}

	for ; version < CurrentSchemaVersion; version++ {
		guilds, err := store.AllGuildsRaw(ctx)
		if err != nil {
			return fmt.Errorf("error loading guilds for migration: %w", err)
		}

		for _, raw := range guilds {
			doc := gabs.Wrap(raw)
			upgrades[version](doc)

			id, _ := doc.Path("id").Data().(string)
			if id == "" {
				continue
			}
			if err := store.ReplaceGuildRaw(ctx, id, raw); err != nil {
				return fmt.Errorf("error saving migrated guild %s: %w", id, err)
			}
		}

		if err := store.SetSchemaVersion(ctx, version+1); err != nil {
			return fmt.Errorf("error saving schema version: %w", err)
		}

		l.Info("Schema migration applied", slog.Int("version", version+1))
	}
	return nil
}

// asID renders a stored ID as a string. Legacy documents stored snowflakes
// as numbers.
func asID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// upgradeWrapBareChannels converts owner entries holding a bare channel ID
// into ticket objects with an empty added list.
func upgradeWrapBareChannels(doc *gabs.Container) {
	for owner, entry := range doc.Path(ticketsPath).ChildrenMap() {
		switch entry.Data().(type) {
		case map[string]any, []any:
			// Already upgraded.
		default:
			_, _ = doc.Set(map[string]any{
				"channel": asID(entry.Data()),
				"added":   []any{},
			}, "ticketing", "tickets", owner)
		}
	}
}

// upgradeSingleToList converts owner entries holding a single ticket object
// into a one element list.
func upgradeSingleToList(doc *gabs.Container) {
	for owner, entry := range doc.Path(ticketsPath).ChildrenMap() {
		if m, ok := entry.Data().(map[string]any); ok {
			_, _ = doc.Set([]any{m}, "ticketing", "tickets", owner)
		}
	}
}

// upgradeAddAssigned gives every ticket an assigned staff field. Legacy
// records used the number zero for unassigned; the field becomes a string
// ID, empty when unassigned.
func upgradeAddAssigned(doc *gabs.Container) {
	forEachTicket(doc, func(ticket map[string]any) {
		switch assigned := ticket["assigned"].(type) {
		case string:
			// Already upgraded.
		case nil:
			ticket["assigned"] = ""
		default:
			id := asID(assigned)
			if id == "0" {
				id = ""
			}
			ticket["assigned"] = id
		}
	})
}

// upgradeAddLocked gives every ticket a locked flag, defaulting to false.
func upgradeAddLocked(doc *gabs.Container) {
	forEachTicket(doc, func(ticket map[string]any) {
		if _, ok := ticket["locked"].(bool); !ok {
			ticket["locked"] = false
		}
	})
}

func forEachTicket(doc *gabs.Container, fn func(ticket map[string]any)) {
	for _, entry := range doc.Path(ticketsPath).ChildrenMap() {
		for _, t := range entry.Children() {
			if m, ok := t.Data().(map[string]any); ok {
				fn(m)
			}
		}
	}
}
