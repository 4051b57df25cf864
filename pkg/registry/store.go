package registry

import (
	"context"

	"github.com/porterbot/porter/pkg/entities"
)

// Store is the persisted settings store for guild ticketing configuration.
// Implementations return a defaulted record for unknown guilds; a guild
// document is created on first write and never explicitly destroyed.
type Store interface {
	// GetGuildByID gets the guild record, defaulted if absent.
	GetGuildByID(ctx context.Context, id string) (*entities.Guild, error)

	// SaveGuild upserts the guild record.
	SaveGuild(ctx context.Context, guild *entities.Guild) error

	// UpdateGuild applies fn to the guild record and persists the result.
	// If fn returns an error nothing is written.
	UpdateGuild(ctx context.Context, id string, fn func(*entities.Guild) error) error
}

// MigrationStore is the raw document access used by schema migration. Legacy
// documents predate the current record shape, so they are handled as free
// form maps rather than entities.
type MigrationStore interface {
	// SchemaVersion returns the stored schema version, 0 if never set.
	SchemaVersion(ctx context.Context) (int, error)

	// SetSchemaVersion records the schema version.
	SetSchemaVersion(ctx context.Context, version int) error

	// AllGuildsRaw returns every guild document in its stored shape.
	AllGuildsRaw(ctx context.Context) ([]map[string]any, error)

	// ReplaceGuildRaw replaces the stored guild document.
	ReplaceGuildRaw(ctx context.Context, id string, doc map[string]any) error
}
