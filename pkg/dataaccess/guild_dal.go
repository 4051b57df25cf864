package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/porterbot/porter/pkg/dataaccess/monitoring"
	"github.com/porterbot/porter/pkg/entities"
	"github.com/porterbot/porter/pkg/logging"
)

const guildDalName = "guild_dal"

// GuildDal is the data access layer for guild ticketing configuration. It
// implements both registry.Store and registry.MigrationStore.
type GuildDal interface {
	// GetGuildByID gets a guild by ID. Unknown guilds come back with the
	// default configuration.
	GetGuildByID(ctx context.Context, id string) (*entities.Guild, error)

	// SaveGuild upserts a guild.
	SaveGuild(ctx context.Context, guild *entities.Guild) error

	// UpdateGuild applies fn to the guild record and persists the result.
	UpdateGuild(ctx context.Context, id string, fn func(*entities.Guild) error) error

	// SchemaVersion returns the stored schema version, 0 if never set.
	SchemaVersion(ctx context.Context) (int, error)

	// SetSchemaVersion records the schema version.
	SetSchemaVersion(ctx context.Context, version int) error

	// AllGuildsRaw returns every guild document in its stored shape.
	AllGuildsRaw(ctx context.Context) ([]map[string]any, error)

	// ReplaceGuildRaw replaces the stored guild document.
	ReplaceGuildRaw(ctx context.Context, id string, doc map[string]any) error
}

type guildDalImpl struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewGuildDal creates a new guild data access layer.
func NewGuildDal(l *slog.Logger) GuildDal {
	l = l.With(slog.String(logging.KeyDal, guildDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &guildDalImpl{
		l:      l,
		client: MongoDB,
	}
}

func (g *guildDalImpl) collection(name string) *mongo.Collection {
	return g.client.Database(mongoDatabase).Collection(name)
}

// observe starts the prometheus metrics for a query and returns the timer.
func observe(query, collection string) *prometheus.Timer {
	monitoring.MongoTotalRequests.WithLabelValues(guildDalName, query, mongoDatabase, collection).Inc()
	return prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildDalName, query, mongoDatabase, collection))
}

// GetGuildByID gets a guild by ID, defaulted if absent.
func (g *guildDalImpl) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	t := observe("get_guild_by_id", guildsCollection)
	defer t.ObserveDuration()

	guild := new(entities.Guild)
	err := g.collection(guildsCollection).FindOne(ctx, bson.M{"id": id}).Decode(guild)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entities.NewGuild(id), nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}

	if guild.Ticketing.Tickets == nil {
		guild.Ticketing.Tickets = map[string][]*entities.Ticket{}
	}
	return guild, nil
}

func (g *guildDalImpl) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	t := observe("save_guild", guildsCollection)
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := g.collection(guildsCollection).UpdateOne(ctx, bson.M{"id": guild.ID}, bson.M{"$set": guild}, opts)
	if err != nil {
		return fmt.Errorf("error updating guild: %w", err)
	}
	return nil
}

// UpdateGuild reads the guild, applies fn and writes the result. Callers are
// expected to serialise updates per guild; the registry holds a guild lock
// around this call.
func (g *guildDalImpl) UpdateGuild(ctx context.Context, id string, fn func(*entities.Guild) error) error {
	guild, err := g.GetGuildByID(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(guild); err != nil {
		return err
	}
	return g.SaveGuild(ctx, guild)
}

func (g *guildDalImpl) SchemaVersion(ctx context.Context) (int, error) {
	t := observe("schema_version", metaCollection)
	defer t.ObserveDuration()

	var doc struct {
		Version int `bson:"version"`
	}
	err := g.collection(metaCollection).FindOne(ctx, bson.M{"_id": "schema"}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("error getting schema version: %w", err)
	}
	return doc.Version, nil
}

func (g *guildDalImpl) SetSchemaVersion(ctx context.Context, version int) error {
	t := observe("set_schema_version", metaCollection)
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := g.collection(metaCollection).UpdateOne(ctx,
		bson.M{"_id": "schema"},
		bson.M{"$set": bson.M{"version": version}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("error setting schema version: %w", err)
	}
	return nil
}

func (g *guildDalImpl) AllGuildsRaw(ctx context.Context) ([]map[string]any, error) {
	t := observe("all_guilds_raw", guildsCollection)
	defer t.ObserveDuration()

	cursor, err := g.collection(guildsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error listing guilds: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []map[string]any
	for cursor.Next(ctx) {
		doc := map[string]any{}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding guild: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guilds: %w", err)
	}
	return docs, nil
}

func (g *guildDalImpl) ReplaceGuildRaw(ctx context.Context, id string, doc map[string]any) error {
	t := observe("replace_guild_raw", guildsCollection)
	defer t.ObserveDuration()

	delete(doc, "_id")

	opts := options.Replace().SetUpsert(true)
	_, err := g.collection(guildsCollection).ReplaceOne(ctx, bson.M{"id": id}, doc, opts)
	if err != nil {
		return fmt.Errorf("error replacing guild: %w", err)
	}
	return nil
}
