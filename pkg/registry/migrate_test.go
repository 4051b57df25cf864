package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memMigrationStore is an in memory MigrationStore over raw guild documents.
type memMigrationStore struct {
	version  int
	docs     map[string]map[string]any
	loads    int
	replaces int
}

func newMemMigrationStore(version int, docs ...map[string]any) *memMigrationStore {
	s := &memMigrationStore{version: version, docs: map[string]map[string]any{}}
	for _, d := range docs {
		s.docs[d["id"].(string)] = d
	}
	return s
}

func (s *memMigrationStore) SchemaVersion(context.Context) (int, error) {
	return s.version, nil
}

func (s *memMigrationStore) SetSchemaVersion(_ context.Context, version int) error {
	s.version = version
	return nil
}

func (s *memMigrationStore) AllGuildsRaw(context.Context) ([]map[string]any, error) {
	s.loads++
	out := make([]map[string]any, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out, nil
}

func (s *memMigrationStore) ReplaceGuildRaw(_ context.Context, id string, doc map[string]any) error {
	s.replaces++
	s.docs[id] = doc
	return nil
}

// ownerTickets digs the ticket list for an owner out of a raw document.
func ownerTickets(t *testing.T, doc map[string]any, owner string) []any {
	t.Helper()
	ticketing, ok := doc["ticketing"].(map[string]any)
	require.True(t, ok)
	tickets, ok := ticketing["tickets"].(map[string]any)
	require.True(t, ok)
	list, ok := tickets[owner].([]any)
	require.True(t, ok, "owner entry should be a list after migration")
	return list
}

func rawGuild(id string, tickets map[string]any) map[string]any {
	return map[string]any{
		"id": id,
		"ticketing": map[string]any{
			"tickets": tickets,
		},
	}
}

func TestMigrateBareChannel(t *testing.T) {
	// Oldest shape: owner maps straight to a channel ID, stored numerically.
	store := newMemMigrationStore(0, rawGuild("g1", map[string]any{
		"owner": float64(111222333),
	}))

	require.NoError(t, Migrate(context.Background(), store, slog.Default()))
	assert.Equal(t, CurrentSchemaVersion, store.version)

	list := ownerTickets(t, store.docs["g1"], "owner")
	require.Len(t, list, 1)
	ticket := list[0].(map[string]any)
	assert.Equal(t, "111222333", ticket["channel"])
	assert.Equal(t, []any{}, ticket["added"])
	assert.Equal(t, "", ticket["assigned"])
	assert.Equal(t, false, ticket["locked"])
}

func TestMigrateSingleTicketObject(t *testing.T) {
	// Middle shape: owner maps to one ticket object with an added list.
	store := newMemMigrationStore(1, rawGuild("g1", map[string]any{
		"owner": map[string]any{
			"channel": "chan1",
			"added":   []any{"friend"},
		},
	}))

	require.NoError(t, Migrate(context.Background(), store, slog.Default()))

	list := ownerTickets(t, store.docs["g1"], "owner")
	require.Len(t, list, 1)
	ticket := list[0].(map[string]any)
	assert.Equal(t, "chan1", ticket["channel"])
	assert.Equal(t, []any{"friend"}, ticket["added"])
	assert.Equal(t, "", ticket["assigned"])
	assert.Equal(t, false, ticket["locked"])
}

func TestMigrateAssignedNormalisation(t *testing.T) {
	// Legacy unassigned tickets stored the number zero.
	store := newMemMigrationStore(2, rawGuild("g1", map[string]any{
		"alice": []any{
			map[string]any{"channel": "c1", "added": []any{}, "assigned": float64(0)},
		},
		"bob": []any{
			map[string]any{"channel": "c2", "added": []any{}, "assigned": float64(999888777)},
		},
	}))

	require.NoError(t, Migrate(context.Background(), store, slog.Default()))

	alice := ownerTickets(t, store.docs["g1"], "alice")[0].(map[string]any)
	assert.Equal(t, "", alice["assigned"])

	bob := ownerTickets(t, store.docs["g1"], "bob")[0].(map[string]any)
	assert.Equal(t, "999888777", bob["assigned"])
}

func TestMigrateIdempotent(t *testing.T) {
	store := newMemMigrationStore(0, rawGuild("g1", map[string]any{
		"owner": float64(111),
	}))

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, store, slog.Default()))
	first := ownerTickets(t, store.docs["g1"], "owner")

	// A second run is a versioned no-op: nothing is loaded or rewritten.
	loads, replaces := store.loads, store.replaces
	require.NoError(t, Migrate(ctx, store, slog.Default()))
	assert.Equal(t, loads, store.loads)
	assert.Equal(t, replaces, store.replaces)
	assert.Equal(t, first, ownerTickets(t, store.docs["g1"], "owner"))
}

func TestMigrateUpgradedShapesPassThrough(t *testing.T) {
	// Running every pass over fully current data changes nothing.
	current := rawGuild("g1", map[string]any{
		"owner": []any{
			map[string]any{
				"channel":  "c1",
				"added":    []any{"x"},
				"assigned": "staff1",
				"locked":   true,
			},
		},
	})
	store := newMemMigrationStore(0, current)

	require.NoError(t, Migrate(context.Background(), store, slog.Default()))

	ticket := ownerTickets(t, store.docs["g1"], "owner")[0].(map[string]any)
	assert.Equal(t, "c1", ticket["channel"])
	assert.Equal(t, []any{"x"}, ticket["added"])
	assert.Equal(t, "staff1", ticket["assigned"])
	assert.Equal(t, true, ticket["locked"])
}

func TestMigrateMultipleGuilds(t *testing.T) {
	store := newMemMigrationStore(0,
		rawGuild("g1", map[string]any{"a": float64(1)}),
		rawGuild("g2", map[string]any{"b": "2"}),
	)

	require.NoError(t, Migrate(context.Background(), store, slog.Default()))

	assert.Equal(t, "1", ownerTickets(t, store.docs["g1"], "a")[0].(map[string]any)["channel"])
	assert.Equal(t, "2", ownerTickets(t, store.docs["g2"], "b")[0].(map[string]any)["channel"])
}
