package registry

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porterbot/porter/pkg/custom"
	"github.com/porterbot/porter/pkg/entities"
)

// memStore is an in memory Store. It honours the UpdateGuild contract:
// nothing is written when fn returns an error.
type memStore struct {
	guilds map[string]*entities.Guild
	saves  int
}

func newMemStore() *memStore {
	return &memStore{guilds: map[string]*entities.Guild{}}
}

func (s *memStore) GetGuildByID(_ context.Context, id string) (*entities.Guild, error) {
	g, ok := s.guilds[id]
	if !ok {
		return entities.NewGuild(id), nil
	}
	return cloneGuild(g), nil
}

func (s *memStore) SaveGuild(_ context.Context, guild *entities.Guild) error {
	s.guilds[guild.ID] = cloneGuild(guild)
	s.saves++
	return nil
}

func (s *memStore) UpdateGuild(ctx context.Context, id string, fn func(*entities.Guild) error) error {
	g, err := s.GetGuildByID(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	return s.SaveGuild(ctx, g)
}

func cloneGuild(g *entities.Guild) *entities.Guild {
	out := *g
	out.Ticketing.StaffRoleIDs = append([]string(nil), g.Ticketing.StaffRoleIDs...)
	out.Ticketing.BlockedUserIDs = append([]string(nil), g.Ticketing.BlockedUserIDs...)
	out.Ticketing.NamePresets.Presets = append([]string(nil), g.Ticketing.NamePresets.Presets...)

	out.Ticketing.Tickets = map[string][]*entities.Ticket{}
	for owner, tickets := range g.Ticketing.Tickets {
		cloned := make([]*entities.Ticket, 0, len(tickets))
		for _, t := range tickets {
			c := *t
			c.AddedUserIDs = append([]string(nil), t.AddedUserIDs...)
			cloned = append(cloned, &c)
		}
		out.Ticketing.Tickets[owner] = cloned
	}
	return &out
}

func newTestRegistry(t *testing.T) (*Registry, *memStore) {
	t.Helper()
	store := newMemStore()
	return New(slog.Default(), store), store
}

func openTicket(t *testing.T, r *Registry, guildID, ownerID, channelID string) *entities.Ticket {
	t.Helper()
	ticket, err := r.Open(context.Background(), guildID, ownerID, func(*entities.Guild) (string, error) {
		return channelID, nil
	})
	require.NoError(t, err)
	return ticket
}

func TestOpenRespectsLimit(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	openTicket(t, r, "g1", "owner", "chan1")

	created := false
	_, err := r.Open(ctx, "g1", "owner", func(*entities.Guild) (string, error) {
		created = true
		return "chan2", nil
	})
	assert.ErrorIs(t, err, ErrTicketLimit)
	assert.False(t, created, "create callback must not run once the limit is hit")
	assert.Len(t, store.guilds["g1"].Ticketing.Tickets["owner"], 1)
}

func TestOpenCreateFailureLeavesNothing(t *testing.T) {
	r, store := newTestRegistry(t)

	boom := errors.New("boom")
	_, err := r.Open(context.Background(), "g1", "owner", func(*entities.Guild) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.saves, "a failed open must not persist anything")
}

func TestOpenRaisedLimit(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.SetMaxTickets(ctx, "g1", 3, nil))

	openTicket(t, r, "g1", "owner", "chan1")
	openTicket(t, r, "g1", "owner", "chan2")
	openTicket(t, r, "g1", "owner", "chan3")

	_, err := r.Open(ctx, "g1", "owner", func(*entities.Guild) (string, error) {
		return "chan4", nil
	})
	assert.ErrorIs(t, err, ErrTicketLimit)
}

func TestCloseRemovesRecord(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	openTicket(t, r, "g1", "owner", "chan1")

	removed, err := r.Close(ctx, "g1", "owner", "chan1")
	require.NoError(t, err)
	assert.Equal(t, "chan1", removed.ChannelID)
	assert.Empty(t, store.guilds["g1"].Ticketing.Tickets["owner"])

	// A raced second close finds no record.
	_, err = r.Close(ctx, "g1", "owner", "chan1")
	assert.ErrorIs(t, err, ErrNoTickets)
}

func TestCloseDisambiguation(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.SetMaxTickets(ctx, "g1", 2, nil))
	openTicket(t, r, "g1", "owner", "chan1")
	openTicket(t, r, "g1", "owner", "chan2")

	// Issued outside either ticket channel.
	_, err := r.Close(ctx, "g1", "owner", "elsewhere")
	assert.ErrorIs(t, err, ErrAmbiguousTicket)

	removed, err := r.Close(ctx, "g1", "owner", "chan2")
	require.NoError(t, err)
	assert.Equal(t, "chan2", removed.ChannelID)
}

func TestCloseSingleTicketFromAnywhere(t *testing.T) {
	r, _ := newTestRegistry(t)

	openTicket(t, r, "g1", "owner", "chan1")

	// One open ticket resolves regardless of where the command ran.
	removed, err := r.Close(context.Background(), "g1", "owner", "elsewhere")
	require.NoError(t, err)
	assert.Equal(t, "chan1", removed.ChannelID)
}

func TestCloseAllForOwner(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.SetMaxTickets(ctx, "g1", 2, nil))
	openTicket(t, r, "g1", "owner", "chan1")
	openTicket(t, r, "g1", "owner", "chan2")
	openTicket(t, r, "g1", "other", "chan3")

	removed, err := r.CloseAllForOwner(ctx, "g1", "owner")
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Empty(t, store.guilds["g1"].Ticketing.Tickets["owner"])
	assert.Len(t, store.guilds["g1"].Ticketing.Tickets["other"], 1)

	_, err = r.CloseAllForOwner(ctx, "g1", "owner")
	assert.ErrorIs(t, err, ErrNoTickets)
}

func TestSetLockedIdempotent(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	openTicket(t, r, "g1", "owner", "chan1")

	owner, ticket, err := r.SetLocked(ctx, "g1", "chan1", true)
	require.NoError(t, err)
	assert.Equal(t, "owner", owner)
	assert.True(t, ticket.Locked)

	// Locking a locked ticket is not an error.
	_, ticket, err = r.SetLocked(ctx, "g1", "chan1", true)
	require.NoError(t, err)
	assert.True(t, ticket.Locked)

	_, ticket, err = r.SetLocked(ctx, "g1", "chan1", false)
	require.NoError(t, err)
	assert.False(t, ticket.Locked)

	_, _, err = r.SetLocked(ctx, "g1", "nochan", true)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestAssignRules(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	openTicket(t, r, "g1", "owner", "chan1")

	_, err := r.Assign(ctx, "g1", "chan1", "owner")
	assert.ErrorIs(t, err, ErrAssignOwner)

	owner, err := r.Assign(ctx, "g1", "chan1", "staff1")
	require.NoError(t, err)
	assert.Equal(t, "owner", owner)

	_, err = r.Assign(ctx, "g1", "chan1", "staff1")
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	// Reassignment to someone else is fine.
	_, err = r.Assign(ctx, "g1", "chan1", "staff2")
	require.NoError(t, err)
}

func TestAddRemoveMember(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	openTicket(t, r, "g1", "owner", "chan1")

	ticket, err := r.AddMember(ctx, "g1", "owner", "chan1", "friend")
	require.NoError(t, err)
	assert.Equal(t, []string{"friend"}, ticket.AddedUserIDs)

	_, err = r.AddMember(ctx, "g1", "owner", "chan1", "friend")
	assert.ErrorIs(t, err, ErrAlreadyAdded)

	_, err = r.RemoveMember(ctx, "g1", "owner", "chan1", "stranger")
	assert.ErrorIs(t, err, ErrNotAdded)

	ticket, err = r.RemoveMember(ctx, "g1", "owner", "chan1", "friend")
	require.NoError(t, err)
	assert.Empty(t, ticket.AddedUserIDs)
	assert.Empty(t, store.guilds["g1"].Ticketing.Tickets["owner"][0].AddedUserIDs)
}

func TestFindByChannel(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	openTicket(t, r, "g1", "owner", "chan1")
	openTicket(t, r, "g1", "other", "chan2")

	owner, ticket, err := r.FindByChannel(ctx, "g1", "chan2")
	require.NoError(t, err)
	assert.Equal(t, "other", owner)
	assert.Equal(t, "chan2", ticket.ChannelID)

	_, _, err = r.FindByChannel(ctx, "g1", "nochan")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestQueueOrderingAndPaging(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	// Seed tickets with a spread of open times across two owners.
	guild := entities.NewGuild("g1")
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		owner := "alice"
		if i%2 == 0 {
			owner = "bob"
		}
		guild.Ticketing.Tickets[owner] = append(guild.Ticketing.Tickets[owner], &entities.Ticket{
			ChannelID: string(rune('a' + i)),
			OpenedAt:  custom.Datetime(base.Add(time.Duration(i) * time.Minute)),
		})
	}
	require.NoError(t, store.SaveGuild(ctx, guild))

	pages, err := r.Queue(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Len(t, pages[0], QueuePageSize)
	assert.Len(t, pages[1], 2)

	// Newest first, across both owners and page boundaries.
	var prev time.Time
	for _, page := range pages {
		for _, e := range page {
			opened := e.Ticket.OpenedAt.Time()
			if !prev.IsZero() {
				assert.False(t, opened.After(prev), "queue must be sorted newest first")
			}
			prev = opened
		}
	}
}

func TestQueueEmpty(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Queue(context.Background(), "g1")
	assert.ErrorIs(t, err, ErrNoTickets)
}

func TestToggleStaffRoleAndBlocked(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	added, err := r.ToggleStaffRole(ctx, "g1", "role1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.ToggleStaffRole(ctx, "g1", "role1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, store.guilds["g1"].Ticketing.StaffRoleIDs)

	blocked, err := r.ToggleBlocked(ctx, "g1", "user1")
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.True(t, store.guilds["g1"].Ticketing.IsBlocked("user1"))

	blocked, err = r.ToggleBlocked(ctx, "g1", "user1")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestSetMaxTicketsValidation(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.SetMaxTickets(ctx, "g1", 0, nil), ErrMaxTicketsTooLow)
	assert.ErrorIs(t, r.SetMaxTickets(ctx, "g1", -3, nil), ErrMaxTicketsTooLow)

	notify := true
	require.NoError(t, r.SetMaxTickets(ctx, "g1", 5, &notify))
	assert.Equal(t, 5, store.guilds["g1"].Ticketing.MaxTickets)
	assert.True(t, store.guilds["g1"].Ticketing.NotifyOnLimit)

	// Omitting notify leaves the flag alone.
	require.NoError(t, r.SetMaxTickets(ctx, "g1", 2, nil))
	assert.True(t, store.guilds["g1"].Ticketing.NotifyOnLimit)
}
