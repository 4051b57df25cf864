// Package registry implements the per guild support ticket state machine.
// All mutations of a guild's ticket map go through a single guild scoped
// critical section, so two overlapping operations can never read-modify-write
// the same record.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/porterbot/porter/pkg/custom"
	"github.com/porterbot/porter/pkg/entities"
	"github.com/porterbot/porter/pkg/logging"
)

// QueuePageSize is the number of tickets shown per queue page.
const QueuePageSize = 5

// Registry is the ticket state machine over a settings Store.
type Registry struct {
	// l is the logger.
	l *slog.Logger

	// store is the persisted settings store.
	store Store

	// mu guards guilds.
	mu sync.Mutex

	// guilds holds one lock per guild, created lazily.
	guilds map[string]*sync.Mutex
}

// New creates a new Registry.
func New(l *slog.Logger, store Store) *Registry {
	return &Registry{
		l:      l,
		store:  store,
		guilds: make(map[string]*sync.Mutex),
	}
}

// guildLock returns the lock serialising all mutations for the guild.
func (r *Registry) guildLock(guildID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.guilds[guildID]
	if !ok {
		l = new(sync.Mutex)
		r.guilds[guildID] = l
	}
	return l
}

// update runs fn against the guild record inside the guild's critical
// section and persists the result.
func (r *Registry) update(ctx context.Context, guildID string, fn func(*entities.Guild) error) error {
	lock := r.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	return r.store.UpdateGuild(ctx, guildID, fn)
}

// Config returns the guild record, defaulted if the guild is unknown.
func (r *Registry) Config(ctx context.Context, guildID string) (*entities.Guild, error) {
	return r.store.GetGuildByID(ctx, guildID)
}

// Open appends a new ticket for the owner. The limit check, the channel
// creation callback and the record append all run inside the guild's
// critical section, so two concurrent opens for the same owner cannot both
// pass the count check.
//
// create is called once the preconditions hold and must return the ID of the
// newly created ticket channel.
func (r *Registry) Open(ctx context.Context, guildID, ownerID string, create func(g *entities.Guild) (string, error)) (*entities.Ticket, error) {
	var ticket *entities.Ticket

	err := r.update(ctx, guildID, func(g *entities.Guild) error {
		if len(g.Ticketing.Tickets[ownerID]) >= g.Ticketing.MaxTickets {
			return ErrTicketLimit
		}

		channelID, err := create(g)
		if err != nil {
			return fmt.Errorf("error creating ticket channel: %w", err)
		}

		ticket = &entities.Ticket{
			ChannelID:    channelID,
			AddedUserIDs: []string{},
			OpenedAt:     custom.Now(),
		}

		if g.Ticketing.Tickets == nil {
			g.Ticketing.Tickets = map[string][]*entities.Ticket{}
		}
		g.Ticketing.Tickets[ownerID] = append(g.Ticketing.Tickets[ownerID], ticket)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.l.Debug("Ticket opened",
		slog.String(logging.KeyGuild, guildID),
		slog.String(logging.KeyUser, ownerID),
		slog.String(logging.KeyChannel, ticket.ChannelID),
	)
	return ticket, nil
}

// resolveIndex finds the index of the owner's ticket targeted from
// channelID. With a single open ticket any channel resolves it; with several
// the command must be issued inside the ticket channel.
func resolveIndex(tickets []*entities.Ticket, channelID string) (int, error) {
	switch {
	case len(tickets) == 0:
		return 0, ErrNoTickets
	case len(tickets) == 1:
		return 0, nil
	}

	for i, t := range tickets {
		if t.ChannelID == channelID {
			return i, nil
		}
	}
	return 0, ErrAmbiguousTicket
}

// Close removes the owner's ticket resolved from channelID. The record is
// removed atomically before any slow cleanup happens, so a second close on
// the same ticket fails with ErrNoTickets or ErrTicketNotFound instead of
// double processing. The removed record is returned for the caller's
// cleanup side effects.
func (r *Registry) Close(ctx context.Context, guildID, ownerID, channelID string) (*entities.Ticket, error) {
	var removed *entities.Ticket

	err := r.update(ctx, guildID, func(g *entities.Guild) error {
		tickets := g.Ticketing.Tickets[ownerID]
		idx, err := resolveIndex(tickets, channelID)
		if err != nil {
			return err
		}

		removed = tickets[idx]
		g.Ticketing.Tickets[ownerID] = append(tickets[:idx], tickets[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.l.Debug("Ticket closed",
		slog.String(logging.KeyGuild, guildID),
		slog.String(logging.KeyUser, ownerID),
		slog.String(logging.KeyChannel, removed.ChannelID),
	)
	return removed, nil
}

// CloseAllForOwner removes every ticket the owner has open and returns the
// removed records. Used by the member leave reconciliation.
func (r *Registry) CloseAllForOwner(ctx context.Context, guildID, ownerID string) ([]*entities.Ticket, error) {
	var removed []*entities.Ticket

	err := r.update(ctx, guildID, func(g *entities.Guild) error {
		removed = g.Ticketing.Tickets[ownerID]
		if len(removed) == 0 {
			return ErrNoTickets
		}
		delete(g.Ticketing.Tickets, ownerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// FindByChannel resolves a ticket by its channel ID, scanning every owner's
// list. Linear in the number of open tickets, which is expected to be small.
func (r *Registry) FindByChannel(ctx context.Context, guildID, channelID string) (ownerID string, ticket *entities.Ticket, err error) {
	g, err := r.store.GetGuildByID(ctx, guildID)
	if err != nil {
		return "", nil, err
	}

	for owner, tickets := range g.Ticketing.Tickets {
		for _, t := range tickets {
			if t.ChannelID == channelID {
				return owner, t, nil
			}
		}
	}
	return "", nil, ErrTicketNotFound
}

// mutateByChannel applies fn to the ticket resolved by channel ID inside the
// guild's critical section.
func (r *Registry) mutateByChannel(ctx context.Context, guildID, channelID string, fn func(ownerID string, t *entities.Ticket) error) error {
	return r.update(ctx, guildID, func(g *entities.Guild) error {
		for owner, tickets := range g.Ticketing.Tickets {
			for _, t := range tickets {
				if t.ChannelID == channelID {
					return fn(owner, t)
				}
			}
		}
		return ErrTicketNotFound
	})
}

// SetLocked sets the locked flag on the ticket in the channel. Setting the
// flag to its current value is not an error; lock and unlock are idempotent.
func (r *Registry) SetLocked(ctx context.Context, guildID, channelID string, locked bool) (ownerID string, ticket *entities.Ticket, err error) {
	err = r.mutateByChannel(ctx, guildID, channelID, func(owner string, t *entities.Ticket) error {
		t.Locked = locked
		ownerID = owner
		ticket = t
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return ownerID, ticket, nil
}

// Assign sets the assigned staff member on the ticket in the channel.
// Assigning the ticket owner or the already assigned member is rejected.
func (r *Registry) Assign(ctx context.Context, guildID, channelID, staffID string) (ownerID string, err error) {
	err = r.mutateByChannel(ctx, guildID, channelID, func(owner string, t *entities.Ticket) error {
		if staffID == owner {
			return ErrAssignOwner
		}
		if staffID == t.AssignedStaffID {
			return ErrAlreadyAssigned
		}
		t.AssignedStaffID = staffID
		ownerID = owner
		return nil
	})
	if err != nil {
		return "", err
	}
	return ownerID, nil
}

// AddMember grants a user access to the owner's ticket resolved from
// channelID. Staff tier checks happen at the command layer; the registry
// only enforces the record invariants.
func (r *Registry) AddMember(ctx context.Context, guildID, ownerID, channelID, userID string) (*entities.Ticket, error) {
	var ticket *entities.Ticket

	err := r.update(ctx, guildID, func(g *entities.Guild) error {
		tickets := g.Ticketing.Tickets[ownerID]
		idx, err := resolveIndex(tickets, channelID)
		if err != nil {
			return err
		}

		t := tickets[idx]
		if t.HasAddedUser(userID) {
			return ErrAlreadyAdded
		}
		t.AddedUserIDs = append(t.AddedUserIDs, userID)
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// RemoveMember revokes a user's access to the owner's ticket resolved from
// channelID.
func (r *Registry) RemoveMember(ctx context.Context, guildID, ownerID, channelID, userID string) (*entities.Ticket, error) {
	var ticket *entities.Ticket

	err := r.update(ctx, guildID, func(g *entities.Guild) error {
		tickets := g.Ticketing.Tickets[ownerID]
		idx, err := resolveIndex(tickets, channelID)
		if err != nil {
			return err
		}

		t := tickets[idx]
		if !t.HasAddedUser(userID) {
			return ErrNotAdded
		}
		for i, id := range t.AddedUserIDs {
			if id == userID {
				t.AddedUserIDs = append(t.AddedUserIDs[:i], t.AddedUserIDs[i+1:]...)
				break
			}
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// QueueEntry is one ticket in the queue listing, carrying its owner.
type QueueEntry struct {
	OwnerID string
	Ticket  *entities.Ticket
}

// Queue returns every open ticket in the guild sorted by opened time
// descending, grouped into pages of QueuePageSize.
func (r *Registry) Queue(ctx context.Context, guildID string) ([][]QueueEntry, error) {
	g, err := r.store.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var all []QueueEntry
	for owner, tickets := range g.Ticketing.Tickets {
		for _, t := range tickets {
			all = append(all, QueueEntry{OwnerID: owner, Ticket: t})
		}
	}

	if len(all) == 0 {
		return nil, ErrNoTickets
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Ticket.OpenedAt.Time().After(all[j].Ticket.OpenedAt.Time())
	})

	var pages [][]QueueEntry
	for len(all) > 0 {
		n := QueuePageSize
		if len(all) < n {
			n = len(all)
		}
		pages = append(pages, all[:n])
		all = all[n:]
	}
	return pages, nil
}
