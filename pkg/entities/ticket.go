package entities

import "github.com/porterbot/porter/pkg/custom"

// Ticket is one open support conversation. It is owned by the guild's ticket
// map under the owner's user ID, and its channel ID is unique across all
// owners in the guild at any instant. The record is removed when the ticket
// is closed.
type Ticket struct {
	// ChannelID is the ID of the ticket channel. Primary identity within a
	// guild.
	ChannelID string `json:"channel_id" bson:"channel"`

	// AddedUserIDs are users granted access besides the owner.
	AddedUserIDs []string `json:"added_user_ids" bson:"added"`

	// OpenedAt is when the ticket was opened. Ordering key for the queue.
	OpenedAt custom.Datetime `json:"opened_at" bson:"opened"`

	// AssignedStaffID is the assigned staff member, empty if unassigned.
	AssignedStaffID string `json:"assigned_staff_id" bson:"assigned"`

	// Locked is whether the ticket is locked against member replies.
	Locked bool `json:"locked" bson:"locked"`
}

// HasAddedUser reports whether the user has been added to the ticket.
func (t *Ticket) HasAddedUser(userID string) bool {
	for _, id := range t.AddedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
