// Package messages holds the user facing reply strings for the bot.
package messages

const (
	// ErrUserErrorProcessing is the generic reply for an unexpected failure.
	ErrUserErrorProcessing = "Something went wrong while processing that. Please try again."

	// ErrNotStaff is the reply for a member using a staff only command.
	ErrNotStaff = "Only staff members can do that."

	// ErrStaffOnlyClose is the reply when members cannot close their own tickets.
	ErrStaffOnlyClose = "Only staff members can close tickets."

	// ErrStaffOnlyEdit is the reply when members cannot add or remove users.
	ErrStaffOnlyEdit = "Only staff members can add or remove someone."

	// ErrStaffOnlyRename is the reply when members cannot rename tickets.
	ErrStaffOnlyRename = "Only staff members can rename tickets."

	// ErrAddStaff is the reply for trying to add a staff member to a ticket.
	ErrAddStaff = "You can't add staff to a ticket."

	// ErrRemoveStaff is the reply for trying to remove a staff member from a ticket.
	ErrRemoveStaff = "You can't remove staff from a ticket."

	// ErrNoOpenTickets is the reply when the resolved owner has no open tickets.
	ErrNoOpenTickets = "You don't have any tickets open."

	// ErrAmbiguousTicket is the reply when the owner has several open tickets
	// and the command was not issued inside one of them.
	ErrAmbiguousTicket = "You have multiple tickets open. Run this again inside the ticket you mean."

	// ErrTicketNotFound is the reply when no ticket matches the channel.
	ErrTicketNotFound = "I couldn't find a ticket for that channel."

	// ErrChannelGone is the reply when the ticket channel was deleted out of band.
	ErrChannelGone = "The ticket channel has been deleted."

	// ErrNoManageChannels is the reply when the bot lost channel permissions.
	ErrNoManageChannels = "I no longer have permission to manage channels, so I can't do anything with this ticket."

	// ErrNameTooLong is the reply for a rename over the channel name limit.
	ErrNameTooLong = "Let's keep that under 100 characters."

	// TicketLimitDM is sent to a member who is at their open ticket limit.
	TicketLimitDM = "Sorry, you can't open any more tickets in %s. Please allow staff to resolve your current ones first."
)
