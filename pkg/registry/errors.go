package registry

import "errors"

// User input errors. These abort the operation with state unchanged and are
// reported back to the invoker directly.
var (
	// ErrTicketLimit is returned when the owner is at their open ticket limit.
	ErrTicketLimit = errors.New("ticket limit reached")

	// ErrNoTickets is returned when the resolved owner has no open tickets.
	ErrNoTickets = errors.New("no open tickets")

	// ErrAmbiguousTicket is returned when the owner has several open tickets
	// and none matches the channel the command was issued in.
	ErrAmbiguousTicket = errors.New("ambiguous ticket")

	// ErrTicketNotFound is returned when no ticket matches the channel.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrAlreadyAssigned is returned when assigning the staff member that is
	// already assigned to the ticket.
	ErrAlreadyAssigned = errors.New("staff member already assigned")

	// ErrAssignOwner is returned when assigning the ticket owner to their
	// own ticket.
	ErrAssignOwner = errors.New("cannot assign the ticket owner")

	// ErrAlreadyAdded is returned when adding a user twice to a ticket.
	ErrAlreadyAdded = errors.New("user already added")

	// ErrNotAdded is returned when removing a user that was never added.
	ErrNotAdded = errors.New("user not added")

	// ErrMaxTicketsTooLow is returned for a ticket limit below 1.
	ErrMaxTicketsTooLow = errors.New("max tickets must be at least 1")

	// ErrPresetChosen is returned when deleting the chosen name preset.
	ErrPresetChosen = errors.New("cannot delete the chosen preset")

	// ErrPresetIndex is returned for an out of range preset index.
	ErrPresetIndex = errors.New("no preset at that index")

	// ErrPresetAlreadyChosen is returned when selecting the already chosen
	// preset.
	ErrPresetAlreadyChosen = errors.New("preset already chosen")
)
