package entities

// Guild is the persisted configuration for a guild.
type Guild struct {
	// ID is the ID of the guild.
	ID string `json:"id" bson:"id"`

	// Ticketing is the ticketing configuration.
	Ticketing TicketingConfig `json:"ticketing" bson:"ticketing"`
}

// NewGuild creates a guild record with the default ticketing configuration.
// A guild document is created on first access and never explicitly destroyed.
func NewGuild(id string) *Guild {
	return &Guild{
		ID: id,
		Ticketing: TicketingConfig{
			TriggerEmoji: DefaultTriggerEmoji,
			OpenMessage:  DefaultOpenMessage,
			MaxTickets:   1,
			NamePresets: NamePresets{
				Presets: []string{"ticket-{userid}"},
				Chosen:  0,
			},
			Tickets: map[string][]*Ticket{},
		},
	}
}
