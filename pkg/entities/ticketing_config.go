package entities

const (
	// DefaultTriggerEmoji is the admission tickets emoji.
	DefaultTriggerEmoji = "\U0001F39F"

	// DefaultOpenMessage is the sentinel that selects the built in greeting.
	DefaultOpenMessage = "{default}"
)

// TicketingConfig is the per guild ticketing configuration. One exists per
// guild, created with defaults on first access.
type TicketingConfig struct {
	// Enabled is whether the open ticket reaction listener is active.
	Enabled bool `json:"enabled" bson:"enabled"`

	// TriggerChannelID and TriggerMessageID reference the message users react
	// to in order to open a ticket. Empty strings mean unset.
	TriggerChannelID string `json:"trigger_channel_id" bson:"trigger_channel_id"`
	TriggerMessageID string `json:"trigger_message_id" bson:"trigger_message_id"`

	// TriggerEmoji is either a custom emoji ID or a unicode emoji string.
	TriggerEmoji string `json:"trigger_emoji" bson:"trigger_emoji"`

	// OpenMessage is the greeting template posted in a new ticket channel.
	// Supports {mention}, {username} and {id}. "{default}" selects the
	// built in greeting.
	OpenMessage string `json:"open_message" bson:"open_message"`

	// CategoryID is the category that new ticket channels are created under.
	CategoryID string `json:"category_id" bson:"category_id"`

	// MaxTickets is the maximum number of tickets a user can have open at
	// once. Always at least 1.
	MaxTickets int `json:"max_tickets" bson:"max_tickets"`

	// NotifyOnLimit is whether to DM a user who hits the ticket limit.
	NotifyOnLimit bool `json:"notify_on_limit" bson:"notify_on_limit"`

	// Self service permission flags for ticket owners.
	MemberCanClose       bool `json:"member_can_close" bson:"member_can_close"`
	MemberCanEditMembers bool `json:"member_can_edit_members" bson:"member_can_edit_members"`
	MemberCanRename      bool `json:"member_can_rename" bson:"member_can_rename"`

	// Archive is the archive settings for closed tickets.
	Archive ArchiveConfig `json:"archive" bson:"archive"`

	// ReportChannelID is the channel opened and closed tickets are reported
	// to. Empty string disables reporting.
	ReportChannelID string `json:"report_channel_id" bson:"report_channel_id"`

	// DMOnClose is whether to DM the ticket owner when their ticket closes.
	DMOnClose bool `json:"dm_on_close" bson:"dm_on_close"`

	// CloseOnLeave is whether tickets close when their owner leaves.
	CloseOnLeave bool `json:"close_on_leave" bson:"close_on_leave"`

	// StaffRoleIDs are the roles granted access to tickets.
	StaffRoleIDs []string `json:"staff_role_ids" bson:"staff_role_ids"`

	// BlockedUserIDs are users who cannot open tickets.
	BlockedUserIDs []string `json:"blocked_user_ids" bson:"blocked_user_ids"`

	// NamePresets are the channel name templates for new tickets.
	NamePresets NamePresets `json:"name_presets" bson:"name_presets"`

	// Tickets maps owner user ID to their open tickets in open order.
	Tickets map[string][]*Ticket `json:"tickets" bson:"tickets"`
}

// ArchiveConfig controls what happens to closed ticket channels.
type ArchiveConfig struct {
	// Enabled is whether closed tickets are archived rather than deleted.
	Enabled bool `json:"enabled" bson:"enabled"`

	// CategoryID is the category archived tickets are moved to.
	CategoryID string `json:"category_id" bson:"category_id"`
}

// NamePresets is the ordered set of name templates plus the chosen index.
// Chosen always indexes a live preset.
type NamePresets struct {
	Presets []string `json:"presets" bson:"presets"`
	Chosen  int      `json:"chosen" bson:"chosen"`
}

// TriggerSet reports whether a trigger message has been configured.
func (c *TicketingConfig) TriggerSet() bool {
	return c.TriggerChannelID != "" && c.TriggerMessageID != ""
}

// IsBlocked reports whether the user is on the block list.
func (c *TicketingConfig) IsBlocked(userID string) bool {
	for _, id := range c.BlockedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsStaffRole reports whether the role is a configured staff role.
func (c *TicketingConfig) IsStaffRole(roleID string) bool {
	for _, id := range c.StaffRoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
