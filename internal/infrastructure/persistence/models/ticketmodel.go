package models

// TicketModel is the GORM model for the tickets table. The partial unique
// index on user_chat_id enforces at most one open ticket per user at the
// storage layer; the relay service additionally serializes creation per user.
type TicketModel struct {
	ID         uint   `gorm:"primaryKey"`
	UserChatID int64  `gorm:"not null;index;uniqueIndex:idx_tickets_open_user,where:status = 'open'"`
	Username   string `gorm:"size:255"`
	FirstName  string `gorm:"size:255"`
	Status     string `gorm:"size:20;not null;index"`
	TopicID    *int64
	CreatedAt  int64 `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt  int64 `gorm:"autoUpdateTime:milli;not null;index"`

	// Note: no foreign key constraints or associations. Relationships are
	// managed by application business logic.
}

func (TicketModel) TableName() string {
	return "tickets"
}
