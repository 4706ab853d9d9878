package models

// MessageLinkModel is the GORM model for the message_links table. Rows are
// written once per relayed message and never updated or deleted.
type MessageLinkModel struct {
	UserChatID       int64 `gorm:"primaryKey;autoIncrement:false"`
	UserMessageID    int64 `gorm:"primaryKey;autoIncrement:false"`
	RelayedMessageID int64 `gorm:"uniqueIndex;not null"`
	TicketID         uint  `gorm:"not null;index"`
}

func (MessageLinkModel) TableName() string {
	return "message_links"
}
