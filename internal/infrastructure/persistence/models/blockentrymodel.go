package models

// BlockEntryModel is the GORM model for the blocked_users table. Presence of
// a row means the user is blocked.
type BlockEntryModel struct {
	UserChatID int64 `gorm:"primaryKey;autoIncrement:false"`
	OperatorID int64
	BlockedAt  int64 `gorm:"not null"`
}

func (BlockEntryModel) TableName() string {
	return "blocked_users"
}
