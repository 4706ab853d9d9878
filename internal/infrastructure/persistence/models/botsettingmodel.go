package models

// BotSettingModel is the GORM model for the bot_settings table.
type BotSettingModel struct {
	SettingKey   string `gorm:"primaryKey;size:100"`
	SettingValue string `gorm:"type:text;not null"`
}

func (BotSettingModel) TableName() string {
	return "bot_settings"
}
