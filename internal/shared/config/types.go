package config

import "fmt"

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// DatabaseConfig holds the sqlite database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GetAddr returns the host:port address for the Redis client.
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TelegramConfig holds the bot transport configuration.
type TelegramConfig struct {
	BotToken       string  `mapstructure:"bot_token"`
	SupportChatID  int64   `mapstructure:"support_chat_id"`
	SupportTopicID int64   `mapstructure:"support_topic_id"`
	AdminIDs       []int64 `mapstructure:"admin_ids"`
	PollTimeout    int     `mapstructure:"poll_timeout"`
}

// IsAdmin reports whether the given user is a configured administrator.
func (c *TelegramConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AppConfig holds application-level tunables.
type AppConfig struct {
	Timezone string `mapstructure:"timezone"`
}
