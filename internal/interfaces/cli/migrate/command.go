package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relaydesk/relaydesk/internal/infrastructure/config"
	"github.com/relaydesk/relaydesk/internal/infrastructure/database"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  `Create or update the sqlite schema without starting the bot.`,
		RunE:  run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(database.Get()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("database schema is up to date", "path", cfg.Database.Path)
	return nil
}
