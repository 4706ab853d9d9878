package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/relaydesk/relaydesk/internal/application/relay"
	"github.com/relaydesk/relaydesk/internal/infrastructure/cache"
	"github.com/relaydesk/relaydesk/internal/infrastructure/config"
	"github.com/relaydesk/relaydesk/internal/infrastructure/database"
	"github.com/relaydesk/relaydesk/internal/infrastructure/repository"
	tg "github.com/relaydesk/relaydesk/internal/infrastructure/telegram"
	ifaceTelegram "github.com/relaydesk/relaydesk/internal/interfaces/telegram"
	"github.com/relaydesk/relaydesk/internal/shared/biztime"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

var autoMigrate bool

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the support bot",
		Long:  `Start long polling for Telegram updates and relay support tickets.`,
		RunE:  run,
	}

	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	biztime.MustInit(cfg.App.Timezone)

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		if err := database.Migrate(database.Get()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Infow("database migrations applied")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("redis connection established")

	db := database.Get()
	ticketRepo := repository.NewTicketRepository(db)
	linkRepo := repository.NewMessageLinkRepository(db)
	blockRepo := repository.NewBlockListRepository(db)
	settingRepo := repository.NewBotSettingRepository(db, log.Named("settings"))

	bot := tg.NewBotService(cfg.Telegram)
	transport := tg.NewTransportAdapter(bot)
	settings := relay.NewSettings(settingRepo)

	opener := relay.NewTicketOpener(ticketRepo, settings, transport, cfg.Telegram.SupportChatID, log.Named("opener"))
	usecases := ifaceTelegram.UseCases{
		RelayInbound: relay.NewRelayInboundUseCase(
			opener, blockRepo, linkRepo, settings, transport,
			cfg.Telegram.SupportChatID, cfg.Telegram.SupportTopicID, log.Named("inbound"),
		),
		RelayReply: relay.NewRelayReplyUseCase(
			linkRepo, blockRepo, transport, cfg.Telegram.SupportChatID, log.Named("reply"),
		),
		ChangeStatus: relay.NewChangeTicketStatusUseCase(
			ticketRepo, linkRepo, settings, transport, cfg.Telegram.SupportChatID, log.Named("status"),
		),
		ToggleBlock: relay.NewToggleBlockUseCase(blockRepo, ticketRepo),
		ListOpen:    relay.NewListOpenTicketsUseCase(ticketRepo),
		TicketInfo:  relay.NewTicketInfoUseCase(ticketRepo, linkRepo, blockRepo),
	}

	sessions := cache.NewAdminSessionStore(redisClient)
	dispatcher := ifaceTelegram.NewDispatcher(bot, usecases, blockRepo, settings, sessions, cfg.Telegram, log.Named("dispatcher"))

	registerCommandMenus(bot, cfg.Telegram.SupportChatID, log)

	poller := tg.NewPollingService(bot, dispatcher, log.Named("poller"), cfg.Telegram.PollTimeout)
	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	log.Infow("support bot started",
		"support_chat_id", cfg.Telegram.SupportChatID,
		"admins", len(cfg.Telegram.AdminIDs),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	poller.Stop()
	return nil
}

// registerCommandMenus publishes the slash-command menus. Failure only costs
// autocompletion, so it is logged and ignored.
func registerCommandMenus(bot *tg.BotService, supportChatID int64, log logger.Interface) {
	if err := bot.SetMyCommands(tg.GetUserCommands()); err != nil {
		log.Warnw("failed to set user command menu", "error", err)
	}
	if err := bot.SetMyCommandsForChat(supportChatID, tg.GetOperatorCommands()); err != nil {
		log.Warnw("failed to set operator command menu", "error", err)
	}
}
