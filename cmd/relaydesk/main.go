package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/relaydesk/relaydesk/internal/interfaces/cli/migrate"
	"github.com/relaydesk/relaydesk/internal/interfaces/cli/serve"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "relaydesk",
		Short: "Relaydesk - a Telegram support ticket relay",
		Long:  `Relaydesk relays user messages into a support chat as tickets and routes operator replies back.`,
	}

	rootCmd.AddCommand(
		serve.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
