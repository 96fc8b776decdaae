package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/julienfritschheydon/doodates/internal/gateway"
	"github.com/julienfritschheydon/doodates/internal/telegram"
	"github.com/julienfritschheydon/doodates/internal/tui"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var configPath string

	root := &cobra.Command{
		Use:   "doodates",
		Short: "Assistant conversationnel pour sondages de dates et questionnaires",
		RunE: func(cmd *cobra.Command, args []string) error {
			return gateway.New(configPath).Run(ctx)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "chemin du fichier de configuration")

	ask := &cobra.Command{
		Use:   "ask [message]",
		Short: "Envoie un seul message et affiche la réponse",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gateway.New(configPath).Execute(ctx, strings.Join(args, " "))
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Interface de discussion en plein écran",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := gateway.New(configPath).Init(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()
			return tui.Run(rt)
		},
	}

	telegramCmd := &cobra.Command{
		Use:   "telegram",
		Short: "Démarre le bot Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, err := telegram.NewBot(configPath)
			if err != nil {
				return err
			}
			return bot.Start(ctx)
		},
	}

	root.AddCommand(ask, tuiCmd, telegramCmd)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
