package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"brewhub-system/config"
	"brewhub-system/internal/database"
	"brewhub-system/internal/notify"
	"brewhub-system/internal/reports"
)

// dispatchReportsCmd is the cron entrypoint for weekly summary emails.
// Running it more than once within the same hour window is safe: rows with
// last_sent_at inside the window are skipped.
func dispatchReportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch-reports",
		Short: "Send weekly commission reports that are due right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			db, err := database.NewConnection(cfg.DB.DSN)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}

			email := notify.NewEmailChannel(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort,
				cfg.Notify.SMTPUser, cfg.Notify.SMTPPassword, cfg.Notify.SMTPFrom)
			dispatcher := reports.NewDispatcher(db, email)

			sent, err := dispatcher.DispatchDue(context.Background(), time.Now())
			if err != nil {
				return fmt.Errorf("report dispatch failed: %w", err)
			}
			fmt.Printf("Dispatched %d report(s)\n", sent)
			return nil
		},
	}
}

// retryDeliveriesCmd drains the failed-delivery queue once. The auto-retry
// delay from user settings is honored by the cron schedule invoking this
// command, not by the command itself.
func retryDeliveriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry-deliveries",
		Short: "Re-attempt all retryable failed notification deliveries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			db, err := database.NewConnection(cfg.DB.DSN)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}

			channels := []notify.Channel{
				notify.NewEmailChannel(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort,
					cfg.Notify.SMTPUser, cfg.Notify.SMTPPassword, cfg.Notify.SMTPFrom),
				notify.NewPushChannel(cfg.Notify.PushRelayURL, cfg.Notify.PushRelayKey),
			}
			if cfg.Notify.TelegramToken != "" {
				telegram, err := notify.NewTelegramChannel(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
				if err == nil {
					channels = append(channels, telegram)
				}
			}

			queue := notify.NewRetryQueue(db, channels...)
			result, err := queue.RetryAllFailed(context.Background())
			if err != nil {
				return fmt.Errorf("retry pass failed: %w", err)
			}
			fmt.Printf("Retried deliveries: %d succeeded, %d still failing\n", result.Success, result.Failed)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			db, err := database.NewConnection(cfg.DB.DSN)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Migrations applied")
			return nil
		},
	}
}
