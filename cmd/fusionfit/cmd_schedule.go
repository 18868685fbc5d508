package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fusionfit/storefront/app/repositories"
	"github.com/fusionfit/storefront/pkg/database"
	"github.com/fusionfit/storefront/pkg/logger"
	"github.com/fusionfit/storefront/pkg/schedule"
)

// fusionfit schedule:run — runs the maintenance scheduler standalone.
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Start the task scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := bootDB(ctx); err != nil {
			return err
		}
		defer database.Disconnect(context.Background())

		users := repositories.NewUserRepository()
		schedule.Hourly().Name("purge-expired-tokens").WithoutOverlapping().Run(func() {
			purgeCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			n, err := users.PurgeExpiredTokens(purgeCtx)
			if err != nil {
				logger.Error("schedule: purge expired tokens", "error", err)
				return
			}
			logger.Info("schedule: purged expired tokens", "count", n)
		})

		fmt.Println("Registered scheduled tasks:")
		for _, t := range schedule.List() {
			fmt.Println("  •", t)
		}

		fmt.Println("Scheduler started. Press Ctrl+C to stop.")
		schedule.Start(ctx)

		<-ctx.Done()
		fmt.Println("\nScheduler stopped.")
		return nil
	},
}
