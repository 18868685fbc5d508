package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fusionfit/storefront/app/jobs"
	"github.com/fusionfit/storefront/pkg/cache"
	"github.com/fusionfit/storefront/pkg/database"
	"github.com/fusionfit/storefront/pkg/queue"
)

var queueWorkersFlag int

// fusionfit queue:work — drains the shared redis queue in its own process.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := bootDB(ctx); err != nil {
			return err
		}
		defer database.Disconnect(context.Background())

		if err := cache.Connect(); err != nil {
			return fmt.Errorf("queue:work needs redis: %w", err)
		}

		jobs.RegisterAll()
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
		queue.SetFailedJobsCollection(database.Collection("failed_jobs"))

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\nQueue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
