package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var ingestLimit int

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass over all configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.Migrate(ctx); err != nil {
			return err
		}

		summary, err := env.Runner.Run(ctx, ingestLimit)
		if err != nil {
			return err
		}

		fmt.Printf("run %d: fetched=%d unique=%d added=%d feed_errors=%d\n",
			summary.RunID, summary.Fetched, summary.Unique, summary.Added, summary.FeedErrors)
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "max rows per feed (0 = no cap)")
	rootCmd.AddCommand(ingestCmd)
}
