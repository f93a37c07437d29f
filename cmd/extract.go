package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// extractCmd runs a full extraction from the remote marketplace.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch the account's listings and sync them into the vault",
	Long: `Fetches every page of the configured marketplace account, reconciles each
listing into the local store (create or merge), and downloads listing images
as blobs. Page, item, and image failures are skipped, not retried.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		stats, err := a.extraction.Run(context.Background())
		if err != nil {
			return err
		}

		a.logger.Info("Extraction finished",
			zap.Int("fetched", stats.Fetched),
			zap.Int("created", stats.Created),
			zap.Int("merged", stats.Merged),
			zap.Int("skipped", stats.Skipped),
			zap.Int("pages_failed", stats.PagesFailed),
			zap.Int("images_saved", stats.ImagesSaved),
			zap.Int("images_failed", stats.ImagesFailed),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(extractCmd)
}
