package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exportCmd exports the whole vault as a zip archive.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the vault to a portable zip archive",
	Long: `Writes every listing record and stored image blob to a zip archive and
prints its artifact handle. With archive uploads enabled the archive is also
pushed to object storage and the handle is an s3:// URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		handle, err := a.archive.Export(context.Background())
		if err != nil {
			return err
		}

		a.logger.Info("Export finished", zap.String("handle", handle))
		return nil
	},
}

// importCmd replaces the vault contents with an archive.
var importCmd = &cobra.Command{
	Use:   "import <handle>",
	Short: "Replace the vault contents with an archive",
	Long: `Imports a previously exported archive, replacing all current records and
blobs. The handle is a local file path or an s3://bucket/object URL. A bad
archive is rejected before anything is cleared.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.archive.Import(context.Background(), args[0]); err != nil {
			return err
		}

		a.logger.Info("Import finished", zap.String("handle", args[0]))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(importCmd)
}
