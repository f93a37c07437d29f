package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"listing-vault/feature/vault"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	listFilter string
	yesConfirm bool
)

// listCmd prints the stored listings.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		listings, err := a.vault.List(context.Background(), vault.ListFilter(listFilter))
		if err != nil {
			return err
		}

		for i := range listings {
			l := &listings[i]
			extID := ""
			if l.ExternalID != nil {
				extID = *l.ExternalID
			}
			a.logger.Info("Listing",
				zap.String("local_id", l.LocalID),
				zap.String("external_id", extID),
				zap.String("title", l.Title),
				zap.String("price", l.Price.Amount+" "+l.Price.CurrencyCode),
				zap.String("status", l.PublicationStatus),
				zap.Int("photos", len(l.Photos)),
			)
		}
		a.logger.Info("Total listings", zap.Int("count", len(listings)))
		return nil
	},
}

// deleteCmd removes a listing and its blobs from the vault.
var deleteCmd = &cobra.Command{
	Use:   "delete <localId>",
	Short: "Delete a listing and its images from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		return a.vault.Delete(context.Background(), args[0])
	},
}

// unpublishCmd marks a listing unpublished, attempting a remote delete.
var unpublishCmd = &cobra.Command{
	Use:   "unpublish <localId>",
	Short: "Unpublish a listing (best-effort delete on the marketplace)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		_, err = a.vault.Unpublish(context.Background(), args[0])
		return err
	},
}

// setCmd edits one field of a listing.
var setCmd = &cobra.Command{
	Use:   "set <localId> <field> <value>",
	Short: "Set an editable listing field (title, description, price, size, brand)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		_, err = a.vault.UpdateField(context.Background(), args[0], args[1], args[2])
		return err
	},
}

// resetCmd clears the whole vault.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the whole vault (all listings and images)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !confirmDestructiveAction() {
			a.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		return a.vault.Reset(context.Background())
	},
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "all", "Filter listings (all, published, unpublished)")
	resetCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(unpublishCmd)
	RootCmd.AddCommand(setCmd)
	RootCmd.AddCommand(resetCmd)
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
