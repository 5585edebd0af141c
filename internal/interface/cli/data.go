package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/ccshare/internal/core/models"
)

var dataCmd = &cobra.Command{
	Use:   "data <share-id>",
	Short: "Print a share's current state as JSON events",
	Args:  cobra.ExactArgs(1),
	RunE:  runData,
}

var (
	rmSecret string
)

var rmCmd = &cobra.Command{
	Use:   "rm <share-id>",
	Short: "Remove a share",
	Long: `Remove a share with all of its events. Requires the share secret.

Examples:
  ccshare rm 0ccfddc4 --secret $SECRET`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(dataCmd)
	addServerFlag(dataCmd)

	rootCmd.AddCommand(rmCmd)
	addServerFlag(rmCmd)
	rmCmd.Flags().StringVar(&rmSecret, "secret", "", "Share secret")
	_ = rmCmd.MarkFlagRequired("secret")
}

func runData(cmd *cobra.Command, args []string) error {
	b, closeFn, err := openBackend(cmd, cliLogger())
	if err != nil {
		return err
	}
	defer closeFn()

	events, err := b.Data(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(models.Events(events))
}

func runRemove(cmd *cobra.Command, args []string) error {
	b, closeFn, err := openBackend(cmd, cliLogger())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := b.Remove(cmd.Context(), args[0], rmSecret); err != nil {
		return fmt.Errorf("failed to remove %s: %w", args[0], err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", args[0])
	return nil
}
