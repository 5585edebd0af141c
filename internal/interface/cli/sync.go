package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/pkg/shareclient"
)

var (
	syncSecret string
	syncFile   string
)

var syncCmd = &cobra.Command{
	Use:   "sync <share-id>",
	Short: "Append events to a share",
	Long: `Append session events to a share's log.

Events are read from --file or stdin, either as a JSON array or as one
event per line (JSONL). The whole batch is validated before anything is
stored.

Examples:
  ccshare sync 0ccfddc4 --secret $SECRET --file events.jsonl
  agent-export | ccshare sync 0ccfddc4 --secret $SECRET`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	addServerFlag(syncCmd)
	syncCmd.Flags().StringVar(&syncSecret, "secret", "", "Share secret")
	syncCmd.Flags().StringVarP(&syncFile, "file", "f", "", "Event file (default: stdin)")
	_ = syncCmd.MarkFlagRequired("secret")
}

func runSync(cmd *cobra.Command, args []string) error {
	shareID := args[0]

	var (
		events []models.ShareData
		err    error
	)
	if syncFile == "" || syncFile == "-" {
		events, err = shareclient.ReadEvents(cmd.InOrStdin())
	} else {
		events, err = shareclient.ReadEventsFile(syncFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	logger := cliLogger()
	b, closeFn, err := openBackend(cmd, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := b.Sync(cmd.Context(), shareID, syncSecret, events); err != nil {
		return fmt.Errorf("failed to sync %s: %w", shareID, err)
	}
	logger.Debug("synced", zap.String("share_id", shareID), zap.Int("events", len(events)))
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "✓ Synced %d event(s) to %s\n", len(events), shareID)
	return nil
}
