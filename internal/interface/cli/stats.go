package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long: `Display statistics about the ccshare database.

Shows share and event counts, snapshot sizes, date ranges and storage info.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, cfg, closeFn, err := openService(cmd, cliLogger())
	if err != nil {
		return err
	}
	defer closeFn()

	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Database Statistics")
	_, _ = fmt.Fprintln(out, "===================")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Total Shares:      %s\n", humanize.Comma(int64(stats.TotalShares)))
	_, _ = fmt.Fprintf(out, "Pending Events:    %s\n", humanize.Comma(int64(stats.PendingEvents)))
	_, _ = fmt.Fprintf(out, "Compacted Shares:  %s\n", humanize.Comma(int64(stats.CompactedShares)))
	_, _ = fmt.Fprintf(out, "Snapshot Storage:  %s\n", humanize.Bytes(uint64(stats.SnapshotBytes)))
	_, _ = fmt.Fprintln(out)

	if stats.TotalShares > 0 {
		_, _ = fmt.Fprintf(out, "Oldest Share:      %s\n", stats.OldestShare.Format("Jan 2, 2006 3:04 PM"))
		_, _ = fmt.Fprintf(out, "Last Update:       %s (%s)\n",
			stats.LastUpdatedShare.Format("Jan 2, 2006 3:04 PM"), humanize.Time(stats.LastUpdatedShare))
		_, _ = fmt.Fprintln(out)
	}

	// Database file size
	fileInfo, err := os.Stat(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Database Location: %s\n", cfg.DatabasePath)
	_, _ = fmt.Fprintf(out, "Database Size:     %s\n", humanize.Bytes(uint64(fileInfo.Size())))
	return nil
}
