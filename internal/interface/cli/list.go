package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List shares",
	Long: `List shares in the local database, most recently updated first.

Examples:
  ccshare list
  ccshare list --limit 10`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of shares to display (0 for all)")
}

func runList(cmd *cobra.Command, args []string) error {
	svc, _, closeFn, err := openService(cmd, cliLogger())
	if err != nil {
		return err
	}
	defer closeFn()

	shares, err := svc.List(cmd.Context(), listLimit)
	if err != nil {
		return fmt.Errorf("failed to list shares: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(shares) == 0 {
		_, _ = fmt.Fprintln(out, "No shares found. Run 'ccshare create <session-id>' to create one.")
		return nil
	}

	_, _ = fmt.Fprintf(out, "Showing %d share(s)\n\n", len(shares))
	for i, s := range shares {
		_, _ = fmt.Fprintf(out, "[%d] %s\n", i+1, s.ID)
		_, _ = fmt.Fprintf(out, "    Session: %s\n", s.SessionID)
		if s.SnapshotSeq > 0 {
			_, _ = fmt.Fprintf(out, "    Events:  %s pending, %s compacted\n",
				humanize.Comma(int64(s.PendingEvents)), humanize.Comma(s.SnapshotSeq))
		} else {
			_, _ = fmt.Fprintf(out, "    Events:  %s pending\n", humanize.Comma(int64(s.PendingEvents)))
		}
		_, _ = fmt.Fprintf(out, "    Updated: %s\n", humanize.Time(s.UpdatedAt))
		_, _ = fmt.Fprintf(out, "    Created: %s\n", humanize.Time(s.CreatedAt))
		_, _ = fmt.Fprintln(out)
	}
	return nil
}
