package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var compactAll bool

var compactCmd = &cobra.Command{
	Use:   "compact [share-id]",
	Short: "Fold pending events into snapshots",
	Long: `Compact a share, or with --all every share that has pending events.

Compaction folds the event log into a snapshot. Reads return the same
state before and after.

Examples:
  ccshare compact 0ccfddc4
  ccshare compact --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompact,
}

func init() {
	rootCmd.AddCommand(compactCmd)
	compactCmd.Flags().BoolVar(&compactAll, "all", false, "Compact every share with pending events")
}

func runCompact(cmd *cobra.Command, args []string) error {
	if compactAll == (len(args) == 1) {
		return fmt.Errorf("specify either a share id or --all")
	}

	svc, _, closeFn, err := openService(cmd, cliLogger())
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	if compactAll {
		n, err := svc.CompactAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("compaction failed after %d share(s): %w", n, err)
		}
		_, _ = fmt.Fprintf(out, "✓ Compacted %d share(s)\n", n)
		return nil
	}

	res, err := svc.Compact(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to compact %s: %w", args[0], err)
	}
	if res.Folded == 0 {
		_, _ = fmt.Fprintf(out, "Nothing to compact for %s\n", args[0])
		return nil
	}
	_, _ = fmt.Fprintf(out, "✓ Folded %d event(s) into a %d-event snapshot (%s)\n",
		res.Folded, res.Events, humanize.Bytes(uint64(res.SnapshotBytes)))
	return nil
}
