package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"
)

var pruneBefore string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete shares not updated since a date",
	Long: `Delete shares, with their events and snapshots, that have not been
updated since the given date. Accepts natural language.

Examples:
  ccshare prune --before "3 months ago"
  ccshare prune --before "last week"
  ccshare prune --before 2025-01-01`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().StringVar(&pruneBefore, "before", "", "Cutoff date")
	_ = pruneCmd.MarkFlagRequired("before")
}

func runPrune(cmd *cobra.Command, args []string) error {
	cutoff, err := parseDate(pruneBefore, time.Now())
	if err != nil {
		return err
	}

	svc, _, closeFn, err := openService(cmd, cliLogger())
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := svc.Prune(cmd.Context(), cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d share(s) not updated since %s\n", n, cutoff.Format("Jan 2, 2006 3:04 PM"))
	return nil
}

// dateFormats are tried before natural language parsing.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// parseDate parses an absolute date or a natural language one such as
// "2 weeks ago", relative to now.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, s, now.Location()); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	result, err := w.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return result.Time, nil
}
