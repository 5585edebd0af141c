package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/ccshare/internal/core/export"
	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/render"
	"github.com/neilberkman/ccshare/internal/core/state"
	"github.com/neilberkman/ccshare/internal/interface/tui"
	"github.com/neilberkman/ccshare/pkg/shareclient"
)

var (
	showPager bool
	showWidth int
)

var showCmd = &cobra.Command{
	Use:   "show <share-id>",
	Short: "Show a share in the terminal",
	Long: `Render a share's conversation, tool calls and file changes in the terminal.

Examples:
  ccshare show 0ccfddc4
  ccshare show 0ccfddc4 --pager
  ccshare show 0ccfddc4 --server https://share.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	addServerFlag(showCmd)
	showCmd.Flags().BoolVar(&showPager, "pager", false, "Open in an interactive pager")
	showCmd.Flags().IntVar(&showWidth, "width", 100, "Wrap width (0 disables wrapping)")
}

func runShow(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd, args[0])
	if err != nil {
		return err
	}

	page := render.BuildPage(doc.Share, doc.State)
	if showPager {
		return tui.Page(tui.Transcript(page, 0))
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), tui.Transcript(page, showWidth))
	return err
}

// loadDocument reads a share from the server when --server is set, from
// the local database otherwise.
func loadDocument(cmd *cobra.Command, shareID string) (*export.Document, error) {
	logger := cliLogger()
	if serverURL != "" {
		client, err := shareclient.New(shareclient.Config{BaseURL: serverURL, Logger: logger})
		if err != nil {
			return nil, err
		}
		return remoteDocument(cmd.Context(), client, shareID)
	}

	svc, _, closeFn, err := openService(cmd, logger)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	st, s, err := svc.State(cmd.Context(), shareID)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", shareID, err)
	}
	return &export.Document{Share: s, State: st}, nil
}

func remoteDocument(ctx context.Context, client *shareclient.Client, shareID string) (*export.Document, error) {
	events, err := client.Data(ctx, shareID)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", shareID, err)
	}
	return &export.Document{
		Share: &models.Share{ID: shareID},
		State: state.Reconstruct(events),
	}, nil
}
