package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var createCopy bool

var createCmd = &cobra.Command{
	Use:   "create <session-id>",
	Short: "Create a share for a session",
	Long: `Create a new share for a coding session and print its id and secret.

The secret is needed to sync or remove the share and is shown only once.
Every call creates a distinct share.

Examples:
  ccshare create ses_01HZX
  ccshare create ses_01HZX --server https://share.example.com --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	addServerFlag(createCmd)
	createCmd.Flags().BoolVar(&createCopy, "copy", false, "Copy the share URL to the clipboard")
}

func runCreate(cmd *cobra.Command, args []string) error {
	logger := cliLogger()
	b, closeFn, err := openBackend(cmd, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	created, err := b.Create(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "ID:     %s\n", created.ID)
	_, _ = fmt.Fprintf(out, "Secret: %s\n", created.Secret)
	if created.URL != "" {
		_, _ = fmt.Fprintf(out, "URL:    %s\n", created.URL)
	}

	if createCopy {
		text := created.URL
		if text == "" {
			text = created.ID
		}
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "✓ Copied to clipboard")
	}
	return nil
}
