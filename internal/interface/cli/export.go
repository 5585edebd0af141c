package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilberkman/ccshare/internal/core/export"
)

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export <share-id>",
	Short: "Export a share to a file",
	Long: `Export a share as JSON, JSONL, YAML or markdown.

By default writes to stdout. Use --output to write a file; "-o ." writes
share-<id>.<ext> in the current directory.

Examples:
  ccshare export 0ccfddc4 --format md
  ccshare export 0ccfddc4 --format yaml -o session.yaml
  ccshare export 0ccfddc4 --format jsonl -o .`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addServerFlag(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "md", "Export format: "+strings.Join(export.Formats, ", "))
}

func runExport(cmd *cobra.Command, args []string) error {
	shareID := args[0]

	exporter, err := export.NewExporter(exportFormat)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cmd, shareID)
	if err != nil {
		return err
	}

	if exportOutput == "" || exportOutput == "-" {
		return exporter.Export(doc, cmd.OutOrStdout())
	}

	outputPath := exportOutput
	if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
		// Generate default filename in the directory
		shortID := shareID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		outputPath = filepath.Join(outputPath, fmt.Sprintf("share-%s.%s", shortID, exporter.Extension()))
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := writeExport(exporter, doc, f); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported share to: %s\n", outputPath)
	return nil
}

func writeExport(exporter export.Exporter, doc *export.Document, f io.WriteCloser) error {
	if err := exporter.Export(doc, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
