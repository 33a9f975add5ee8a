package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tenderwatch/internal/store"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored tender history",
	Long: `Export the stored tender history as JSON or CSV.

Examples:
  # JSON to stdout
  tenderwatch export

  # CSV to a file
  tenderwatch export --format csv --out tenders.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	tenders := store.Load(cfg.Store.Path)

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tenders); err != nil {
			return fmt.Errorf("failed to encode tenders: %w", err)
		}
	case "csv":
		if err := store.ExportCSV(out, tenders); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q, want json or csv", exportFormat)
	}

	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Exported %d tenders to %s\n", len(tenders), exportOut)
	}
	return nil
}
