package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tenderwatch/internal/archive"
)

var (
	searchLimit  int
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the tender archive",
	Long: `Search archived tenders by title, category or department. Requires
the archive to be enabled and populated by previous monitor runs.

Examples:
  # Basic search
  tenderwatch search "road construction"

  # Limit results
  tenderwatch search "medical equipment" --limit 5

  # JSON output for scripting
  tenderwatch search "consultancy" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := args[0]
	cfg := GetConfig()

	client, err := archive.New(archive.Config{
		Addresses: cfg.Archive.Addresses,
		Index:     cfg.Archive.Index,
		Username:  cfg.Archive.Username,
		Password:  cfg.Archive.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to the tender archive: %w", err)
	}

	tenders, err := client.Search(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(tenders) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if searchFormat == "json" {
		output, err := json.MarshalIndent(tenders, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	for i, t := range tenders {
		fmt.Printf("%d. %s\n", i+1, t.Title)
		if t.Number != "" {
			fmt.Printf("   Number:  %s\n", t.Number)
		}
		if t.Category != "" {
			fmt.Printf("   Category: %s\n", t.Category)
		}
		if t.DepartmentOwner != "" {
			fmt.Printf("   Owner:    %s\n", t.DepartmentOwner)
		}
		if t.ClosingDate != "" {
			fmt.Printf("   Closes:   %s\n", t.ClosingDate)
		}
		fmt.Println()
	}
	return nil
}
