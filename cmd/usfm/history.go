// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/digitallegionke/USFM/internal/history"
	"github.com/digitallegionke/USFM/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past conversion attempts",
	Long: `History manages the local SQLite database of conversion attempts. Use
subcommands to list recent attempts, show one attempt's USFM, search the
stored markup, export everything, or clear the database.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversion attempts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(historyConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context())
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatRecords(records, jsonOutput)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the USFM of one conversion attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(historyConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if rec.Status == types.ConversionFailed {
			return fmt.Errorf("conversion %s failed: %s", rec.ID, rec.Error)
		}
		fmt.Fprintln(os.Stdout, rec.USFM)
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over stored USFM",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(historyConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatRecords(records, jsonOutput)
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full history as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(historyConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		return store.ExportYAML(cmd.Context(), os.Stdout)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded conversion attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(historyConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "cleared %d conversion attempt(s)\n", n)
		return nil
	},
}

func formatRecords(records []types.ConversionRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No conversions recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-20s  %-28s  %-6s  %8s  %8s\n",
		"ID", "When", "Model", "Status", "In", "Out")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 92))

	for _, r := range records {
		model := r.Model
		if len(model) > 28 {
			model = model[:25] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-20s  %-28s  %-6s  %8d  %8d\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), model, r.Status,
			r.SourceChars, r.OutputChars)
	}

	fmt.Fprintf(os.Stdout, "\n%d attempt(s)\n", len(records))
	return nil
}

func init() {
	historyCmd.PersistentFlags().String("history-dir", "", "history database directory (default: history)")
	historyListCmd.Flags().Bool("json", false, "output as JSON")
	historySearchCmd.Flags().Bool("json", false, "output as JSON")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historySearchCmd, historyExportCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
