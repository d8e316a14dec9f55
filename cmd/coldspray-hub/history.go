// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coldspray-hub/internal/history"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show, and export executed queries",
	Long: `History reads the SQLite log of queries run by the query command and
the API server. Use subcommands to list recent entries, show one query, or
export the log.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent queries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := historyStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Recent(context.Background(), historyFilter(cmd))
		if err != nil {
			return err
		}
		return formatHistory(cmd.OutOrStdout(), entries)
	},
}

func formatHistory(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No queries recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-36s  %-19s  %-12s  %6s  %6s  %s\n",
		"ID", "Time", "Type", "Rows", "Papers", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		status := "ok"
		switch {
		case e.Failed():
			status = "error: " + truncate(e.Error, 40)
		case e.Cached:
			status = "cached"
		}
		fmt.Fprintf(w, "%-36s  %-19s  %-12s  %6d  %6d  %s\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.PaperType, e.Rows, e.Papers, status)
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
	return nil
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print the query text of one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := historyStore()
		if err != nil {
			return err
		}
		defer store.Close()

		e, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if e.Selection != "" {
			fmt.Fprintf(out, "# selection: %s\n", e.Selection)
		}
		if e.Failed() {
			fmt.Fprintf(out, "# error: %s\n", e.Error)
		}
		fmt.Fprintln(out, e.Query)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history to YAML or JSON",
	Long: `Export writes matching entries to export.yaml or export.json in the
history directory. It takes the same filters as list; --limit is ignored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		store, err := historyStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var path string
		f := historyFilter(cmd)
		switch format {
		case "yaml", "":
			path, err = store.ExportYAML(context.Background(), f)
		case "json":
			path, err = store.ExportJSON(context.Background(), f)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

func historyStore() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openHistory(cfg)
}

func historyFilter(cmd *cobra.Command) history.Filter {
	limit, _ := cmd.Flags().GetInt("limit")
	paperType, _ := cmd.Flags().GetString("type")
	contains, _ := cmd.Flags().GetString("contains")
	failed, _ := cmd.Flags().GetBool("failed")
	return history.Filter{
		Limit:      limit,
		PaperType:  types.PaperType(paperType),
		Contains:   contains,
		FailedOnly: failed,
	}
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("type", "", "filter by paper type")
		c.Flags().String("contains", "", "filter by query text substring")
		c.Flags().Bool("failed", false, "only queries that returned an error")
	}
	historyListCmd.Flags().Int("limit", 20, "maximum entries")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
