// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/coldspray-hub/internal/dataset"
	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List the papers in the dataset, newest first",
	RunE:  runPapers,
}

func runPapers(cmd *cobra.Command, args []string) error {
	cfg, g, err := loadGraph()
	if err != nil {
		return err
	}
	papers := dataset.Papers(g, cfg.Dataset.Namespace)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}
	return formatPapers(out, papers)
}

func formatPapers(w io.Writer, papers []types.Paper) error {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers in the dataset.")
		return nil
	}
	fmt.Fprintf(w, "%-4s  %-6s  %-32s  %s\n", "#", "Year", "DOI", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for i, p := range papers {
		fmt.Fprintf(w, "%-4d  %-6s  %-32s  %s\n", i+1, p.Year, truncate(p.DOI, 32), truncate(p.Title, 52))
	}
	_, err := fmt.Fprintf(w, "\n%d papers\n", len(papers))
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

var describeCmd = &cobra.Command{
	Use:   "describe DOI",
	Short: "Show every recorded detail of one paper",
	Long: `Describe prints the metadata, materials, preprocessing, characterization,
results, cold spray process, and computational study of the paper with the
given DOI. The DOI may be bare or an https://doi.org/ link.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, g, err := loadGraph()
	if err != nil {
		return err
	}
	d, err := dataset.Describe(g, cfg.Dataset.Namespace, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding paper: %w", err)
	}
	return enc.Close()
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print triple and paper counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, g, err := loadGraph()
		if err != nil {
			return err
		}
		st := dataset.ComputeStats(g, cfg.Dataset.Namespace)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dataset:       %s\n", cfg.Dataset.Path)
		fmt.Fprintf(out, "Triples:       %d\n", st.Triples)
		fmt.Fprintf(out, "Papers:        %d\n", st.Papers)
		fmt.Fprintf(out, "  experimental %d\n", st.Experimental)
		fmt.Fprintf(out, "  numerical    %d\n", st.Numerical)
		return nil
	},
}

func loadGraph() (types.HubConfig, *graph.Graph, error) {
	cfg, err := loadConfig()
	if err != nil {
		return types.HubConfig{}, nil, err
	}
	g, err := dataset.NewLoader(cfg.Dataset, dataset.WithLogger(logger)).Graph()
	if err != nil {
		return types.HubConfig{}, nil, err
	}
	return cfg, g, nil
}

func init() {
	papersCmd.Flags().Bool("json", false, "output as JSON")
	describeCmd.Flags().Bool("json", false, "output as JSON instead of YAML")

	rootCmd.AddCommand(papersCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(statsCmd)
}
