// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coldspray-hub/internal/browse"
	"github.com/pdiddy/coldspray-hub/internal/client"
	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/executor"
	"github.com/pdiddy/coldspray-hub/internal/fragment"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Compose and run a browser selection",
	Long: `Query builds one SPARQL query from a paper type, an author, and filter
choices, runs it against the dataset, and prints the result grid.

Filters are category=option, or category=~text for a keyword search:

  coldspray-hub query --type Experimental \
      --filter material="Copper and Copper Alloys" \
      --filter mechanical=~hardness

Categories and options are listed with --list-options. Unset filters keep
the browser's initial state. Use --raw to run query text instead, and
--server to run against a remote hub.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if list, _ := cmd.Flags().GetBool("list-options"); list {
		return listOptions(out)
	}

	raw, _ := cmd.Flags().GetString("raw")
	sel, err := selectionFromFlags(cmd)
	if err != nil {
		return err
	}

	serverURL, _ := cmd.Flags().GetString("server")
	ctx := context.Background()
	result, err := runSelection(ctx, serverURL, sel, raw)
	if err != nil {
		var execErr *executor.ExecError
		if errors.As(err, &execErr) {
			return fmt.Errorf("query error: %s", execErr.Message())
		}
		return err
	}

	if show, _ := cmd.Flags().GetBool("show-query"); show {
		fmt.Fprintln(out, result.Query.Text)
		fmt.Fprintln(out)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	if result.Grid.Len() == 0 {
		fmt.Fprintln(out, "No papers match the selection.")
		return nil
	}
	return result.Grid.Format(out)
}

func runSelection(ctx context.Context, serverURL string, sel compose.Selection, raw string) (browse.Outcome, error) {
	if serverURL != "" {
		c, err := client.New(serverURL, logger)
		if err != nil {
			return browse.Outcome{}, err
		}
		if raw != "" {
			return c.Query(ctx, raw)
		}
		return c.Browse(ctx, sel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return browse.Outcome{}, err
	}
	h, err := openHub(cfg)
	if err != nil {
		return browse.Outcome{}, err
	}
	defer h.close()
	if raw != "" {
		return h.browse.Query(ctx, raw)
	}
	return h.browse.Browse(ctx, sel)
}

func selectionFromFlags(cmd *cobra.Command) (compose.Selection, error) {
	sel := compose.DefaultSelection()
	if pt, _ := cmd.Flags().GetString("type"); pt != "" {
		sel.PaperType = types.PaperType(pt)
	}
	sel.Author, _ = cmd.Flags().GetString("author")
	sel.DOI, _ = cmd.Flags().GetString("doi")

	filters, _ := cmd.Flags().GetStringArray("filter")
	for _, f := range filters {
		cat, choice, err := parseFilter(f)
		if err != nil {
			return compose.Selection{}, err
		}
		sel = sel.With(cat, choice.Option, choice.Keyword)
	}
	return sel, nil
}

// parseFilter reads category=option or category=~keyword.
func parseFilter(s string) (fragment.Category, compose.Choice, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, compose.Choice{}, fmt.Errorf("filter %q: want category=option", s)
	}
	cat, err := fragment.ParseCategory(strings.TrimSpace(name))
	if err != nil {
		return 0, compose.Choice{}, err
	}
	if kw, isKeyword := strings.CutPrefix(value, "~"); isKeyword {
		if _, ok := fragment.Template(cat); !ok {
			return 0, compose.Choice{}, fmt.Errorf("filter %q: %s has no keyword search", s, cat)
		}
		return cat, compose.Choice{Option: fragment.OptionKeyword, Keyword: kw}, nil
	}
	return cat, compose.Choice{Option: value}, nil
}

func listOptions(w io.Writer) error {
	for _, cat := range fragment.Categories() {
		kind := "drop-down"
		if cat.Checkbox() {
			kind = "checkbox"
		}
		fmt.Fprintf(w, "%s (%s, %s)\n", cat, cat.PaperType(), kind)
		for _, opt := range fragment.Options(cat) {
			fmt.Fprintf(w, "  %s\n", opt)
		}
	}
	return nil
}

func init() {
	queryCmd.Flags().String("type", "", "paper type: any, Experimental, Numerical")
	queryCmd.Flags().String("author", "", "author pattern, a case-insensitive regex")
	queryCmd.Flags().String("doi", "", "DOI pattern")
	queryCmd.Flags().StringArray("filter", nil, "filter as category=option or category=~keyword (repeatable)")
	queryCmd.Flags().String("raw", "", "run this query text instead of composing one")
	queryCmd.Flags().Bool("show-query", false, "print the query text before the results")
	queryCmd.Flags().Bool("json", false, "output the result as JSON")
	queryCmd.Flags().Bool("list-options", false, "list filter categories and options")
	queryCmd.Flags().String("server", "", "run against a hub server at this URL")

	rootCmd.AddCommand(queryCmd)
}
