// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coldspray-hub/internal/client"
	"github.com/pdiddy/coldspray-hub/internal/contrib"
)

var submitCmd = &cobra.Command{
	Use:   "submit DOI",
	Short: "Suggest a DOI for the next dataset update",
	Long: `Submit appends the DOI to the contribution log, one line per
submission. The DOI is trimmed but not validated, and repeated submissions
are kept. With --server the DOI is sent to a running hub instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	doi := strings.Join(args, " ")

	var msg string
	if serverURL, _ := cmd.Flags().GetString("server"); serverURL != "" {
		c, err := client.New(serverURL, logger)
		if err != nil {
			return err
		}
		if msg, err = c.Submit(context.Background(), doi); err != nil {
			return err
		}
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := contrib.NewLog(cfg.Contribution.Path, logger).Submit(doi); err != nil {
			return err
		}
		msg = contrib.ThankYou
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func init() {
	submitCmd.Flags().String("server", "", "send the DOI to a hub server at this URL")
	rootCmd.AddCommand(submitCmd)
}
