package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) partnersCmd() *cobra.Command {
	var refresh, asJSON bool
	cmd := &cobra.Command{
		Use:   "partners",
		Short: "Show the partner quote report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			resp, err := c.client.Partners(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PARTNER\tQUOTES\tSUCCESS\tFAILED\tRATE\tCATEGORY")
			for _, p := range resp.Partners {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f%%\t%s\n",
					p.Name, p.TotalQuotes, p.SuccessfulQuotes, p.FailedQuotes, p.SuccessRate, p.Category)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "\nFetched %s", resp.FetchedAt.Local().Format("2006-01-02 15:04:05"))
			if resp.Stale {
				fmt.Fprint(c.out, " (stale: the partner service is unavailable)")
			}
			fmt.Fprintln(c.out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ask the server to refetch instead of using its cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response")
	return cmd
}
