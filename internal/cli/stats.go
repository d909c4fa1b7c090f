package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iconidentify/tubegrab/internal/backend"
)

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the backend's public counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := backend.NewHTTPClient(a.cfg.Backend)
			client.SetLogger(a.logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Backend.Timeout)
			defer cancel()

			stats, err := client.Stats(ctx)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("fetch stats: %w", err)}
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintln(a.out, a.styles.Title.Render(a.cfg.Site.AppName))
			for _, s := range stats.Display() {
				fmt.Fprintf(a.out, "  %s %s\n", a.styles.Label.Render(s.Label), a.styles.Value.Render(s.Number))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw counters as JSON")
	return cmd
}
