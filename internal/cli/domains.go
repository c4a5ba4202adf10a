package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) listCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored domains in upload order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			domains, err := svc.Domains(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, domains)
			}
			if len(domains) == 0 {
				fmt.Fprintln(a.out, "no domains stored")
				return nil
			}
			return writeDomains(a.out, domains)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <domain>",
		Aliases: []string{"rm"},
		Short:   "Remove a domain from the store",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *App) suggestCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest <text>",
		Short: "List stored domain names containing text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			names, err := svc.Suggest(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(a.out, n)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions (default from config)")
	return cmd
}

func (a *App) ranksCommand() *cobra.Command {
	var (
		start, end string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "ranks <domain>",
		Short: "Print the stored samples of a domain",
		Long: `Print the stored samples of a domain. The window applies only when both
--start and --end are set, matching GET /api/ranks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			samples, err := svc.Ranks(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, map[string]any{"ranks": samples})
			}
			if len(samples) == 0 {
				fmt.Fprintf(a.out, "no samples for %s\n", args[0])
				return nil
			}
			return writeSamples(a.out, samples)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
