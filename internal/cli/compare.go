package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	service "github.com/okian/rankscope/internal/app"
	"github.com/okian/rankscope/internal/presentation/chart"
	"github.com/okian/rankscope/pkg/logger"
)

// windowFlags are shared by compare and export.
type windowFlags struct {
	start, end string
	api        string
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.start, "start", "", "first date, YYYY-MM-DD (default: open)")
	cmd.Flags().StringVar(&w.end, "end", "", "last date, YYYY-MM-DD (default: open)")
	cmd.Flags().StringVar(&w.api, "api", "", "read samples from a remote rankscope base URL")
}

func (a *App) compare(cmd *cobra.Command, domains []string, w windowFlags) (service.Comparison, error) {
	var extra []service.Option
	if w.api != "" {
		extra = append(extra, service.WithSampleSource(service.RemoteSource(w.api, a.cfg.RankAPITimeoutMS)))
	}
	svc, err := a.openService(cmd.Context(), extra...)
	if err != nil {
		return service.Comparison{}, err
	}

	cmp, err := svc.Compare(cmd.Context(), service.CompareRequest{Domains: domains, Start: w.start, End: w.end})
	a.reportFailures(cmp.Failures)
	if err != nil {
		a.log.Debug(cmd.Context(), "comparison failed", logger.Strings("domains", domains), logger.Error(err))
		return cmp, err
	}
	return cmp, nil
}

func (a *App) reportFailures(failures map[string]string) {
	if len(failures) == 0 {
		return
	}
	p := a.palette()
	names := make([]string, 0, len(failures))
	for d := range failures {
		names = append(names, d)
	}
	slices.Sort(names)
	for _, d := range names {
		fmt.Fprintf(a.errOut, "%s %s: %s\n", p.yellow("skipped"), d, failures[d])
	}
}

func (a *App) compareCommand() *cobra.Command {
	var (
		w      windowFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "compare <domain> <domain>...",
		Short: "Align domains on a shared date axis and summarize their ranks",
		Long: `Align two or more domains on the union of their dates inside the window and
print per-domain statistics. The most volatile domain is highlighted in red,
the steadiest in green. Domains that cannot be fetched are reported and left
out of the comparison.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := a.compare(cmd, args, w)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, cmp)
			}

			p := a.palette()
			axis := cmp.Series.Axis
			fmt.Fprintf(a.out, "%s %d dates, %s to %s\n",
				p.bold(strings.Join(cmp.Series.Domains, " vs ")), len(axis), axis[0], axis[len(axis)-1])
			return writeStats(a.out, cmp.Stats, p)
		},
	}
	w.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the aligned series and stats as JSON")
	return cmd
}

func (a *App) exportCommand() *cobra.Command {
	var (
		w   windowFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "export <domain> <domain>...",
		Short: "Write a comparison as a standalone HTML report",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("%w: --out is required", ErrUsage)
			}
			cmp, err := a.compare(cmd, args, w)
			if err != nil {
				return err
			}

			doc := chart.NewExportDocument(cmp.Series, cmp.Stats, cmp.Start, cmp.End, chart.Options{
				MinRadius: a.cfg.BubbleMinRadius,
				MaxRadius: a.cfg.BubbleMaxRadius,
			})
			doc.Failures = cmp.Failures

			if out == "-" {
				return chart.RenderHTML(a.out, doc)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := chart.RenderHTML(f, doc); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s\n", out)
			return nil
		},
	}
	w.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout`)
	return cmd
}
