package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/rankscope/internal/seed"
)

func (a *App) seedCommand() *cobra.Command {
	var (
		dir         string
		names       []string
		count, days int
		seedValue   uint64
		start       string
		monthTokens bool
		importFiles bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate synthetic rank CSV files",
		Long: `Generate one random-walk rank history per domain as "date,rank" CSV files.
Output is reproducible for a given --seed. With --import the files are also
uploaded into the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return fmt.Errorf("%w: --days must be positive", ErrUsage)
			}
			cfg := seed.Config{
				Domains:     names,
				Count:       count,
				Days:        days,
				Seed:        seedValue,
				MonthTokens: monthTokens,
			}
			if start != "" {
				t, err := time.Parse(time.DateOnly, start)
				if err != nil {
					return fmt.Errorf("%w: --start: %w", ErrUsage, err)
				}
				cfg.Start = t
			} else {
				cfg.Start = a.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -cfg.Days)
			}

			files, err := seed.Generate(cfg)
			if err != nil {
				return err
			}
			paths, err := seed.WriteDir(cmd.Context(), dir, files)
			if err != nil {
				return err
			}
			for i, path := range paths {
				fmt.Fprintf(a.out, "wrote %s (%d samples)\n", path, files[i].Rows)
			}
			if !importFiles {
				return nil
			}

			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			for _, path := range paths {
				res, err := a.importFile(cmd, svc, path, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "imported %s: %d samples\n", res.Domain, res.Count)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&dir, "dir", filepath.Join(".", "samples"), "output directory")
	f.StringSliceVar(&names, "names", nil, "domain names (default: site-N.example)")
	f.IntVar(&count, "domains", seed.DefaultDomains, "number of domains when --names is empty")
	f.IntVar(&days, "days", seed.DefaultDays, "days of history")
	f.Uint64Var(&seedValue, "seed", 1, "random seed")
	f.StringVar(&start, "start", "", "first date, YYYY-MM-DD (default: --days before today)")
	f.BoolVar(&monthTokens, "month-tokens", false, "write YYYY-MM for the first day of each month")
	f.BoolVar(&importFiles, "import", false, "also import the generated files")
	return cmd
}
