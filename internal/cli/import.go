package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	service "github.com/okian/rankscope/internal/app"
	"github.com/okian/rankscope/internal/domain/ingest"
	"github.com/okian/rankscope/pkg/logger"
)

func (a *App) importCommand() *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "import <file.csv>...",
		Short: "Upload CSV rank files into the store",
		Long: `Upload one or more "date,rank" CSV files. The domain name is the file name
without ".csv" unless --domain is given. Rows that do not parse are skipped;
a file without any valid row is rejected and leaves the store unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if domain != "" && len(args) > 1 {
				return fmt.Errorf("%w: --domain needs exactly one file", ErrUsage)
			}
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}

			p := a.palette()
			failed := 0
			for _, path := range args {
				res, err := a.importFile(cmd, svc, path, domain)
				if err != nil {
					failed++
					a.log.Warn(cmd.Context(), "import failed", logger.String("file", path), logger.Error(err))
					fmt.Fprintf(a.errOut, "%s %s: %v\n", p.red("failed"), path, err)
					continue
				}
				fmt.Fprintf(a.out, "%s %s: %d samples", p.green("imported"), res.Domain, res.Count)
				if res.Skipped > 0 {
					fmt.Fprintf(a.out, " (%s)", p.yellow(fmt.Sprintf("%d rows skipped", res.Skipped)))
				}
				fmt.Fprintln(a.out)
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", ErrPartialFailure, failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "domain name to store the file under")
	return cmd
}

func (a *App) importFile(cmd *cobra.Command, svc *service.Service, path, domain string) (service.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return service.UploadResult{}, fmt.Errorf("%w: %w", ingest.ErrReadFailure, err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	res, err := svc.Upload(cmd.Context(), service.UploadRequest{
		Reader:   f,
		Filename: filepath.Base(path),
		Size:     size,
		Domain:   domain,
	})
	if errors.Is(err, ingest.ErrNoValidData) {
		return res, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return res, err
}
