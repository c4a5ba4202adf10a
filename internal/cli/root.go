// Package cli implements rankctl, the command line front end of rankscope.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	service "github.com/okian/rankscope/internal/app"
	"github.com/okian/rankscope/internal/config"
	"github.com/okian/rankscope/pkg/logger"
)

// App holds the state shared by rankctl commands.
type App struct {
	out    io.Writer
	errOut io.Writer
	colors bool
	now    func() time.Time

	preset      *config.Config
	serviceOpts []service.Option

	// Persistent flags.
	configFile string
	logLevel   string
	backend    string
	storePath  string
	noColor    bool

	cfg *config.Config
	log logger.Logger
	svc *service.Service
}

// New returns an App writing to stdout and stderr.
func New(opts ...Option) *App {
	a := &App{
		out:    os.Stdout,
		errOut: os.Stderr,
		colors: !color.NoColor,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs rankctl with args.
func Execute(ctx context.Context, args []string, opts ...Option) error {
	a := New(opts...)
	defer a.teardown()
	cmd := a.Command()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// Command builds the command tree.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "rankctl",
		Short: "Compare domain rank histories from the command line",
		Long: `rankctl manages the rankscope domain store and compares rank histories.

Examples:
  rankctl import google.com.csv github.com.csv
  rankctl list
  rankctl compare google.com github.com --start 2024-01-01 --end 2024-03-31
  rankctl export google.com github.com --out report.html
  rankctl seed --dir ./samples --domains 4 --days 120`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", os.Getenv(config.FileEnv), "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override: debug, info, warn, error")
	flags.StringVar(&a.backend, "store-backend", "", "store backend override: file, badger, memory")
	flags.StringVar(&a.storePath, "store-path", "", "store path override")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.importCommand(),
		a.listCommand(),
		a.deleteCommand(),
		a.suggestCommand(),
		a.ranksCommand(),
		a.compareCommand(),
		a.exportCommand(),
		a.seedCommand(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg := a.preset
	if cfg == nil {
		loaded, err := config.LoadFile(cmd.Context(), a.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		copied := *cfg
		cfg = &copied
	}
	if a.backend != "" {
		cfg.StoreBackend = a.backend
	}
	if a.storePath != "" {
		cfg.StorePath = a.storePath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	if a.noColor {
		a.colors = false
	}

	// Diagnostics go to errOut so command output stays pipeable.
	if err := logger.InitWith(a.errOut, logger.Format(cfg.LogFormat)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	a.log = logger.Named("rankctl")
	return nil
}

// teardown stops the service so the store backend is released.
func (a *App) teardown() {
	if a.svc != nil {
		a.svc.Stop()
		a.svc = nil
	}
}

// openService lazily builds the service for commands that need the store.
func (a *App) openService(ctx context.Context, extra ...service.Option) (*service.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	opts := append([]service.Option{}, a.serviceOpts...)
	svc, err := service.NewFromConfig(ctx, a.cfg, a.log, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}
	a.svc = svc
	return svc, nil
}
