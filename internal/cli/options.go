package cli

import (
	"io"
	"time"

	service "github.com/okian/rankscope/internal/app"
	"github.com/okian/rankscope/internal/config"
)

// Option configures an App.
type Option func(*App)

// WithOutput sets the writers for command output and diagnostics.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		if out != nil {
			a.out = out
		}
		if errOut != nil {
			a.errOut = errOut
		}
	}
}

// WithConfig skips config loading and uses cfg as is. Flags still
// override it.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.preset = cfg
	}
}

// WithColors forces colored output on or off.
func WithColors(enabled bool) Option {
	return func(a *App) {
		a.colors = enabled
	}
}

// WithServiceOptions appends options to every service the App builds.
func WithServiceOptions(opts ...service.Option) Option {
	return func(a *App) {
		a.serviceOpts = append(a.serviceOpts, opts...)
	}
}

// WithClock replaces time.Now, used for seed windows.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}
