package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/robinvdvleuten/ofx/config"
	"github.com/robinvdvleuten/ofx/i18n"
	"github.com/robinvdvleuten/ofx/loader"
	"github.com/robinvdvleuten/ofx/output"
	"github.com/robinvdvleuten/ofx/telemetry"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry        bool   `help:"Show timing telemetry for operations."`
	LogLevel         string `help:"Minimum level of log messages." enum:"debug,info,warn,error" default:"info"`
	EnvFile          string `help:"Read settings from this .env file instead of ./.env." type:"path"`
	Locale           string `help:"Language of labels, e.g. pt-BR. Defaults to OFX_LOCALE or LANG."`
	Strict           bool   `help:"Report closing tags that do not name the open container."`
	FullHeaderValues bool   `help:"Keep colons inside header values."`
}

type Commands struct {
	Globals

	Check   CheckCmd   `cmd:"" help:"Check the tag structure of an OFX statement."`
	Convert ConvertCmd `cmd:"" help:"Convert an OFX statement to another format."`
	Doctor  DoctorCmd  `cmd:"" help:"Doctor utilities for debugging OFX statements."`
	Format  FormatCmd  `cmd:"" help:"Re-indent an OFX statement by nesting depth."`
	Report  ReportCmd  `cmd:"" help:"Summarize the transactions of an OFX statement."`
	Web     WebCmd     `cmd:"" help:"Serve a statement in the transaction viewer."`
}

// Config loads the settings from the environment and applies the global
// flags on top.
func (g *Globals) Config() (*config.Config, error) {
	cfg, err := config.Load(g.EnvFile)
	if err != nil {
		return nil, err
	}
	if g.Locale != "" {
		cfg.Locale = g.Locale
	}
	if g.Strict {
		cfg.StrictNesting = true
	}
	if g.FullHeaderValues {
		cfg.FullHeaderValues = true
	}
	return cfg, nil
}

// Loader returns a loader configured by cfg.
func (g *Globals) Loader(cfg *config.Config, opts ...loader.Option) *loader.Loader {
	opts = append([]loader.Option{loader.WithParserOptions(cfg.ParserOptions()...)}, opts...)
	return loader.New(opts...)
}

// Catalog returns the label catalog for the configured locale.
func (g *Globals) Catalog(cfg *config.Config) *i18n.Catalog {
	return i18n.Resolve(cfg.Locale)
}

// Logger returns a logger writing to w at the configured level.
func (g *Globals) Logger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(g.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "ofx",
		Level:  level,
	})
}

// session starts the telemetry of a command when enabled. The returned
// function ends the root timer and prints the timing tree once.
func (g *Globals) session(kctx *kong.Context, name string) (context.Context, func()) {
	ctx := context.Background()
	if !g.Telemetry {
		return ctx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	timer := collector.Start(name)

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			timer.End()
			_, _ = fmt.Fprintln(kctx.Stderr)
			collector.Report(kctx.Stderr, output.NewStyles(kctx.Stderr))
		})
	}
}
