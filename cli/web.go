package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ofx/formatter"
	"github.com/robinvdvleuten/ofx/web"
)

type WebCmd struct {
	File     string `help:"OFX statement file to serve." arg:"" type:"existingfile"`
	Port     int    `help:"Port to listen on." default:"8080"`
	ReadOnly bool   `help:"Enable read-only mode (the statement is never rewritten)." short:"r"`
	NoWatch  bool   `help:"Do not reload when the statement changes."`
}

func (cmd *WebCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, reportTelemetry := globals.session(ctx, fmt.Sprintf("web %s", filepath.Base(cmd.File)))
	defer reportTelemetry()

	runCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	cfg, err := globals.Config()
	if err != nil {
		return err
	}

	statementFile, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	opts := []web.Option{
		web.WithPort(cmd.Port),
		web.WithVersion(version, commitSHA),
		web.WithLoader(globals.Loader(cfg)),
		web.WithFormatter(formatter.New(cfg.FormatterOptions()...)),
		web.WithCatalog(globals.Catalog(cfg)),
		web.WithLogger(globals.Logger(ctx.Stderr).WithPrefix("web")),
		web.WithWatch(!cmd.NoWatch),
	}
	if cmd.ReadOnly {
		opts = append(opts, web.WithReadOnly())
	}
	server := web.New(statementFile, opts...)

	printInfof(ctx.Stdout, "Starting server on http://%s:%d", server.Host, server.Port)
	printInfof(ctx.Stdout, "Serving statement: %s", pathStyle.Render(statementFile))

	if cmd.ReadOnly {
		printInfof(ctx.Stdout, "Server running in READ-ONLY mode")
	}

	return server.Start(runCtx)
}
