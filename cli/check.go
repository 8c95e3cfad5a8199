package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	ofxerrors "github.com/robinvdvleuten/ofx/errors"
)

// CheckCmd reports every structural problem of a statement. Nesting is
// always checked strictly.
type CheckCmd struct {
	File FileOrStdin `help:"OFX statement filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	JSON bool        `help:"Print the problems as JSON."`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, reportTelemetry := globals.session(ctx, fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
	defer reportTelemetry()

	cfg, err := globals.Config()
	if err != nil {
		return err
	}
	cfg.StrictNesting = true

	stmt, err := cmd.File.Load(runCtx, globals.Loader(cfg))
	if err != nil {
		return err
	}

	if cmd.JSON {
		_, _ = fmt.Fprintln(ctx.Stdout, ofxerrors.NewJSONFormatter().FormatAll(stmt.Warnings))
		if len(stmt.Warnings) > 0 {
			return NewCommandError(ExitProblems)
		}
		return nil
	}

	if n := reportWarnings(ctx.Stderr, stmt); n > 0 {
		reportTelemetry()
		return NewCommandError(ExitProblems)
	}

	printSuccess(ctx.Stdout, "Check passed")
	return nil
}
