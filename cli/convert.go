package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ofx/converter"
	"github.com/robinvdvleuten/ofx/parser"
)

// ConvertCmd renders a statement's document in another format.
type ConvertCmd struct {
	File   FileOrStdin `help:"OFX statement filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	To     string      `help:"Target format." default:"json" short:"t"`
	Output string      `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (cmd *ConvertCmd) Run(ctx *kong.Context, globals *Globals) error {
	// Reject the format before reading anything.
	format, err := converter.ParseFormat(cmd.To)
	if err != nil {
		var unsupported *converter.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			return NewCommandErrorf(ExitUsage, err.Error())
		}
		return err
	}

	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, reportTelemetry := globals.session(ctx, fmt.Sprintf("convert %s", filepath.Base(cmd.File.Filename)))
	defer reportTelemetry()

	cfg, err := globals.Config()
	if err != nil {
		return err
	}

	stmt, err := cmd.File.Load(runCtx, globals.Loader(cfg))
	if err != nil {
		return err
	}

	result, err := converter.Convert(runCtx, stmt.Source, format, append(cfg.ParserOptions(), parser.WithFilename(stmt.Filename))...)
	if err != nil {
		return err
	}

	logger := globals.Logger(ctx.Stderr)
	for _, w := range result.Warnings {
		logger.Warn("structural problem", "err", w)
	}

	if cmd.Output == "" {
		_, err := fmt.Fprintln(ctx.Stdout, result.Content)
		return err
	}

	if err := os.WriteFile(cmd.Output, []byte(result.Content+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.Output, err)
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote %s", pathStyle.Render(cmd.Output)))
	return nil
}
