package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ofx/formatter"
	"github.com/robinvdvleuten/ofx/loader"
)

type FormatCmd struct {
	File   FileOrStdin `help:"OFX statement filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Indent int         `help:"Spaces per nesting level (overrides OFX_TAB_SIZE if set)." default:"0"`
	Tabs   bool        `help:"Indent with tabs instead of spaces."`
	Write  bool        `help:"Write the result back to the file instead of stdout." short:"w"`
	Force  bool        `help:"Write without confirmation even when the statement has structural problems." short:"f"`
}

func (cmd *FormatCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	if cmd.Write && cmd.File.IsStdin() {
		return errors.New("--write needs a file, not stdin")
	}

	runCtx, reportTelemetry := globals.session(ctx, fmt.Sprintf("format %s", filepath.Base(cmd.File.Filename)))
	defer reportTelemetry()

	cfg, err := globals.Config()
	if err != nil {
		return err
	}

	// The file is rewritten in its own charset.
	stmt, err := cmd.File.Load(runCtx, globals.Loader(cfg, loader.WithKeepEncoding()))
	if err != nil {
		return err
	}

	opts := cfg.FormatterOptions()
	if cmd.Indent > 0 {
		opts = append(opts, formatter.WithIndentation(cmd.Indent))
	}
	if cmd.Tabs {
		opts = append(opts, formatter.WithTabs())
	}
	f := formatter.New(opts...)

	if !cmd.Write {
		return f.Format(runCtx, stmt.Source, ctx.Stdout)
	}

	var buf bytes.Buffer
	if err := f.Format(runCtx, stmt.Source, &buf); err != nil {
		return err
	}

	if bytes.Equal(buf.Bytes(), stmt.Source) {
		printInfof(ctx.Stdout, "%s is already formatted", pathStyle.Render(cmd.File.Filename))
		return nil
	}

	if reportWarnings(ctx.Stderr, stmt) > 0 && !cmd.Force {
		confirmed, err := promptYesNo(fmt.Sprintf("Write %s anyway?", cmd.File.Filename))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !confirmed {
			printError(ctx.Stderr, "not written, use --force to write anyway")
			return NewCommandError(ExitProblems)
		}
	}

	info, err := os.Stat(cmd.File.Filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.File.Filename, buf.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.File.Filename, err)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Formatted %s", pathStyle.Render(cmd.File.Filename)))
	return nil
}
