package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
	"github.com/mattn/go-runewidth"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ofx/ast"
	"github.com/robinvdvleuten/ofx/loader"
	"github.com/robinvdvleuten/ofx/output"
	"github.com/robinvdvleuten/ofx/parser"
)

// DoctorCmd provides doctor utilities for debugging OFX statements.
type DoctorCmd struct {
	Lex      LexCmd      `cmd:"" help:"Show how every line of a statement is classified."`
	Tree     TreeCmd     `cmd:"" help:"Dump the parsed document."`
	Describe DescribeCmd `cmd:"" help:"Describe OFX tags and transaction types."`
}

// LexCmd shows the classified lines of a statement.
type LexCmd struct {
	File FileOrStdin `help:"OFX statement filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// Run executes the lex command.
func (cmd *LexCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	content, err := cmd.File.GetSourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	content, _, err = loader.Decode(content)
	if err != nil {
		return fmt.Errorf("failed to decode file: %w", err)
	}

	// Format: KIND line:col TAG "value"
	for _, line := range parser.NewLexer(content, cmd.File.Filename).ScanAll() {
		if line.Kind == parser.BLANK {
			continue
		}

		detail := fmt.Sprintf("%q", line.Text)
		switch line.Kind {
		case parser.OPEN, parser.CLOSE:
			detail = line.Tag
		case parser.INLINE, parser.SGML:
			detail = fmt.Sprintf("%s %q", line.Tag, line.Value)
		}

		_, _ = fmt.Fprintf(ctx.Stdout, "%-8s %d:%d    %s\n",
			line.Kind.String(),
			line.Line,
			line.Column,
			detail)
	}

	return nil
}

// TreeCmd dumps the document a statement parses to.
type TreeCmd struct {
	File FileOrStdin `help:"OFX statement filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// Run executes the tree command.
func (cmd *TreeCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, reportTelemetry := globals.session(ctx, "doctor tree")
	defer reportTelemetry()

	cfg, err := globals.Config()
	if err != nil {
		return err
	}

	stmt, err := cmd.File.Load(runCtx, globals.Loader(cfg))
	if err != nil {
		return err
	}
	reportWarnings(ctx.Stderr, stmt)

	repr.New(ctx.Stdout, repr.Indent("  "), repr.OmitEmpty(true)).Println(stmt.Document)
	return nil
}

// DescribeCmd explains tags in the configured language.
type DescribeCmd struct {
	Tags []string    `help:"Tags to describe; all known tags when omitted." arg:"" optional:""`
	File FileOrStdin `help:"Describe the tags used in this statement instead." short:"f" placeholder:"FILE"`
}

// Run executes the describe command.
func (cmd *DescribeCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := globals.Config()
	if err != nil {
		return err
	}
	catalog := globals.Catalog(cfg)

	tags := cmd.Tags
	if cmd.File.Filename != "" {
		stmt, err := cmd.File.Load(context.Background(), globals.Loader(cfg))
		if err != nil {
			return err
		}
		tags = append(tags, usedTags(stmt.Document)...)
	}
	if len(tags) == 0 {
		for tag := range catalog.Tags {
			tags = append(tags, tag)
		}
		slices.Sort(tags)
	}

	width := 0
	for _, tag := range tags {
		width = max(width, runewidth.StringWidth(tag))
	}

	styles := output.NewStyles(ctx.Stdout)
	unknown := 0
	for _, tag := range tags {
		tag = strings.ToUpper(tag)
		description, ok := catalog.TagDescription(tag)
		if !ok {
			unknown++
			description = styles.Dim("unknown tag")
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "%s  %s\n", styles.Tag(runewidth.FillRight(tag, width)), description)
	}

	if unknown == len(tags) && len(cmd.Tags) > 0 {
		return NewCommandError(ExitProblems)
	}
	return nil
}

// usedTags lists the distinct tags and transaction types of doc in document
// order.
func usedTags(doc *ast.Document) []string {
	seen := map[string]bool{}
	var tags []string
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	var walk func(obj *ast.Object)
	walk = func(obj *ast.Object) {
		for _, key := range obj.Keys() {
			add(key)
			value, _ := obj.Get(key)
			for _, item := range ast.Items(value) {
				switch v := item.(type) {
				case *ast.Object:
					walk(v)
				case ast.String:
					if key == "TRNTYPE" {
						add(string(v))
					}
				}
			}
		}
	}
	walk(doc.Body)
	return tags
}
