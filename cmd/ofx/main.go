package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	ofxcli "github.com/robinvdvleuten/ofx/cli"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	cli struct {
		Version kong.VersionFlag `help:"Show version information"`
		ofxcli.Commands
	}
)

func main() {
	ofxcli.Version = Version
	ofxcli.CommitSHA = CommitSHA

	ctx := kong.Parse(&cli,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("ofx"),
		kong.Description("Inspect, format, convert and summarize OFX bank statements."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)

	err := ctx.Run()

	var cmdErr *ofxcli.CommandError
	if errors.As(err, &cmdErr) {
		if !cmdErr.Silent() {
			_, _ = fmt.Fprintf(os.Stderr, "%s: error: %s\n", ctx.Model.Name, cmdErr.Error())
		}
		os.Exit(cmdErr.ExitCode())
	}
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	if CommitSHA == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, CommitSHA)
}
