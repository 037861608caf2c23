package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ledgerentry/cli"
)

var app struct {
	Version kong.VersionFlag `help:"Show version information"`
	cli.Commands
}

func main() {
	if err := cli.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := kong.Parse(&app,
		cli.Vars(),
		kong.Name("ledgerentry"),
		kong.Description("Compose ledger transactions with short change commands and insert them in date order."),
		kong.UsageOnError(),
		kong.Configuration(cli.YAML, cli.DefaultConfigPaths...),
		kong.Bind(&app.Globals),
	)

	err := ctx.Run()
	if err != nil && !cli.Reported(err) {
		fmt.Fprintf(os.Stderr, "%s: error: %s\n", ctx.Model.Name, err)
	}
	os.Exit(cli.ExitCode(err))
}
