// Command tablenos numbers tables in pandoc documents and resolves
// the references that point at them. Run bare it is a pandoc JSON
// filter: `pandoc --filter tablenos`. The subcommands work on
// markdown files directly.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/tablenos/internal/config"
	"github.com/g5becks/tablenos/internal/diag"
	"github.com/g5becks/tablenos/internal/pandoc"
	"github.com/g5becks/tablenos/internal/render"
	"github.com/g5becks/tablenos/internal/resolver"
)

var (
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	version = "dev"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	commit = "unknown"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	buildTime = "unknown"
)

func main() {
	if err := run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return newRootCommand().Run(context.Background(), args)
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:      "tablenos",
		Usage:     "Number tables and table references in pandoc documents",
		ArgsUsage: "[format]",
		Version:   versionString(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file"},
		},
		Commands: []*cli.Command{
			newProcessCommand(),
			newInspectCommand(),
			newInitCommand(),
		},
		Action: filterAction,
	}
}

// filterAction is the pandoc filter protocol: JSON document on stdin,
// transformed JSON on stdout, diagnostics on stderr. Pandoc passes the
// output format as the only argument.
func filterAction(_ context.Context, cmd *cli.Command) error {
	format := cmd.Args().Get(0)
	return runFilter(format, cmd.String("config"), os.Stdin, os.Stdout, os.Stderr)
}

func runFilter(format, configPath string, in io.Reader, out, errOut io.Writer) error {
	cfg, err := config.Load(configPath, "")
	if err != nil {
		return err
	}

	doc, err := pandoc.Decode(in)
	if err != nil {
		return oops.
			Code("BAD_INPUT").
			Hint("Run through pandoc: pandoc --filter tablenos doc.md").
			Wrapf(err, "reading pandoc JSON from stdin")
	}

	var diags diag.Collector
	cfg.ApplyMeta(doc.Meta, &diags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	resolver.New(render.ForFormat(format, cfg), cfg, &diags).Apply(doc)

	if err := pandoc.Encode(out, doc); err != nil {
		return oops.Wrapf(err, "writing pandoc JSON to stdout")
	}

	diag.NewPrinter(errOut, cfg.WarningLevel).Print(diags.All())
	return nil
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime)
}
