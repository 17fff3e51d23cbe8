package main

import (
	"context"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/tablenos/internal/batch"
	"github.com/g5becks/tablenos/internal/config"
	"github.com/g5becks/tablenos/internal/diag"
	"github.com/g5becks/tablenos/internal/source"
	"github.com/g5becks/tablenos/internal/ui"
)

const defaultParallel = 4

func newProcessCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Number tables in markdown files and write pandoc JSON",
		ArgsUsage: "<file|glob|url...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   "Output format family: latex, html, docx, or plain",
				Value:   "html",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Directory for output files (default: next to each input)",
			},
			&cli.IntFlag{
				Name:    "parallel",
				Aliases: []string{"p"},
				Usage:   "Maximum documents processed in parallel",
				Value:   defaultParallel,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve and report without writing files",
			},
		},
		Action: processAction,
	}
}

func processAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: tablenos process <file|glob|url...>").
			Errorf("no input files given")
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	inputs, err := source.Resolve(cmd.Args().Slice())
	if err != nil {
		return err
	}

	results := batch.Run(ctx, cfg, inputs, batch.Options{
		Format:      cmd.String("format"),
		OutDir:      cmd.String("out"),
		Parallelism: cmd.Int("parallel"),
		DryRun:      cmd.Bool("dry-run"),
	})

	printer := diag.NewPrinter(os.Stderr, cfg.WarningLevel)
	docs := make([]ui.DocumentStatus, 0, len(results))
	for _, r := range results {
		printer.WithPrefix(r.Input).Print(r.Diags)
		docs = append(docs, ui.DocumentStatus{
			Input:    r.Input,
			Output:   r.Output,
			Tables:   r.Tables,
			Warnings: countWarnings(r.Diags),
			Err:      r.Err,
		})
	}

	if failed := ui.RenderBatchSummary(docs); failed > 0 {
		return oops.
			Code("PROCESS_FAILED").
			Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}

func countWarnings(diags []diag.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == diag.Warning {
			n++
		}
	}
	return n
}

func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	cfg, err := config.Load(cmd.String("config"), "")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
