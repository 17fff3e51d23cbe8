package main

import (
	"context"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
	"resty.dev/v3"

	"github.com/g5becks/tablenos/internal/diag"
	"github.com/g5becks/tablenos/internal/mdread"
	"github.com/g5becks/tablenos/internal/render"
	"github.com/g5becks/tablenos/internal/resolver"
	"github.com/g5becks/tablenos/internal/source"
	"github.com/g5becks/tablenos/internal/ui"
)

func newInspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show the numbers labeled tables would receive",
		ArgsUsage: "<file|glob|url...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit JSON output",
			},
		},
		Action: inspectAction,
	}
}

func inspectAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: tablenos inspect <file|glob|url...>").
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

	client := resty.New()
	defer client.Close()

	printer := diag.NewPrinter(os.Stderr, cfg.WarningLevel)
	var tables []ui.TableInfo
	for i := range inputs {
		in := &inputs[i]
		content, err := in.Read(ctx, client)
		if err != nil {
			return err
		}
		doc, err := mdread.Parse(content)
		if err != nil {
			return oops.With("input", in.Name).Wrapf(err, "parsing %q", in.Name)
		}

		docCfg := *cfg
		var diags diag.Collector
		docCfg.ApplyMeta(doc.Meta, &diags)

		r := resolver.New(render.ForFormat("plain", &docCfg), &docCfg, &diags)
		r.Apply(doc)
		printer.WithPrefix(in.Name).Print(diags.All())

		for _, e := range r.Entries() {
			info := ui.TableInfo{
				Label:   e.Label,
				Number:  e.DisplayText(docCfg.NumberBySection),
				Tagged:  e.Tagged,
				Caption: e.Caption,
			}
			if docCfg.NumberBySection {
				info.Section = e.Section
			}
			tables = append(tables, info)
		}
	}

	return ui.RenderInspect(tables, ui.InspectOptions{JSON: cmd.Bool("json")})
}
