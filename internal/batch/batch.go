// Package batch runs the filter over many documents at once. Each
// document gets its own resolver; only the fan-out is shared.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	"github.com/g5becks/tablenos/internal/config"
	"github.com/g5becks/tablenos/internal/diag"
	"github.com/g5becks/tablenos/internal/mdread"
	"github.com/g5becks/tablenos/internal/pandoc"
	"github.com/g5becks/tablenos/internal/render"
	"github.com/g5becks/tablenos/internal/resolver"
	"github.com/g5becks/tablenos/internal/source"
)

const defaultParallelism = 4

type Options struct {
	// Format is the output family the tables are rendered for.
	Format string
	// OutDir receives the JSON documents; empty writes next to each
	// input.
	OutDir string
	// Parallelism bounds concurrent documents; zero means the default.
	Parallelism int
	// DryRun resolves and reports without writing output files.
	DryRun bool
}

// Result is the outcome for one input document.
type Result struct {
	Input  string
	Output string
	Tables int
	Diags  []diag.Diagnostic
	Err    error
}

// Run processes every input and returns one result per input, in
// input order. Failures are per-document; a broken input never stops
// its siblings.
func Run(ctx context.Context, cfg *config.Settings, inputs []source.Input, opts Options) []Result {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}

	client := resty.New()
	defer client.Close()

	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, in := range inputs {
		g.Go(func() error {
			results[i] = processOne(ctx, cfg, in, opts, client)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func processOne(ctx context.Context, cfg *config.Settings, in source.Input, opts Options, client *resty.Client) Result {
	result := Result{Input: in.Name}

	content, err := in.Read(ctx, client)
	if err != nil {
		result.Err = err
		return result
	}

	doc, err := mdread.Parse(content)
	if err != nil {
		result.Err = oops.With("input", in.Name).Wrapf(err, "parsing %q", in.Name)
		return result
	}

	// Per-document settings copy: metadata overrides must not leak
	// between documents.
	docCfg := *cfg
	var diags diag.Collector
	docCfg.ApplyMeta(doc.Meta, &diags)

	r := resolver.New(render.ForFormat(opts.Format, &docCfg), &docCfg, &diags)
	r.Apply(doc)

	result.Tables = len(r.Entries())
	result.Diags = diags.All()
	result.Output = outputPath(in.Name, opts.OutDir)

	if opts.DryRun {
		return result
	}

	data, err := pandoc.EncodeBytes(doc)
	if err != nil {
		result.Err = oops.With("input", in.Name).Wrapf(err, "encoding %q", in.Name)
		return result
	}
	if err := writeOutput(result.Output, data); err != nil {
		result.Err = err
	}
	return result
}

func outputPath(inputName, outDir string) string {
	base := filepath.Base(inputName)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base += ".json"

	if outDir != "" {
		return filepath.Join(outDir, base)
	}
	dir := filepath.Dir(inputName)
	if dir == "." && !strings.Contains(inputName, string(filepath.Separator)) {
		return base
	}
	return filepath.Join(dir, base)
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", path).
			Wrapf(err, "creating output directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", path).
			Wrapf(err, "writing output file")
	}
	return nil
}
