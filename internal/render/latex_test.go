package render_test

import (
	"strings"
	"testing"

	"github.com/g5becks/tablenos/internal/pandoc"
	"github.com/g5becks/tablenos/internal/render"
	"github.com/g5becks/tablenos/internal/resolver"
)

func rawBlockTexts(blocks []pandoc.Block) []string {
	var out []string
	for _, b := range blocks {
		if rb, ok := b.(*pandoc.RawBlock); ok {
			out = append(out, rb.Text)
		}
	}
	return out
}

func headerIncludesText(t *testing.T, doc *pandoc.Document) string {
	t.Helper()
	v := doc.Meta.Get("header-includes")
	if v == nil {
		return ""
	}
	var entries []pandoc.MetaValue
	switch m := v.(type) {
	case *pandoc.MetaList:
		entries = m.Entries
	case *pandoc.MetaBlocks:
		entries = []pandoc.MetaValue{m}
	default:
		t.Fatalf("header-includes is %T, want list or blocks", v)
	}
	var sb strings.Builder
	for _, e := range entries {
		mb, ok := e.(*pandoc.MetaBlocks)
		if !ok {
			t.Fatalf("header-includes entry is %T, want *pandoc.MetaBlocks", e)
		}
		for _, b := range mb.Blocks {
			rb, ok := b.(*pandoc.RawBlock)
			if !ok || rb.Format != "tex" {
				t.Fatalf("header-includes block is %#v, want tex RawBlock", b)
			}
			sb.WriteString(rb.Text)
		}
	}
	return sb.String()
}

func TestLatexCaptionLabel(t *testing.T) {
	tgt := render.ForFormat("latex", settings())
	tbl := captionedTable("Caption")
	blocks := tgt.NumberedTable(tbl, &resolver.Entry{Label: "tbl:x", Number: 1})

	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	plain := tbl.Caption.Long[0].(*pandoc.Plain)
	last, ok := plain.Inlines[len(plain.Inlines)-1].(*pandoc.RawInline)
	if !ok || last.Format != "tex" {
		t.Fatalf("caption does not end in a tex RawInline: %#v", plain.Inlines)
	}
	if want := `\label{tbl:x}`; last.Text != want {
		t.Errorf("label = %q, want %q", last.Text, want)
	}
	// The caption body itself stays as written; LaTeX numbers it.
	if got := pandoc.Stringify(plain.Inlines); !strings.HasPrefix(got, "Caption") {
		t.Errorf("caption = %q, want untouched body", got)
	}
}

func TestLatexUnreferenceableHasNoLabel(t *testing.T) {
	tgt := render.ForFormat("latex", settings())
	tbl := captionedTable("Caption")
	tgt.NumberedTable(tbl, &resolver.Entry{Label: "tbl:unreferenceable-1", Unreferenceable: true, Number: 1})

	plain := tbl.Caption.Long[0].(*pandoc.Plain)
	for _, in := range plain.Inlines {
		if ri, ok := in.(*pandoc.RawInline); ok && strings.Contains(ri.Text, `\label`) {
			t.Fatalf("unreferenceable caption got a label: %q", ri.Text)
		}
	}
}

func TestLatexTaggedTableEnvironment(t *testing.T) {
	tgt := render.ForFormat("latex", settings())
	tbl := captionedTable("Caption")
	entry := &resolver.Entry{Label: "tbl:x", Tagged: true, Tag: "B.1"}
	blocks := tgt.NumberedTable(tbl, entry)

	texts := rawBlockTexts(blocks)
	if len(texts) != 2 {
		t.Fatalf("raw blocks = %v, want begin/end pair", texts)
	}
	if want := `\begin{tablenos:tagged-table}[B.1]`; texts[0] != want {
		t.Errorf("begin = %q, want %q", texts[0], want)
	}
	if want := `\end{tablenos:tagged-table}`; texts[1] != want {
		t.Errorf("end = %q, want %q", texts[1], want)
	}
}

func TestLatexUnnumberedWrapped(t *testing.T) {
	tgt := render.ForFormat("latex", settings())
	tbl := captionedTable("Caption")
	blocks := tgt.UnnumberedTable(tbl)

	texts := rawBlockTexts(blocks)
	if len(texts) != 2 || !strings.Contains(texts[0], "no-prefix-table-caption") {
		t.Fatalf("raw blocks = %v, want no-prefix environment pair", texts)
	}
}

func TestLatexCounterQuirkLeavesUnnumberedAlone(t *testing.T) {
	cfg := settings()
	cfg.LatexCounterQuirk = true
	tgt := render.ForFormat("latex", cfg)
	tbl := captionedTable("Caption")
	blocks := tgt.UnnumberedTable(tbl)

	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want bare table under quirk mode", len(blocks))
	}
}

func TestLatexReferenceMacros(t *testing.T) {
	entry := &resolver.Entry{Label: "tbl:x", Number: 1}

	tests := []struct {
		name     string
		cleveref bool
		ref      resolver.Ref
		want     string
	}{
		{"plain", false, resolver.Ref{Label: "tbl:x"}, `\ref{tbl:x}`},
		{"clever default", true, resolver.Ref{Label: "tbl:x"}, `\cref{tbl:x}`},
		{"plus", false, resolver.Ref{Label: "tbl:x", Modifier: resolver.ModPlus}, `\cref{tbl:x}`},
		{"star", false, resolver.Ref{Label: "tbl:x", Modifier: resolver.ModStar}, `\Cref{tbl:x}`},
		{"bang", true, resolver.Ref{Label: "tbl:x", Modifier: resolver.ModBang}, `\ref{tbl:x}`},
		{"nolink", false, resolver.Ref{Label: "tbl:x", LinkDisabled: true}, `\ref*{tbl:x}`},
	}
	for _, tt := range tests {
		cfg := settings()
		cfg.Cleveref = tt.cleveref
		tgt := render.ForFormat("latex", cfg)
		inlines := tgt.Reference(entry, tt.ref)
		raw, ok := inlines[0].(*pandoc.RawInline)
		if !ok || raw.Format != "tex" {
			t.Fatalf("%s: inlines[0] = %#v, want tex RawInline", tt.name, inlines[0])
		}
		if raw.Text != tt.want {
			t.Errorf("%s: macro = %q, want %q", tt.name, raw.Text, tt.want)
		}
	}
}

func TestLatexFinalizeHeaderIncludes(t *testing.T) {
	cfg := settings()
	cfg.Cleveref = true
	cfg.NumberBySection = true
	cfg.CaptionName = "Tabla"
	tgt := render.ForFormat("latex", cfg)

	doc := &pandoc.Document{}
	st := &resolver.Stats{
		AnyLabeled:    true,
		HasUnnumbered: true,
		HasTagged:     true,
		CleverUsed:    true,
		RefCount:      2,
	}
	tgt.Finalize(doc, st)

	tex := headerIncludesText(t, doc)
	for _, want := range []string{
		`\usepackage{cleveref}`,
		"tablenos:no-prefix-table-caption",
		"tablenos:tagged-table",
		`\renewcommand{\tablename}{Tabla}`,
		`\numberwithin{table}{section}`,
	} {
		if !strings.Contains(tex, want) {
			t.Errorf("header-includes missing %q", want)
		}
	}
}

func TestLatexFinalizeCapitaliseOption(t *testing.T) {
	cfg := settings()
	cfg.Capitalise = true
	tgt := render.ForFormat("latex", cfg)

	doc := &pandoc.Document{}
	tgt.Finalize(doc, &resolver.Stats{AnyLabeled: true, CleverUsed: true, RefCount: 1})
	if tex := headerIncludesText(t, doc); !strings.Contains(tex, `\usepackage[capitalise]{cleveref}`) {
		t.Errorf("header-includes = %q, want capitalise option", tex)
	}
}

func TestLatexFinalizeSkipsExistingCleveref(t *testing.T) {
	cfg := settings()
	cfg.Cleveref = true
	tgt := render.ForFormat("latex", cfg)

	doc := &pandoc.Document{Meta: pandoc.Meta{{
		Key: "header-includes",
		Value: &pandoc.MetaBlocks{Blocks: []pandoc.Block{
			&pandoc.RawBlock{Format: "tex", Text: `\usepackage[nameinlink]{cleveref}`},
		}},
	}}}
	tgt.Finalize(doc, &resolver.Stats{AnyLabeled: true, CleverUsed: true, RefCount: 1})

	tex := headerIncludesText(t, doc)
	if strings.Count(tex, "cleveref") != 1 {
		t.Errorf("cleveref loaded twice:\n%s", tex)
	}
}

func TestLatexFinalizeNoLabeledTablesIsNoOp(t *testing.T) {
	cfg := settings()
	cfg.Cleveref = true
	tgt := render.ForFormat("latex", cfg)

	doc := &pandoc.Document{}
	tgt.Finalize(doc, &resolver.Stats{})
	if doc.Meta.Get("header-includes") != nil {
		t.Error("header-includes written for a document with no labeled tables")
	}
}
