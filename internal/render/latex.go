package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/g5becks/tablenos/internal/config"
	"github.com/g5becks/tablenos/internal/pandoc"
	"github.com/g5becks/tablenos/internal/resolver"
)

// latexTarget leaves numbering to LaTeX's own table counter: captions
// get \label and references become \ref or cleveref macros. Tagged and
// unnumbered tables need helper environments injected into
// header-includes.
type latexTarget struct {
	cfg *config.Settings
}

func (l *latexTarget) NumberedTable(t *pandoc.Table, e *resolver.Entry) []pandoc.Block {
	if !e.Unreferenceable {
		appendToCaption(&t.Caption, &pandoc.RawInline{
			Format: "tex",
			Text:   fmt.Sprintf(`\label{%s}`, e.Label),
		})
	}

	if !e.Tagged {
		return []pandoc.Block{t}
	}

	tag := e.Tag
	if e.TagIsMath {
		tag = "$" + tag + "$"
	}
	return []pandoc.Block{
		&pandoc.RawBlock{
			Format: "tex",
			Text:   fmt.Sprintf(`\begin{tablenos:tagged-table}[%s]`, tag),
		},
		t,
		&pandoc.RawBlock{Format: "tex", Text: `\end{tablenos:tagged-table}`},
	}
}

func (l *latexTarget) UnnumberedTable(t *pandoc.Table) []pandoc.Block {
	if l.cfg.LatexCounterQuirk {
		// Compatibility mode: let LaTeX number caption-bearing tables
		// even without a label, as the original toolchain did.
		return []pandoc.Block{t}
	}
	if len(t.Caption.Long) == 0 {
		return []pandoc.Block{t}
	}
	return []pandoc.Block{
		&pandoc.RawBlock{Format: "tex", Text: `\begin{tablenos:no-prefix-table-caption}`},
		t,
		&pandoc.RawBlock{Format: "tex", Text: `\end{tablenos:no-prefix-table-caption}`},
	}
}

func (l *latexTarget) Reference(e *resolver.Entry, r resolver.Ref) []pandoc.Inline {
	star := ""
	if r.LinkDisabled {
		star = "*"
	}

	macro := `\ref`
	switch r.Modifier {
	case resolver.ModPlus:
		macro = `\cref`
	case resolver.ModStar:
		macro = `\Cref`
	case resolver.ModBang:
		macro = `\ref`
	default:
		if l.cfg.Cleveref {
			macro = `\cref`
		}
	}
	return []pandoc.Inline{&pandoc.RawInline{
		Format: "tex",
		Text:   fmt.Sprintf(`%s%s{%s}`, macro, star, e.Label),
	}}
}

var cleverefPackagePattern = regexp.MustCompile(`\\usepackage(\[[\w\s,]*\])?\{cleveref\}`)

func (l *latexTarget) Finalize(doc *pandoc.Document, st *resolver.Stats) {
	if !st.AnyLabeled {
		return
	}

	if st.CleverUsed && st.RefCount > 0 {
		opts := ""
		if l.cfg.Capitalise {
			opts = "[capitalise]"
		}
		addHeaderIncludes(doc,
			fmt.Sprintf("%%%% tablenos: required package\n\\usepackage%s{cleveref}\n", opts),
			cleverefPackagePattern)
	}
	if l.cfg.PlusNameSet && st.RefCount > 0 {
		addHeaderIncludes(doc,
			fmt.Sprintf(crefNamesTex, l.cfg.PlusName[0], l.cfg.PlusName[1]), nil)
	}
	if l.cfg.StarNameSet && st.RefCount > 0 {
		addHeaderIncludes(doc,
			fmt.Sprintf(crefNamesStarTex, l.cfg.StarName[0], l.cfg.StarName[1]), nil)
	}
	if st.HasUnnumbered && !l.cfg.LatexCounterQuirk {
		addHeaderIncludes(doc, noPrefixCaptionTex, nil)
	}
	if st.HasTagged {
		addHeaderIncludes(doc, taggedTableTex, nil)
	}
	if l.cfg.CaptionName != "Table" {
		addHeaderIncludes(doc, fmt.Sprintf(captionNameTex, l.cfg.CaptionName), nil)
	}
	if l.cfg.NumberBySection {
		addHeaderIncludes(doc, numberBySectionTex, nil)
	}
}

// addHeaderIncludes appends a tex block to the header-includes
// metadata, skipping it when already matches existing content.
func addHeaderIncludes(doc *pandoc.Document, tex string, already *regexp.Regexp) {
	existing := doc.Meta.Get("header-includes")
	if already != nil && existing != nil && already.MatchString(metaText(existing)) {
		return
	}

	block := &pandoc.MetaBlocks{Blocks: []pandoc.Block{
		&pandoc.RawBlock{Format: "tex", Text: tex},
	}}

	switch v := existing.(type) {
	case nil:
		doc.Meta.Set("header-includes", &pandoc.MetaList{Entries: []pandoc.MetaValue{block}})
	case *pandoc.MetaList:
		v.Entries = append(v.Entries, block)
	default:
		doc.Meta.Set("header-includes", &pandoc.MetaList{Entries: []pandoc.MetaValue{v, block}})
	}
}

// metaText flattens a metadata value to searchable text.
func metaText(v pandoc.MetaValue) string {
	switch m := v.(type) {
	case pandoc.MetaString:
		return string(m)
	case *pandoc.MetaInlines:
		return rawInlineText(m.Inlines)
	case *pandoc.MetaBlocks:
		var sb strings.Builder
		for _, b := range m.Blocks {
			if rb, ok := b.(*pandoc.RawBlock); ok {
				sb.WriteString(rb.Text)
				continue
			}
			sb.WriteString(pandoc.Stringify(blockInlines(b)))
		}
		return sb.String()
	case *pandoc.MetaList:
		var sb strings.Builder
		for _, e := range m.Entries {
			sb.WriteString(metaText(e))
			sb.WriteByte('\n')
		}
		return sb.String()
	default:
		return ""
	}
}

func rawInlineText(inlines []pandoc.Inline) string {
	var sb strings.Builder
	for _, in := range inlines {
		if ri, ok := in.(*pandoc.RawInline); ok {
			sb.WriteString(ri.Text)
			continue
		}
		sb.WriteString(pandoc.Stringify([]pandoc.Inline{in}))
	}
	return sb.String()
}

func blockInlines(b pandoc.Block) []pandoc.Inline {
	switch v := b.(type) {
	case *pandoc.Plain:
		return v.Inlines
	case *pandoc.Para:
		return v.Inlines
	default:
		return nil
	}
}

// appendToCaption adds an inline to the end of the caption's last
// inline run, creating one when the caption is empty.
func appendToCaption(c *pandoc.Caption, in pandoc.Inline) {
	for i := len(c.Long) - 1; i >= 0; i-- {
		switch blk := c.Long[i].(type) {
		case *pandoc.Plain:
			blk.Inlines = append(blk.Inlines, in)
			return
		case *pandoc.Para:
			blk.Inlines = append(blk.Inlines, in)
			return
		}
	}
	c.Long = append(c.Long, &pandoc.Plain{Inlines: []pandoc.Inline{in}})
}
