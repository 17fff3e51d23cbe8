package render

import (
	"fmt"

	"github.com/g5becks/tablenos/internal/pandoc"
	"github.com/g5becks/tablenos/internal/resolver"
)

type htmlTarget struct {
	base
}

func (h *htmlTarget) NumberedTable(t *pandoc.Table, e *resolver.Entry) []pandoc.Block {
	// The span keeps writers from line-breaking inside "Table N:".
	h.rewriteCaption(t, e, func(prefix []pandoc.Inline) []pandoc.Inline {
		wrapped := []pandoc.Inline{&pandoc.RawInline{Format: "html", Text: "<span>"}}
		wrapped = append(wrapped, prefix...)
		return append(wrapped, &pandoc.RawInline{Format: "html", Text: "</span>"})
	})

	anchor := &pandoc.RawBlock{
		Format: "html",
		Text:   fmt.Sprintf(`<a name=%q></a>`, e.Label),
	}
	return []pandoc.Block{anchor, t}
}

func (h *htmlTarget) UnnumberedTable(t *pandoc.Table) []pandoc.Block {
	return []pandoc.Block{t}
}

func (h *htmlTarget) Reference(e *resolver.Entry, r resolver.Ref) []pandoc.Inline {
	return h.refInlines(e, r, true)
}

func (h *htmlTarget) Finalize(doc *pandoc.Document, st *resolver.Stats) {}
