package render

import (
	"fmt"

	"github.com/g5becks/tablenos/internal/pandoc"
	"github.com/g5becks/tablenos/internal/resolver"
)

type docxTarget struct {
	base
}

func (d *docxTarget) NumberedTable(t *pandoc.Table, e *resolver.Entry) []pandoc.Block {
	d.rewriteCaption(t, e, nil)

	// Bookmark per http://officeopenxml.com/WPhyperlink.php so
	// in-document links have something to land on.
	start := &pandoc.RawBlock{
		Format: "openxml",
		Text:   fmt.Sprintf(`<w:bookmarkStart w:id="0" w:name=%q/>`, e.Label),
	}
	end := &pandoc.RawBlock{
		Format: "openxml",
		Text:   `<w:bookmarkEnd w:id="0"/>`,
	}
	return []pandoc.Block{start, t, end}
}

func (d *docxTarget) UnnumberedTable(t *pandoc.Table) []pandoc.Block {
	return []pandoc.Block{t}
}

func (d *docxTarget) Reference(e *resolver.Entry, r resolver.Ref) []pandoc.Inline {
	return d.refInlines(e, r, true)
}

func (d *docxTarget) Finalize(doc *pandoc.Document, st *resolver.Stats) {}
