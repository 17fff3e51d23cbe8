package pandoc

// Visitor drives a single in-order traversal of a document tree.
//
// Block is called for every block element before its children are
// visited. Returning (replacement, true) substitutes the block with the
// replacement slice (which may be empty to delete it); children of the
// replacement blocks are still visited, but Block is not re-applied to
// them, so a handler may safely wrap an element with new siblings.
//
// Inlines is called for every complete inline list in the tree after
// the list's children have been visited, and its return value replaces
// the list. This list-level shape lets handlers match sequences that
// span adjacent inlines, such as a modifier character sitting in the
// Str before a citation.
type Visitor struct {
	Block   func(Block) ([]Block, bool)
	Inlines func([]Inline) []Inline
}

// Walk traverses the document, applying the visitor to every block and
// inline list, and stores the rewritten block list back on the document.
// Metadata values are traversed too, so references inside MetaInlines
// and MetaBlocks (e.g. an abstract) are rewritten as well.
func Walk(doc *Document, v Visitor) {
	doc.Blocks = v.walkBlocks(doc.Blocks)
	for i := range doc.Meta {
		doc.Meta[i].Value = v.walkMeta(doc.Meta[i].Value)
	}
}

// WalkBlocks traverses a block list outside of a full document.
func WalkBlocks(blocks []Block, v Visitor) []Block {
	return v.walkBlocks(blocks)
}

func (v Visitor) walkBlocks(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if v.Block != nil {
			if repl, ok := v.Block(b); ok {
				for _, rb := range repl {
					out = append(out, v.walkBlockChildren(rb))
				}
				continue
			}
		}
		out = append(out, v.walkBlockChildren(b))
	}
	return out
}

func (v Visitor) walkBlockChildren(b Block) Block {
	switch e := b.(type) {
	case *Plain:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Para:
		e.Inlines = v.walkInlines(e.Inlines)
	case *LineBlock:
		for i := range e.Inlines {
			e.Inlines[i] = v.walkInlines(e.Inlines[i])
		}
	case *BlockQuote:
		e.Blocks = v.walkBlocks(e.Blocks)
	case *OrderedList:
		for i := range e.Items {
			e.Items[i] = v.walkBlocks(e.Items[i])
		}
	case *BulletList:
		for i := range e.Items {
			e.Items[i] = v.walkBlocks(e.Items[i])
		}
	case *DefinitionList:
		for i := range e.Items {
			e.Items[i].Term = v.walkInlines(e.Items[i].Term)
			for j := range e.Items[i].Definition {
				e.Items[i].Definition[j] = v.walkBlocks(e.Items[i].Definition[j])
			}
		}
	case *Header:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Table:
		e.Caption = v.walkCaption(e.Caption)
		e.Head.Rows = v.walkRows(e.Head.Rows)
		for i := range e.Bodies {
			e.Bodies[i].Head = v.walkRows(e.Bodies[i].Head)
			e.Bodies[i].Body = v.walkRows(e.Bodies[i].Body)
		}
		e.Foot.Rows = v.walkRows(e.Foot.Rows)
	case *Figure:
		e.Caption = v.walkCaption(e.Caption)
		e.Blocks = v.walkBlocks(e.Blocks)
	case *Div:
		e.Blocks = v.walkBlocks(e.Blocks)
	}
	return b
}

func (v Visitor) walkCaption(c Caption) Caption {
	if c.Short != nil {
		c.Short = v.walkInlines(c.Short)
	}
	c.Long = v.walkBlocks(c.Long)
	return c
}

func (v Visitor) walkRows(rows []TableRow) []TableRow {
	for i := range rows {
		for j := range rows[i].Cells {
			rows[i].Cells[j].Blocks = v.walkBlocks(rows[i].Cells[j].Blocks)
		}
	}
	return rows
}

func (v Visitor) walkInlines(inlines []Inline) []Inline {
	for i, in := range inlines {
		inlines[i] = v.walkInlineChildren(in)
	}
	if v.Inlines != nil {
		return v.Inlines(inlines)
	}
	return inlines
}

func (v Visitor) walkInlineChildren(in Inline) Inline {
	switch e := in.(type) {
	case *Emph:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Underline:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Strong:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Strikeout:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Superscript:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Subscript:
		e.Inlines = v.walkInlines(e.Inlines)
	case *SmallCaps:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Quoted:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Cite:
		// A cite's fallback inlines are the raw reference text; they
		// are left alone so unresolved references stay verbatim.
	case *Link:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Image:
		e.Inlines = v.walkInlines(e.Inlines)
	case *Note:
		e.Blocks = v.walkBlocks(e.Blocks)
	case *Span:
		e.Inlines = v.walkInlines(e.Inlines)
	}
	return in
}

func (v Visitor) walkMeta(m MetaValue) MetaValue {
	switch e := m.(type) {
	case *MetaMap:
		for i := range e.Entries {
			e.Entries[i].Value = v.walkMeta(e.Entries[i].Value)
		}
	case *MetaList:
		for i := range e.Entries {
			e.Entries[i] = v.walkMeta(e.Entries[i])
		}
	case *MetaInlines:
		e.Inlines = v.walkInlines(e.Inlines)
	case *MetaBlocks:
		e.Blocks = v.walkBlocks(e.Blocks)
	}
	return m
}
