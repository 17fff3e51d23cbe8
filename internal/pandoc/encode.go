package pandoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Encode writes doc in the pandoc-api JSON form, one line, no trailing
// whitespace beyond the final newline.
func Encode(w io.Writer, doc *Document) error {
	wire := struct {
		Version []int          `json:"pandoc-api-version"`
		Meta    map[string]any `json:"meta"`
		Blocks  []any          `json:"blocks"`
	}{
		Version: doc.Version,
		Meta:    encodeMeta(doc.Meta),
		Blocks:  encodeBlocks(doc.Blocks),
	}
	if len(wire.Version) == 0 {
		wire.Version = APIVersion
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(wire)
}

// EncodeBytes is a convenience wrapper over Encode.
func EncodeBytes(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tagged(t string, c any) map[string]any {
	return map[string]any{"t": t, "c": c}
}

func nullary(t string) map[string]any {
	return map[string]any{"t": t}
}

func encodeMeta(meta Meta) map[string]any {
	out := make(map[string]any, len(meta))
	for _, entry := range meta {
		out[entry.Key] = encodeMetaValue(entry.Value)
	}
	return out
}

func encodeMetaValue(v MetaValue) any {
	switch m := v.(type) {
	case *MetaMap:
		inner := make(map[string]any, len(m.Entries))
		for _, entry := range m.Entries {
			inner[entry.Key] = encodeMetaValue(entry.Value)
		}
		return tagged("MetaMap", inner)
	case *MetaList:
		items := make([]any, 0, len(m.Entries))
		for _, e := range m.Entries {
			items = append(items, encodeMetaValue(e))
		}
		return tagged("MetaList", items)
	case MetaBool:
		return tagged("MetaBool", bool(m))
	case MetaString:
		return tagged("MetaString", string(m))
	case *MetaInlines:
		return tagged("MetaInlines", encodeInlines(m.Inlines))
	case *MetaBlocks:
		return tagged("MetaBlocks", encodeBlocks(m.Blocks))
	default:
		panic(fmt.Sprintf("unhandled meta value %T", v))
	}
}

func encodeBlocks(blocks []Block) []any {
	out := make([]any, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, encodeBlock(b))
	}
	return out
}

func encodeBlock(b Block) any {
	switch blk := b.(type) {
	case *Plain:
		return tagged("Plain", encodeInlines(blk.Inlines))
	case *Para:
		return tagged("Para", encodeInlines(blk.Inlines))
	case *LineBlock:
		lines := make([]any, 0, len(blk.Inlines))
		for _, l := range blk.Inlines {
			lines = append(lines, encodeInlines(l))
		}
		return tagged("LineBlock", lines)
	case *CodeBlock:
		return tagged("CodeBlock", []any{encodeAttr(blk.Attr), blk.Text})
	case *RawBlock:
		return tagged("RawBlock", []any{blk.Format, blk.Text})
	case *BlockQuote:
		return tagged("BlockQuote", encodeBlocks(blk.Blocks))
	case *OrderedList:
		items := make([]any, 0, len(blk.Items))
		for _, item := range blk.Items {
			items = append(items, encodeBlocks(item))
		}
		attrs := []any{blk.Attrs.Start, nullary(string(blk.Attrs.Style)), nullary(string(blk.Attrs.Delimiter))}
		return tagged("OrderedList", []any{attrs, items})
	case *BulletList:
		items := make([]any, 0, len(blk.Items))
		for _, item := range blk.Items {
			items = append(items, encodeBlocks(item))
		}
		return tagged("BulletList", items)
	case *DefinitionList:
		items := make([]any, 0, len(blk.Items))
		for _, item := range blk.Items {
			defs := make([]any, 0, len(item.Definition))
			for _, d := range item.Definition {
				defs = append(defs, encodeBlocks(d))
			}
			items = append(items, []any{encodeInlines(item.Term), defs})
		}
		return tagged("DefinitionList", items)
	case *HorizontalRule:
		return nullary("HorizontalRule")
	case *Header:
		return tagged("Header", []any{blk.Level, encodeAttr(blk.Attr), encodeInlines(blk.Inlines)})
	case *Table:
		return encodeTable(blk)
	case *Figure:
		return tagged("Figure", []any{encodeAttr(blk.Attr), encodeCaption(blk.Caption), encodeBlocks(blk.Blocks)})
	case *Div:
		return tagged("Div", []any{encodeAttr(blk.Attr), encodeBlocks(blk.Blocks)})
	default:
		panic(fmt.Sprintf("unhandled block %T", b))
	}
}

func encodeInlines(inlines []Inline) []any {
	out := make([]any, 0, len(inlines))
	for _, in := range inlines {
		out = append(out, encodeInline(in))
	}
	return out
}

func encodeInline(in Inline) any {
	switch i := in.(type) {
	case *Str:
		return tagged("Str", i.Text)
	case *Emph:
		return tagged("Emph", encodeInlines(i.Inlines))
	case *Underline:
		return tagged("Underline", encodeInlines(i.Inlines))
	case *Strong:
		return tagged("Strong", encodeInlines(i.Inlines))
	case *Strikeout:
		return tagged("Strikeout", encodeInlines(i.Inlines))
	case *Superscript:
		return tagged("Superscript", encodeInlines(i.Inlines))
	case *Subscript:
		return tagged("Subscript", encodeInlines(i.Inlines))
	case *SmallCaps:
		return tagged("SmallCaps", encodeInlines(i.Inlines))
	case *Quoted:
		return tagged("Quoted", []any{nullary(string(i.QuoteType)), encodeInlines(i.Inlines)})
	case *Cite:
		citations := make([]any, 0, len(i.Citations))
		for _, c := range i.Citations {
			citations = append(citations, map[string]any{
				"citationId":      c.Id,
				"citationPrefix":  encodeInlines(c.Prefix),
				"citationSuffix":  encodeInlines(c.Suffix),
				"citationMode":    nullary(string(c.Mode)),
				"citationNoteNum": c.NoteNum,
				"citationHash":    c.Hash,
			})
		}
		return tagged("Cite", []any{citations, encodeInlines(i.Inlines)})
	case *Code:
		return tagged("Code", []any{encodeAttr(i.Attr), i.Text})
	case *Space:
		return nullary("Space")
	case *SoftBreak:
		return nullary("SoftBreak")
	case *LineBreak:
		return nullary("LineBreak")
	case *Math:
		return tagged("Math", []any{nullary(string(i.MathType)), i.Text})
	case *RawInline:
		return tagged("RawInline", []any{i.Format, i.Text})
	case *Link:
		return tagged("Link", []any{encodeAttr(i.Attr), encodeInlines(i.Inlines), []any{i.Target.Url, i.Target.Title}})
	case *Image:
		return tagged("Image", []any{encodeAttr(i.Attr), encodeInlines(i.Inlines), []any{i.Target.Url, i.Target.Title}})
	case *Note:
		return tagged("Note", encodeBlocks(i.Blocks))
	case *Span:
		return tagged("Span", []any{encodeAttr(i.Attr), encodeInlines(i.Inlines)})
	default:
		panic(fmt.Sprintf("unhandled inline %T", in))
	}
}

func encodeAttr(a Attr) []any {
	classes := make([]any, 0, len(a.Classes))
	for _, c := range a.Classes {
		classes = append(classes, c)
	}
	kvs := make([]any, 0, len(a.KVs))
	for _, kv := range a.KVs {
		kvs = append(kvs, []any{kv.Key, kv.Value})
	}
	return []any{a.Id, classes, kvs}
}

func encodeCaption(c Caption) []any {
	var short any
	if c.Short != nil {
		short = encodeInlines(c.Short)
	}
	return []any{short, encodeBlocks(c.Long)}
}

func encodeTable(t *Table) any {
	cols := make([]any, 0, len(t.Aligns))
	for _, spec := range t.Aligns {
		var width any
		if spec.Width.Default {
			width = nullary("ColWidthDefault")
		} else {
			width = tagged("ColWidth", spec.Width.Width)
		}
		cols = append(cols, []any{nullary(string(spec.Align)), width})
	}
	bodies := make([]any, 0, len(t.Bodies))
	for _, b := range t.Bodies {
		bodies = append(bodies, []any{encodeAttr(b.Attr), b.RowHeadColumns, encodeRows(b.Head), encodeRows(b.Body)})
	}
	return tagged("Table", []any{
		encodeAttr(t.Attr),
		encodeCaption(t.Caption),
		cols,
		[]any{encodeAttr(t.Head.Attr), encodeRows(t.Head.Rows)},
		bodies,
		[]any{encodeAttr(t.Foot.Attr), encodeRows(t.Foot.Rows)},
	})
}

func encodeRows(rows []TableRow) []any {
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, []any{
				encodeAttr(cell.Attr),
				nullary(string(cell.Align)),
				cell.RowSpan,
				cell.ColSpan,
				encodeBlocks(cell.Blocks),
			})
		}
		out = append(out, []any{encodeAttr(row.Attr), cells})
	}
	return out
}
