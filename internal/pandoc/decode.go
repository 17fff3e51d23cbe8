package pandoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// node is the tagged wire form every AST constructor shares:
// {"t": "Str", "c": ...} with "c" absent for nullary constructors.
type node struct {
	T string          `json:"t"`
	C json.RawMessage `json:"c"`
}

// Decode reads a pandoc-api JSON document.
func Decode(r io.Reader) (*Document, error) {
	var raw struct {
		Version []int             `json:"pandoc-api-version"`
		Meta    map[string]node   `json:"meta"`
		Blocks  []json.RawMessage `json:"blocks"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding pandoc document: %w", err)
	}
	doc := &Document{Version: raw.Version}
	if len(doc.Version) == 0 {
		doc.Version = APIVersion
	}
	meta, err := decodeMetaObject(raw.Meta)
	if err != nil {
		return nil, err
	}
	doc.Meta = meta
	doc.Blocks, err = decodeBlockList(raw.Blocks)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeBytes is a convenience wrapper over Decode.
func DecodeBytes(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

func decodeBlockList(raws []json.RawMessage) ([]Block, error) {
	blocks := make([]Block, 0, len(raws))
	for _, raw := range raws {
		b, err := decodeBlockRaw(raw)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func decodeBlockRaw(raw json.RawMessage) (Block, error) {
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("decoding block: %w", err)
	}
	return decodeBlock(n)
}

func decodeBlock(n node) (Block, error) {
	switch n.T {
	case "Plain":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &Plain{Inlines: inlines}, nil
	case "Para":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &Para{Inlines: inlines}, nil
	case "LineBlock":
		var rows [][]json.RawMessage
		if err := json.Unmarshal(n.C, &rows); err != nil {
			return nil, fmt.Errorf("decoding LineBlock: %w", err)
		}
		lb := &LineBlock{Inlines: make([][]Inline, 0, len(rows))}
		for _, row := range rows {
			inlines, err := decodeInlineList(row)
			if err != nil {
				return nil, err
			}
			lb.Inlines = append(lb.Inlines, inlines)
		}
		return lb, nil
	case "CodeBlock":
		var tup struct {
			Attr attrWire
			Text string
		}
		if err := unmarshalTuple(n.C, &tup.Attr, &tup.Text); err != nil {
			return nil, fmt.Errorf("decoding CodeBlock: %w", err)
		}
		return &CodeBlock{Attr: tup.Attr.attr(), Text: tup.Text}, nil
	case "RawBlock":
		var format, text string
		if err := unmarshalTuple(n.C, &format, &text); err != nil {
			return nil, fmt.Errorf("decoding RawBlock: %w", err)
		}
		return &RawBlock{Format: format, Text: text}, nil
	case "BlockQuote":
		var raws []json.RawMessage
		if err := json.Unmarshal(n.C, &raws); err != nil {
			return nil, fmt.Errorf("decoding BlockQuote: %w", err)
		}
		blocks, err := decodeBlockList(raws)
		if err != nil {
			return nil, err
		}
		return &BlockQuote{Blocks: blocks}, nil
	case "OrderedList":
		var attrs listAttrsWire
		var items [][]json.RawMessage
		if err := unmarshalTuple(n.C, &attrs, &items); err != nil {
			return nil, fmt.Errorf("decoding OrderedList: %w", err)
		}
		ol := &OrderedList{Attrs: attrs.attrs()}
		for _, item := range items {
			blocks, err := decodeBlockList(item)
			if err != nil {
				return nil, err
			}
			ol.Items = append(ol.Items, blocks)
		}
		return ol, nil
	case "BulletList":
		var items [][]json.RawMessage
		if err := json.Unmarshal(n.C, &items); err != nil {
			return nil, fmt.Errorf("decoding BulletList: %w", err)
		}
		bl := &BulletList{}
		for _, item := range items {
			blocks, err := decodeBlockList(item)
			if err != nil {
				return nil, err
			}
			bl.Items = append(bl.Items, blocks)
		}
		return bl, nil
	case "DefinitionList":
		var items [][2]json.RawMessage
		if err := json.Unmarshal(n.C, &items); err != nil {
			return nil, fmt.Errorf("decoding DefinitionList: %w", err)
		}
		dl := &DefinitionList{}
		for _, item := range items {
			term, err := decodeInlineRaws(item[0])
			if err != nil {
				return nil, err
			}
			var defRaws [][]json.RawMessage
			if err := json.Unmarshal(item[1], &defRaws); err != nil {
				return nil, fmt.Errorf("decoding definition: %w", err)
			}
			def := Definition{Term: term}
			for _, d := range defRaws {
				blocks, err := decodeBlockList(d)
				if err != nil {
					return nil, err
				}
				def.Definition = append(def.Definition, blocks)
			}
			dl.Items = append(dl.Items, def)
		}
		return dl, nil
	case "HorizontalRule":
		return &HorizontalRule{}, nil
	case "Header":
		var level int
		var attr attrWire
		var raws []json.RawMessage
		if err := unmarshalTuple(n.C, &level, &attr, &raws); err != nil {
			return nil, fmt.Errorf("decoding Header: %w", err)
		}
		inlines, err := decodeInlineList(raws)
		if err != nil {
			return nil, err
		}
		return &Header{Attr: attr.attr(), Level: level, Inlines: inlines}, nil
	case "Table":
		return decodeTable(n.C)
	case "Figure":
		var attr attrWire
		var capRaw, blocksRaw json.RawMessage
		if err := unmarshalTuple(n.C, &attr, &capRaw, &blocksRaw); err != nil {
			return nil, fmt.Errorf("decoding Figure: %w", err)
		}
		caption, err := decodeCaption(capRaw)
		if err != nil {
			return nil, err
		}
		var raws []json.RawMessage
		if err := json.Unmarshal(blocksRaw, &raws); err != nil {
			return nil, fmt.Errorf("decoding Figure content: %w", err)
		}
		blocks, err := decodeBlockList(raws)
		if err != nil {
			return nil, err
		}
		return &Figure{Attr: attr.attr(), Caption: caption, Blocks: blocks}, nil
	case "Div":
		var attr attrWire
		var raws []json.RawMessage
		if err := unmarshalTuple(n.C, &attr, &raws); err != nil {
			return nil, fmt.Errorf("decoding Div: %w", err)
		}
		blocks, err := decodeBlockList(raws)
		if err != nil {
			return nil, err
		}
		return &Div{Attr: attr.attr(), Blocks: blocks}, nil
	default:
		return nil, fmt.Errorf("unknown block type %q", n.T)
	}
}

func decodeInlineRaws(raw json.RawMessage) ([]Inline, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(raw, &raws); err != nil {
		return nil, fmt.Errorf("decoding inline list: %w", err)
	}
	return decodeInlineList(raws)
}

func decodeInlineList(raws []json.RawMessage) ([]Inline, error) {
	inlines := make([]Inline, 0, len(raws))
	for _, raw := range raws {
		var n node
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decoding inline: %w", err)
		}
		in, err := decodeInline(n)
		if err != nil {
			return nil, err
		}
		inlines = append(inlines, in)
	}
	return inlines, nil
}

func decodeInline(n node) (Inline, error) {
	switch n.T {
	case "Str":
		var s string
		if err := json.Unmarshal(n.C, &s); err != nil {
			return nil, fmt.Errorf("decoding Str: %w", err)
		}
		return &Str{Text: s}, nil
	case "Emph":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &Emph{Inlines: inlines}, nil
	case "Underline":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &Underline{Inlines: inlines}, nil
	case "Strong":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &Strong{Inlines: inlines}, nil
	case "Strikeout":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &Strikeout{Inlines: inlines}, nil
	case "Superscript":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &Superscript{Inlines: inlines}, nil
	case "Subscript":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &Subscript{Inlines: inlines}, nil
	case "SmallCaps":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &SmallCaps{Inlines: inlines}, nil
	case "Quoted":
		var qt node
		var raws []json.RawMessage
		if err := unmarshalTuple(n.C, &qt, &raws); err != nil {
			return nil, fmt.Errorf("decoding Quoted: %w", err)
		}
		inlines, err := decodeInlineList(raws)
		if err != nil {
			return nil, err
		}
		return &Quoted{QuoteType: QuoteType(qt.T), Inlines: inlines}, nil
	case "Cite":
		var citRaws, raws []json.RawMessage
		if err := unmarshalTuple(n.C, &citRaws, &raws); err != nil {
			return nil, fmt.Errorf("decoding Cite: %w", err)
		}
		cite := &Cite{}
		for _, cr := range citRaws {
			c, err := decodeCitation(cr)
			if err != nil {
				return nil, err
			}
			cite.Citations = append(cite.Citations, c)
		}
		inlines, err := decodeInlineList(raws)
		if err != nil {
			return nil, err
		}
		cite.Inlines = inlines
		return cite, nil
	case "Code":
		var attr attrWire
		var text string
		if err := unmarshalTuple(n.C, &attr, &text); err != nil {
			return nil, fmt.Errorf("decoding Code: %w", err)
		}
		return &Code{Attr: attr.attr(), Text: text}, nil
	case "Space":
		return &Space{}, nil
	case "SoftBreak":
		return &SoftBreak{}, nil
	case "LineBreak":
		return &LineBreak{}, nil
	case "Math":
		var mt node
		var text string
		if err := unmarshalTuple(n.C, &mt, &text); err != nil {
			return nil, fmt.Errorf("decoding Math: %w", err)
		}
		return &Math{MathType: MathType(mt.T), Text: text}, nil
	case "RawInline":
		var format, text string
		if err := unmarshalTuple(n.C, &format, &text); err != nil {
			return nil, fmt.Errorf("decoding RawInline: %w", err)
		}
		return &RawInline{Format: format, Text: text}, nil
	case "Link":
		attr, inlines, target, err := decodeLinkish(n.C)
		if err != nil {
			return nil, err
		}
		return &Link{Attr: attr, Inlines: inlines, Target: target}, nil
	case "Image":
		attr, inlines, target, err := decodeLinkish(n.C)
		if err != nil {
			return nil, err
		}
		return &Image{Attr: attr, Inlines: inlines, Target: target}, nil
	case "Note":
		var raws []json.RawMessage
		if err := json.Unmarshal(n.C, &raws); err != nil {
			return nil, fmt.Errorf("decoding Note: %w", err)
		}
		blocks, err := decodeBlockList(raws)
		if err != nil {
			return nil, err
		}
		return &Note{Blocks: blocks}, nil
	case "Span":
		var attr attrWire
		var raws []json.RawMessage
		if err := unmarshalTuple(n.C, &attr, &raws); err != nil {
			return nil, fmt.Errorf("decoding Span: %w", err)
		}
		inlines, err := decodeInlineList(raws)
		if err != nil {
			return nil, err
		}
		return &Span{Attr: attr.attr(), Inlines: inlines}, nil
	default:
		return nil, fmt.Errorf("unknown inline type %q", n.T)
	}
}

func decodeLinkish(raw json.RawMessage) (Attr, []Inline, Target, error) {
	var attr attrWire
	var raws []json.RawMessage
	var target [2]string
	if err := unmarshalTuple(raw, &attr, &raws, &target); err != nil {
		return Attr{}, nil, Target{}, fmt.Errorf("decoding link: %w", err)
	}
	inlines, err := decodeInlineList(raws)
	if err != nil {
		return Attr{}, nil, Target{}, err
	}
	return attr.attr(), inlines, Target{Url: target[0], Title: target[1]}, nil
}

func decodeCitation(raw json.RawMessage) (Citation, error) {
	var wire struct {
		Id      string            `json:"citationId"`
		Prefix  []json.RawMessage `json:"citationPrefix"`
		Suffix  []json.RawMessage `json:"citationSuffix"`
		Mode    node              `json:"citationMode"`
		NoteNum int               `json:"citationNoteNum"`
		Hash    int               `json:"citationHash"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Citation{}, fmt.Errorf("decoding citation: %w", err)
	}
	prefix, err := decodeInlineList(wire.Prefix)
	if err != nil {
		return Citation{}, err
	}
	suffix, err := decodeInlineList(wire.Suffix)
	if err != nil {
		return Citation{}, err
	}
	return Citation{
		Id:      wire.Id,
		Prefix:  prefix,
		Suffix:  suffix,
		Mode:    CitationMode(wire.Mode.T),
		NoteNum: wire.NoteNum,
		Hash:    wire.Hash,
	}, nil
}

func decodeTable(raw json.RawMessage) (*Table, error) {
	var attr attrWire
	var capRaw, colsRaw, headRaw, bodiesRaw, footRaw json.RawMessage
	if err := unmarshalTuple(raw, &attr, &capRaw, &colsRaw, &headRaw, &bodiesRaw, &footRaw); err != nil {
		return nil, fmt.Errorf("decoding Table: %w", err)
	}
	t := &Table{Attr: attr.attr()}
	var err error
	if t.Caption, err = decodeCaption(capRaw); err != nil {
		return nil, err
	}
	var cols []colSpecWire
	if err := json.Unmarshal(colsRaw, &cols); err != nil {
		return nil, fmt.Errorf("decoding column specs: %w", err)
	}
	for _, c := range cols {
		t.Aligns = append(t.Aligns, c.spec())
	}
	if t.Head, err = decodeTableHeadFoot(headRaw); err != nil {
		return nil, err
	}
	var bodyRaws []json.RawMessage
	if err := json.Unmarshal(bodiesRaw, &bodyRaws); err != nil {
		return nil, fmt.Errorf("decoding table bodies: %w", err)
	}
	for _, br := range bodyRaws {
		body, err := decodeTableBody(br)
		if err != nil {
			return nil, err
		}
		t.Bodies = append(t.Bodies, body)
	}
	if t.Foot, err = decodeTableHeadFoot(footRaw); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeCaption(raw json.RawMessage) (Caption, error) {
	var shortRaw, longRaw json.RawMessage
	if err := unmarshalTuple(raw, &shortRaw, &longRaw); err != nil {
		return Caption{}, fmt.Errorf("decoding caption: %w", err)
	}
	var c Caption
	if string(shortRaw) != "null" {
		short, err := decodeInlineRaws(shortRaw)
		if err != nil {
			return Caption{}, err
		}
		c.Short = short
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(longRaw, &raws); err != nil {
		return Caption{}, fmt.Errorf("decoding caption blocks: %w", err)
	}
	long, err := decodeBlockList(raws)
	if err != nil {
		return Caption{}, err
	}
	c.Long = long
	return c, nil
}

func decodeTableHeadFoot(raw json.RawMessage) (TableHeadFoot, error) {
	var attr attrWire
	var rowsRaw []json.RawMessage
	if err := unmarshalTuple(raw, &attr, &rowsRaw); err != nil {
		return TableHeadFoot{}, fmt.Errorf("decoding table head/foot: %w", err)
	}
	rows, err := decodeTableRows(rowsRaw)
	if err != nil {
		return TableHeadFoot{}, err
	}
	return TableHeadFoot{Attr: attr.attr(), Rows: rows}, nil
}

func decodeTableBody(raw json.RawMessage) (TableBody, error) {
	var attr attrWire
	var rhc int
	var headRaw, bodyRaw []json.RawMessage
	if err := unmarshalTuple(raw, &attr, &rhc, &headRaw, &bodyRaw); err != nil {
		return TableBody{}, fmt.Errorf("decoding table body: %w", err)
	}
	head, err := decodeTableRows(headRaw)
	if err != nil {
		return TableBody{}, err
	}
	body, err := decodeTableRows(bodyRaw)
	if err != nil {
		return TableBody{}, err
	}
	return TableBody{Attr: attr.attr(), RowHeadColumns: rhc, Head: head, Body: body}, nil
}

func decodeTableRows(raws []json.RawMessage) ([]TableRow, error) {
	rows := make([]TableRow, 0, len(raws))
	for _, raw := range raws {
		var attr attrWire
		var cellRaws []json.RawMessage
		if err := unmarshalTuple(raw, &attr, &cellRaws); err != nil {
			return nil, fmt.Errorf("decoding table row: %w", err)
		}
		row := TableRow{Attr: attr.attr()}
		for _, cr := range cellRaws {
			cell, err := decodeTableCell(cr)
			if err != nil {
				return nil, err
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeTableCell(raw json.RawMessage) (TableCell, error) {
	var attr attrWire
	var align node
	var rowSpan, colSpan int
	var blockRaws []json.RawMessage
	if err := unmarshalTuple(raw, &attr, &align, &rowSpan, &colSpan, &blockRaws); err != nil {
		return TableCell{}, fmt.Errorf("decoding table cell: %w", err)
	}
	blocks, err := decodeBlockList(blockRaws)
	if err != nil {
		return TableCell{}, err
	}
	return TableCell{
		Attr:    attr.attr(),
		Align:   Alignment(align.T),
		RowSpan: rowSpan,
		ColSpan: colSpan,
		Blocks:  blocks,
	}, nil
}

func decodeMetaObject(raw map[string]node) (Meta, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	meta := make(Meta, 0, len(raw))
	keys := sortedKeys(raw)
	for _, key := range keys {
		v, err := decodeMetaValue(raw[key])
		if err != nil {
			return nil, err
		}
		meta = append(meta, MetaEntry{Key: key, Value: v})
	}
	return meta, nil
}

func decodeMetaValue(n node) (MetaValue, error) {
	switch n.T {
	case "MetaMap":
		var raw map[string]node
		if err := json.Unmarshal(n.C, &raw); err != nil {
			return nil, fmt.Errorf("decoding MetaMap: %w", err)
		}
		entries, err := decodeMetaObject(raw)
		if err != nil {
			return nil, err
		}
		return &MetaMap{Entries: entries}, nil
	case "MetaList":
		var raws []node
		if err := json.Unmarshal(n.C, &raws); err != nil {
			return nil, fmt.Errorf("decoding MetaList: %w", err)
		}
		ml := &MetaList{}
		for _, r := range raws {
			v, err := decodeMetaValue(r)
			if err != nil {
				return nil, err
			}
			ml.Entries = append(ml.Entries, v)
		}
		return ml, nil
	case "MetaBool":
		var b bool
		if err := json.Unmarshal(n.C, &b); err != nil {
			return nil, fmt.Errorf("decoding MetaBool: %w", err)
		}
		return MetaBool(b), nil
	case "MetaString":
		var s string
		if err := json.Unmarshal(n.C, &s); err != nil {
			return nil, fmt.Errorf("decoding MetaString: %w", err)
		}
		return MetaString(s), nil
	case "MetaInlines":
		inlines, err := decodeInlineRaws(n.C)
		if err != nil {
			return nil, err
		}
		return &MetaInlines{Inlines: inlines}, nil
	case "MetaBlocks":
		var raws []json.RawMessage
		if err := json.Unmarshal(n.C, &raws); err != nil {
			return nil, fmt.Errorf("decoding MetaBlocks: %w", err)
		}
		blocks, err := decodeBlockList(raws)
		if err != nil {
			return nil, err
		}
		return &MetaBlocks{Blocks: blocks}, nil
	default:
		return nil, fmt.Errorf("unknown meta value type %q", n.T)
	}
}

// ---- wire helpers ----

// attrWire is the [id, [classes], [[k,v],...]] tuple form of Attr.
type attrWire struct {
	Id      string
	Classes []string
	KVs     [][2]string
}

func (w *attrWire) UnmarshalJSON(data []byte) error {
	return unmarshalTuple(data, &w.Id, &w.Classes, &w.KVs)
}

func (w *attrWire) attr() Attr {
	a := Attr{Id: w.Id, Classes: w.Classes}
	for _, kv := range w.KVs {
		a.KVs = append(a.KVs, KV{Key: kv[0], Value: kv[1]})
	}
	return a
}

type colSpecWire struct {
	Align node
	Width node
}

func (w *colSpecWire) UnmarshalJSON(data []byte) error {
	return unmarshalTuple(data, &w.Align, &w.Width)
}

func (w *colSpecWire) spec() ColSpec {
	spec := ColSpec{Align: Alignment(w.Align.T)}
	if w.Width.T == "ColWidthDefault" {
		spec.Width.Default = true
	} else {
		_ = json.Unmarshal(w.Width.C, &spec.Width.Width)
	}
	return spec
}

type listAttrsWire struct {
	Start int
	Style node
	Delim node
}

func (w *listAttrsWire) UnmarshalJSON(data []byte) error {
	return unmarshalTuple(data, &w.Start, &w.Style, &w.Delim)
}

func (w *listAttrsWire) attrs() ListAttrs {
	return ListAttrs{
		Start:     w.Start,
		Style:     ListNumberStyle(w.Style.T),
		Delimiter: ListNumberDelim(w.Delim.T),
	}
}

// unmarshalTuple unpacks a fixed-size JSON array into the given targets.
func unmarshalTuple(data []byte, targets ...any) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	if len(raws) != len(targets) {
		return fmt.Errorf("expected %d-tuple, got %d elements", len(targets), len(raws))
	}
	for i, raw := range raws {
		if err := json.Unmarshal(raw, targets[i]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
