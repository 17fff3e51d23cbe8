// Package mdread parses markdown into the filter's document model for
// batch runs that do not go through pandoc itself. It covers the
// constructs the filter cares about: headings, paragraphs, pipe
// tables with "Table: ..." captions, and @tbl: citations in text.
package mdread

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"

	"github.com/g5becks/tablenos/internal/pandoc"
)

var citePattern = regexp.MustCompile(`@tbl:[\w/-]*`)

// Parse converts markdown content into a pandoc document. A leading
// YAML frontmatter block becomes the document's metadata, so
// tablenos-* keys set there carry the same weight as they do when
// pandoc delivers the document.
func Parse(content []byte) (*pandoc.Document, error) {
	front, body := splitFrontmatter(stripBOM(content))

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	root := mdParser.Parse(body)

	doc := &pandoc.Document{Version: pandoc.APIVersion}
	if len(front) > 0 {
		meta, err := parseFrontmatter(front)
		if err != nil {
			return nil, oops.Wrapf(err, "parsing frontmatter")
		}
		doc.Meta = meta
	}
	blocks, err := convertChildren(root)
	if err != nil {
		return nil, err
	}
	doc.Blocks = attachCaptions(blocks)
	return doc, nil
}

func parseFrontmatter(front []byte) (pandoc.Meta, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(front), yaml.Parser()); err != nil {
		return nil, err
	}
	return metaFromMap(k.Raw()), nil
}

func metaFromMap(m map[string]any) pandoc.Meta {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	meta := make(pandoc.Meta, 0, len(m))
	for _, key := range keys {
		meta = append(meta, pandoc.MetaEntry{Key: key, Value: metaValueOf(m[key])})
	}
	return meta
}

func metaValueOf(v any) pandoc.MetaValue {
	switch t := v.(type) {
	case bool:
		return pandoc.MetaBool(t)
	case string:
		return pandoc.MetaString(t)
	case []any:
		list := &pandoc.MetaList{}
		for _, e := range t {
			list.Entries = append(list.Entries, metaValueOf(e))
		}
		return list
	case map[string]any:
		return &pandoc.MetaMap{Entries: metaFromMap(t)}
	default:
		// Numbers and anything else YAML produces; the option layer
		// reads them back as strings.
		return pandoc.MetaString(fmt.Sprint(t))
	}
}

func convertChildren(node ast.Node) ([]pandoc.Block, error) {
	var out []pandoc.Block
	for _, child := range node.GetChildren() {
		blocks, err := convertBlock(child)
		if err != nil {
			return nil, err
		}
		out = append(out, blocks...)
	}
	return out, nil
}

func convertBlock(node ast.Node) ([]pandoc.Block, error) {
	switch n := node.(type) {
	case *ast.Heading:
		return []pandoc.Block{&pandoc.Header{
			Attr:    pandoc.Attr{Id: n.HeadingID},
			Level:   n.Level,
			Inlines: convertInlineChildren(n),
		}}, nil
	case *ast.Paragraph:
		return []pandoc.Block{&pandoc.Para{Inlines: convertInlineChildren(n)}}, nil
	case *ast.Table:
		tbl, err := convertTable(n)
		if err != nil {
			return nil, err
		}
		return []pandoc.Block{tbl}, nil
	case *ast.CodeBlock:
		attr := pandoc.Attr{}
		if len(n.Info) > 0 {
			attr.Classes = []string{string(n.Info)}
		}
		return []pandoc.Block{&pandoc.CodeBlock{
			Attr: attr,
			Text: strings.TrimRight(string(n.Literal), "\n"),
		}}, nil
	case *ast.BlockQuote:
		inner, err := convertChildren(n)
		if err != nil {
			return nil, err
		}
		return []pandoc.Block{&pandoc.BlockQuote{Blocks: inner}}, nil
	case *ast.List:
		return convertList(n)
	case *ast.HorizontalRule:
		return []pandoc.Block{&pandoc.HorizontalRule{}}, nil
	case *ast.HTMLBlock:
		return []pandoc.Block{&pandoc.RawBlock{Format: "html", Text: string(n.Literal)}}, nil
	default:
		// Containers we do not model directly get flattened.
		return convertChildren(node)
	}
}

func convertList(n *ast.List) ([]pandoc.Block, error) {
	var items [][]pandoc.Block
	for _, li := range n.GetChildren() {
		blocks, err := convertChildren(li)
		if err != nil {
			return nil, err
		}
		items = append(items, blocks)
	}
	if n.ListFlags&ast.ListTypeOrdered != 0 {
		start := n.Start
		if start == 0 {
			start = 1
		}
		return []pandoc.Block{&pandoc.OrderedList{
			Attrs: pandoc.ListAttrs{
				Start:     start,
				Style:     pandoc.Decimal,
				Delimiter: pandoc.Period,
			},
			Items: items,
		}}, nil
	}
	return []pandoc.Block{&pandoc.BulletList{Items: items}}, nil
}

func convertTable(n *ast.Table) (*pandoc.Table, error) {
	tbl := &pandoc.Table{}
	for _, section := range n.GetChildren() {
		switch s := section.(type) {
		case *ast.TableHeader:
			rows, aligns := convertRows(s)
			tbl.Head = pandoc.TableHeadFoot{Rows: rows}
			for _, a := range aligns {
				tbl.Aligns = append(tbl.Aligns, pandoc.ColSpec{
					Align: a,
					Width: pandoc.ColWidth{Default: true},
				})
			}
		case *ast.TableBody:
			rows, _ := convertRows(s)
			tbl.Bodies = append(tbl.Bodies, pandoc.TableBody{Body: rows})
		case *ast.TableFooter:
			rows, _ := convertRows(s)
			tbl.Foot = pandoc.TableHeadFoot{Rows: rows}
		}
	}
	if len(tbl.Bodies) == 0 {
		tbl.Bodies = []pandoc.TableBody{{}}
	}
	if tbl.Head.Rows == nil && tbl.Aligns == nil {
		return nil, oops.Errorf("table has no header row")
	}
	return tbl, nil
}

func convertRows(section ast.Node) ([]pandoc.TableRow, []pandoc.Alignment) {
	var rows []pandoc.TableRow
	var aligns []pandoc.Alignment
	for _, rowNode := range section.GetChildren() {
		row := pandoc.TableRow{}
		for _, cellNode := range rowNode.GetChildren() {
			cell, ok := cellNode.(*ast.TableCell)
			if !ok {
				continue
			}
			align := cellAlignment(cell.Align)
			if len(rows) == 0 {
				aligns = append(aligns, align)
			}
			row.Cells = append(row.Cells, pandoc.TableCell{
				Align:   align,
				RowSpan: 1,
				ColSpan: 1,
				Blocks: []pandoc.Block{
					&pandoc.Plain{Inlines: convertInlineChildren(cell)},
				},
			})
		}
		rows = append(rows, row)
	}
	return rows, aligns
}

func cellAlignment(a ast.CellAlignFlags) pandoc.Alignment {
	switch a {
	case ast.TableAlignmentLeft:
		return pandoc.AlignLeft
	case ast.TableAlignmentRight:
		return pandoc.AlignRight
	case ast.TableAlignmentCenter:
		return pandoc.AlignCenter
	default:
		return pandoc.AlignDefault
	}
}

// attachCaptions folds "Table: ..." paragraphs into the caption of
// the adjacent table, matching pandoc's caption convention.
func attachCaptions(blocks []pandoc.Block) []pandoc.Block {
	out := make([]pandoc.Block, 0, len(blocks))
	for i := 0; i < len(blocks); i++ {
		tbl, ok := blocks[i].(*pandoc.Table)
		if !ok {
			out = append(out, blocks[i])
			continue
		}

		// A caption paragraph may precede or follow the table.
		if caption, rest, ok2 := captionFrom(blocks, i+1); ok2 {
			tbl.Caption = caption
			out = append(out, tbl)
			i = rest
			continue
		}
		if len(out) > 0 {
			if caption, ok2 := captionPara(out[len(out)-1]); ok2 {
				tbl.Caption = caption
				out = out[:len(out)-1]
			}
		}
		out = append(out, tbl)
	}
	return out
}

func captionFrom(blocks []pandoc.Block, idx int) (pandoc.Caption, int, bool) {
	if idx >= len(blocks) {
		return pandoc.Caption{}, 0, false
	}
	caption, ok := captionPara(blocks[idx])
	if !ok {
		return pandoc.Caption{}, 0, false
	}
	return caption, idx, true
}

// captionPara recognizes a paragraph of the form "Table: ..." or
// ": ..." and returns its text as a caption.
func captionPara(b pandoc.Block) (pandoc.Caption, bool) {
	para, ok := b.(*pandoc.Para)
	if !ok || len(para.Inlines) == 0 {
		return pandoc.Caption{}, false
	}
	first, ok := para.Inlines[0].(*pandoc.Str)
	if !ok {
		return pandoc.Caption{}, false
	}

	var rest []pandoc.Inline
	switch {
	case first.Text == "Table:" || first.Text == ":":
		rest = para.Inlines[1:]
		if len(rest) > 0 {
			if _, isSpace := rest[0].(*pandoc.Space); isSpace {
				rest = rest[1:]
			}
		}
	case strings.HasPrefix(first.Text, "Table:"):
		rest = append([]pandoc.Inline{
			&pandoc.Str{Text: strings.TrimPrefix(first.Text, "Table:")},
		}, para.Inlines[1:]...)
	default:
		return pandoc.Caption{}, false
	}
	if len(rest) == 0 {
		return pandoc.Caption{}, false
	}
	return pandoc.Caption{Long: []pandoc.Block{&pandoc.Plain{Inlines: rest}}}, true
}

// convertInlineChildren renders a node's inline children, splitting
// text runs into Str and Space inlines and @tbl: tokens into Cites,
// the same shapes pandoc produces.
func convertInlineChildren(node ast.Node) []pandoc.Inline {
	var out []pandoc.Inline
	for _, child := range node.GetChildren() {
		out = append(out, convertInline(child)...)
	}
	return out
}

func convertInline(node ast.Node) []pandoc.Inline {
	switch n := node.(type) {
	case *ast.Text:
		return textInlines(string(n.Literal))
	case *ast.Emph:
		return []pandoc.Inline{&pandoc.Emph{Inlines: convertInlineChildren(n)}}
	case *ast.Strong:
		return []pandoc.Inline{&pandoc.Strong{Inlines: convertInlineChildren(n)}}
	case *ast.Del:
		return []pandoc.Inline{&pandoc.Strikeout{Inlines: convertInlineChildren(n)}}
	case *ast.Code:
		return []pandoc.Inline{&pandoc.Code{Text: string(n.Literal)}}
	case *ast.Link:
		return []pandoc.Inline{&pandoc.Link{
			Inlines: convertInlineChildren(n),
			Target:  pandoc.Target{Url: string(n.Destination), Title: string(n.Title)},
		}}
	case *ast.Image:
		return []pandoc.Inline{&pandoc.Image{
			Inlines: convertInlineChildren(n),
			Target:  pandoc.Target{Url: string(n.Destination), Title: string(n.Title)},
		}}
	case *ast.HTMLSpan:
		return []pandoc.Inline{&pandoc.RawInline{Format: "html", Text: string(n.Literal)}}
	case *ast.Hardbreak:
		return []pandoc.Inline{&pandoc.LineBreak{}}
	case *ast.Softbreak:
		return []pandoc.Inline{&pandoc.SoftBreak{}}
	default:
		return convertInlineChildren(node)
	}
}

// textInlines splits a text run into Str and Space inlines, emitting
// a Cite for every @tbl: token. Trailing punctuation stays in a Str
// after the Cite so references still resolve.
func textInlines(text string) []pandoc.Inline {
	var out []pandoc.Inline
	if text != strings.TrimLeft(text, " \t\n\r") {
		out = append(out, &pandoc.Space{})
	}
	fields := strings.Split(normalizeSpace(text), " ")
	for i, word := range fields {
		if i > 0 {
			out = append(out, &pandoc.Space{})
		}
		out = append(out, wordInlines(word)...)
	}
	if text != strings.TrimRight(text, " \t\n\r") {
		out = append(out, &pandoc.Space{})
	}
	return out
}

func wordInlines(word string) []pandoc.Inline {
	if word == "" {
		return nil
	}
	loc := citePattern.FindStringIndex(word)
	if loc == nil {
		return []pandoc.Inline{&pandoc.Str{Text: word}}
	}

	var out []pandoc.Inline
	if loc[0] > 0 {
		out = append(out, &pandoc.Str{Text: word[:loc[0]]})
	}
	label := word[loc[0]+1 : loc[1]]
	out = append(out, &pandoc.Cite{
		Citations: []pandoc.Citation{{Id: label, Mode: pandoc.AuthorInText}},
		Inlines:   []pandoc.Inline{&pandoc.Str{Text: "@" + label}},
	})
	if loc[1] < len(word) {
		out = append(out, wordInlines(word[loc[1]:])...)
	}
	return out
}

func normalizeSpace(text string) string {
	return strings.Join(strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}), " ")
}

func stripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
}

// splitFrontmatter separates a leading --- delimited YAML block from
// the markdown body. An unterminated block is treated as body text.
func splitFrontmatter(content []byte) (front, body []byte) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content
	}
	rest := content[bytes.IndexByte(content, '\n')+1:]
	for _, marker := range []string{"\n---\n", "\n---\r\n", "\n...\n"} {
		if idx := bytes.Index(rest, []byte(marker)); idx >= 0 {
			return rest[:idx+1], rest[idx+len(marker):]
		}
	}
	return nil, content
}
