// Package pandoc models the Pandoc document AST and its JSON wire form,
// as produced by `pandoc -t json` and consumed by `pandoc -f json`.
package pandoc

import "strings"

// Implemented pandoc-api-version. Documents constructed from scratch
// (rather than decoded) are stamped with this version.
var APIVersion = []int{1, 23, 1}

// Element is any node of the document tree.
type Element interface {
	element()
}

// Inline is an inline-level element.
type Inline interface {
	Element
	Tag() string
	inline()
}

// Block is a block-level element.
type Block interface {
	Element
	Tag() string
	block()
}

// MetaValue is a document metadata value.
type MetaValue interface {
	Element
	Tag() string
	meta()
}

// Document is a complete Pandoc document.
type Document struct {
	Version []int
	Meta    Meta
	Blocks  []Block
}

// MetaEntry is one key/value pair of a document's metadata map.
// Entry order is preserved so that re-encoding a document is stable.
type MetaEntry struct {
	Key   string
	Value MetaValue
}

type Meta []MetaEntry

// Get returns the value for key, or nil if the key is absent.
func (m Meta) Get(key string) MetaValue {
	for _, e := range m {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Set stores a value under key, replacing any existing entry.
// A nil value removes the key.
func (m *Meta) Set(key string, value MetaValue) {
	for i, e := range *m {
		if e.Key == key {
			if value == nil {
				*m = append((*m)[:i], (*m)[i+1:]...)
			} else {
				(*m)[i].Value = value
			}
			return
		}
	}
	if value != nil {
		*m = append(*m, MetaEntry{Key: key, Value: value})
	}
}

type MetaMap struct {
	Entries Meta
}

func (m *MetaMap) Tag() string { return "MetaMap" }
func (m *MetaMap) element()    {}
func (m *MetaMap) meta()       {}

type MetaList struct {
	Entries []MetaValue
}

func (m *MetaList) Tag() string { return "MetaList" }
func (m *MetaList) element()    {}
func (m *MetaList) meta()       {}

type MetaBool bool

func (MetaBool) Tag() string { return "MetaBool" }
func (MetaBool) element()    {}
func (MetaBool) meta()       {}

type MetaString string

func (MetaString) Tag() string { return "MetaString" }
func (MetaString) element()    {}
func (MetaString) meta()       {}

type MetaInlines struct {
	Inlines []Inline
}

func (m *MetaInlines) Tag() string { return "MetaInlines" }
func (m *MetaInlines) element()    {}
func (m *MetaInlines) meta()       {}

type MetaBlocks struct {
	Blocks []Block
}

func (m *MetaBlocks) Tag() string { return "MetaBlocks" }
func (m *MetaBlocks) element()    {}
func (m *MetaBlocks) meta()       {}

// KV is one key/value attribute pair.
type KV struct {
	Key   string
	Value string
}

// Attr carries an element's identifier, classes, and key/value pairs.
type Attr struct {
	Id      string
	Classes []string
	KVs     []KV
}

func (a *Attr) HasClass(c string) bool {
	for _, cl := range a.Classes {
		if cl == c {
			return true
		}
	}
	return false
}

// Get returns the value for key and whether the key is present.
func (a *Attr) Get(key string) (string, bool) {
	for _, kv := range a.KVs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Target is a link or image destination.
type Target struct {
	Url   string
	Title string
}

// ---- inlines ----

type Str struct {
	Text string
}

func (*Str) Tag() string { return "Str" }
func (*Str) element()    {}
func (*Str) inline()     {}

type Emph struct {
	Inlines []Inline
}

func (*Emph) Tag() string { return "Emph" }
func (*Emph) element()    {}
func (*Emph) inline()     {}

type Underline struct {
	Inlines []Inline
}

func (*Underline) Tag() string { return "Underline" }
func (*Underline) element()    {}
func (*Underline) inline()     {}

type Strong struct {
	Inlines []Inline
}

func (*Strong) Tag() string { return "Strong" }
func (*Strong) element()    {}
func (*Strong) inline()     {}

type Strikeout struct {
	Inlines []Inline
}

func (*Strikeout) Tag() string { return "Strikeout" }
func (*Strikeout) element()    {}
func (*Strikeout) inline()     {}

type Superscript struct {
	Inlines []Inline
}

func (*Superscript) Tag() string { return "Superscript" }
func (*Superscript) element()    {}
func (*Superscript) inline()     {}

type Subscript struct {
	Inlines []Inline
}

func (*Subscript) Tag() string { return "Subscript" }
func (*Subscript) element()    {}
func (*Subscript) inline()     {}

type SmallCaps struct {
	Inlines []Inline
}

func (*SmallCaps) Tag() string { return "SmallCaps" }
func (*SmallCaps) element()    {}
func (*SmallCaps) inline()     {}

type QuoteType string

const (
	SingleQuote QuoteType = "SingleQuote"
	DoubleQuote QuoteType = "DoubleQuote"
)

type Quoted struct {
	QuoteType QuoteType
	Inlines   []Inline
}

func (*Quoted) Tag() string { return "Quoted" }
func (*Quoted) element()    {}
func (*Quoted) inline()     {}

type CitationMode string

const (
	NormalCitation CitationMode = "NormalCitation"
	SuppressAuthor CitationMode = "SuppressAuthor"
	AuthorInText   CitationMode = "AuthorInText"
)

type Citation struct {
	Id      string
	Prefix  []Inline
	Suffix  []Inline
	Mode    CitationMode
	NoteNum int
	Hash    int
}

type Cite struct {
	Citations []Citation
	Inlines   []Inline
}

func (*Cite) Tag() string { return "Cite" }
func (*Cite) element()    {}
func (*Cite) inline()     {}

type Code struct {
	Attr
	Text string
}

func (*Code) Tag() string { return "Code" }
func (*Code) element()    {}
func (*Code) inline()     {}

type Space struct{}

func (*Space) Tag() string { return "Space" }
func (*Space) element()    {}
func (*Space) inline()     {}

type SoftBreak struct{}

func (*SoftBreak) Tag() string { return "SoftBreak" }
func (*SoftBreak) element()    {}
func (*SoftBreak) inline()     {}

type LineBreak struct{}

func (*LineBreak) Tag() string { return "LineBreak" }
func (*LineBreak) element()    {}
func (*LineBreak) inline()     {}

type MathType string

const (
	DisplayMath MathType = "DisplayMath"
	InlineMath  MathType = "InlineMath"
)

type Math struct {
	MathType MathType
	Text     string
}

func (*Math) Tag() string { return "Math" }
func (*Math) element()    {}
func (*Math) inline()     {}

type RawInline struct {
	Format string
	Text   string
}

func (*RawInline) Tag() string { return "RawInline" }
func (*RawInline) element()    {}
func (*RawInline) inline()     {}

type Link struct {
	Attr
	Inlines []Inline
	Target  Target
}

func (*Link) Tag() string { return "Link" }
func (*Link) element()    {}
func (*Link) inline()     {}

type Image struct {
	Attr
	Inlines []Inline
	Target  Target
}

func (*Image) Tag() string { return "Image" }
func (*Image) element()    {}
func (*Image) inline()     {}

type Note struct {
	Blocks []Block
}

func (*Note) Tag() string { return "Note" }
func (*Note) element()    {}
func (*Note) inline()     {}

type Span struct {
	Attr
	Inlines []Inline
}

func (*Span) Tag() string { return "Span" }
func (*Span) element()    {}
func (*Span) inline()     {}

// ---- blocks ----

type Plain struct {
	Inlines []Inline
}

func (*Plain) Tag() string { return "Plain" }
func (*Plain) element()    {}
func (*Plain) block()      {}

type Para struct {
	Inlines []Inline
}

func (*Para) Tag() string { return "Para" }
func (*Para) element()    {}
func (*Para) block()      {}

type LineBlock struct {
	Inlines [][]Inline
}

func (*LineBlock) Tag() string { return "LineBlock" }
func (*LineBlock) element()    {}
func (*LineBlock) block()      {}

type CodeBlock struct {
	Attr
	Text string
}

func (*CodeBlock) Tag() string { return "CodeBlock" }
func (*CodeBlock) element()    {}
func (*CodeBlock) block()      {}

type RawBlock struct {
	Format string
	Text   string
}

func (*RawBlock) Tag() string { return "RawBlock" }
func (*RawBlock) element()    {}
func (*RawBlock) block()      {}

type BlockQuote struct {
	Blocks []Block
}

func (*BlockQuote) Tag() string { return "BlockQuote" }
func (*BlockQuote) element()    {}
func (*BlockQuote) block()      {}

type ListNumberStyle string

const (
	DefaultStyle ListNumberStyle = "DefaultStyle"
	Example      ListNumberStyle = "Example"
	Decimal      ListNumberStyle = "Decimal"
	LowerRoman   ListNumberStyle = "LowerRoman"
	UpperRoman   ListNumberStyle = "UpperRoman"
	LowerAlpha   ListNumberStyle = "LowerAlpha"
	UpperAlpha   ListNumberStyle = "UpperAlpha"
)

type ListNumberDelim string

const (
	DefaultDelim ListNumberDelim = "DefaultDelim"
	Period       ListNumberDelim = "Period"
	OneParen     ListNumberDelim = "OneParen"
	TwoParens    ListNumberDelim = "TwoParens"
)

type ListAttrs struct {
	Start     int
	Style     ListNumberStyle
	Delimiter ListNumberDelim
}

type OrderedList struct {
	Attrs ListAttrs
	Items [][]Block
}

func (*OrderedList) Tag() string { return "OrderedList" }
func (*OrderedList) element()    {}
func (*OrderedList) block()      {}

type BulletList struct {
	Items [][]Block
}

func (*BulletList) Tag() string { return "BulletList" }
func (*BulletList) element()    {}
func (*BulletList) block()      {}

type Definition struct {
	Term       []Inline
	Definition [][]Block
}

type DefinitionList struct {
	Items []Definition
}

func (*DefinitionList) Tag() string { return "DefinitionList" }
func (*DefinitionList) element()    {}
func (*DefinitionList) block()      {}

type HorizontalRule struct{}

func (*HorizontalRule) Tag() string { return "HorizontalRule" }
func (*HorizontalRule) element()    {}
func (*HorizontalRule) block()      {}

type Header struct {
	Attr
	Level   int
	Inlines []Inline
}

func (*Header) Tag() string { return "Header" }
func (*Header) element()    {}
func (*Header) block()      {}

// Caption is a table or figure caption: an optional short form and the
// full caption as blocks. A nil Short encodes as JSON null.
type Caption struct {
	Short []Inline
	Long  []Block
}

type Alignment string

const (
	AlignLeft    Alignment = "AlignLeft"
	AlignRight   Alignment = "AlignRight"
	AlignCenter  Alignment = "AlignCenter"
	AlignDefault Alignment = "AlignDefault"
)

// ColWidth is a relative column width; Default means pandoc decides.
type ColWidth struct {
	Width   float64
	Default bool
}

type ColSpec struct {
	Align Alignment
	Width ColWidth
}

type TableRow struct {
	Attr
	Cells []TableCell
}

type TableCell struct {
	Attr
	Align   Alignment
	RowSpan int
	ColSpan int
	Blocks  []Block
}

type TableHeadFoot struct {
	Attr
	Rows []TableRow
}

type TableBody struct {
	Attr
	RowHeadColumns int
	Head           []TableRow
	Body           []TableRow
}

type Table struct {
	Attr
	Caption Caption
	Aligns  []ColSpec
	Head    TableHeadFoot
	Bodies  []TableBody
	Foot    TableHeadFoot
}

func (*Table) Tag() string { return "Table" }
func (*Table) element()    {}
func (*Table) block()      {}

type Figure struct {
	Attr
	Caption Caption
	Blocks  []Block
}

func (*Figure) Tag() string { return "Figure" }
func (*Figure) element()    {}
func (*Figure) block()      {}

type Div struct {
	Attr
	Blocks []Block
}

func (*Div) Tag() string { return "Div" }
func (*Div) element()    {}
func (*Div) block()      {}

// Stringify flattens inlines to plain text the way pandoc's
// pandoc.utils.stringify does: Str text verbatim, any whitespace
// inline as a single space, everything else by its children.
func Stringify(inlines []Inline) string {
	var sb strings.Builder
	writeInlineText(&sb, inlines)
	return sb.String()
}

func writeInlineText(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch v := in.(type) {
		case *Str:
			sb.WriteString(v.Text)
		case *Space, *SoftBreak, *LineBreak:
			sb.WriteByte(' ')
		case *Emph:
			writeInlineText(sb, v.Inlines)
		case *Underline:
			writeInlineText(sb, v.Inlines)
		case *Strong:
			writeInlineText(sb, v.Inlines)
		case *Strikeout:
			writeInlineText(sb, v.Inlines)
		case *Superscript:
			writeInlineText(sb, v.Inlines)
		case *Subscript:
			writeInlineText(sb, v.Inlines)
		case *SmallCaps:
			writeInlineText(sb, v.Inlines)
		case *Quoted:
			writeInlineText(sb, v.Inlines)
		case *Cite:
			writeInlineText(sb, v.Inlines)
		case *Link:
			writeInlineText(sb, v.Inlines)
		case *Image:
			writeInlineText(sb, v.Inlines)
		case *Span:
			writeInlineText(sb, v.Inlines)
		case *Code:
			sb.WriteString(v.Text)
		case *Math:
			sb.WriteString(v.Text)
		}
	}
}
