package pandoc_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/g5becks/tablenos/internal/pandoc"
)

// A minimal document carrying the shapes the filter touches: a table
// with an attributed caption, a paragraph with a citation, and meta.
const sampleDoc = `{
  "pandoc-api-version": [1, 23, 1],
  "meta": {
    "tablenos-cleveref": {"t": "MetaBool", "c": true},
    "title": {"t": "MetaInlines", "c": [{"t": "Str", "c": "Demo"}]}
  },
  "blocks": [
    {"t": "Table", "c": [
      ["tbl:widgets", [], []],
      [null, [{"t": "Plain", "c": [{"t": "Str", "c": "Widget"}, {"t": "Space"}, {"t": "Str", "c": "counts."}]}]],
      [[{"t": "AlignDefault"}, {"t": "ColWidthDefault"}]],
      [["", [], []], [[["", [], []], [[["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "n"}]}]]]]]],
      [[["", [], []], 0, [], [[["", [], []], [[["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "3"}]}]]]]]]],
      [["", [], []], []]
    ]},
    {"t": "Para", "c": [
      {"t": "Str", "c": "See"},
      {"t": "Space"},
      {"t": "Cite", "c": [
        [{"citationId": "tbl:widgets", "citationPrefix": [], "citationSuffix": [], "citationMode": {"t": "AuthorInText"}, "citationNoteNum": 0, "citationHash": 0}],
        [{"t": "Str", "c": "@tbl:widgets"}]
      ]},
      {"t": "Str", "c": "."}
    ]}
  ]
}`

func TestDecodeSampleDoc(t *testing.T) {
	doc, err := pandoc.Decode(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got, want := len(doc.Blocks), 2; got != want {
		t.Fatalf("len(doc.Blocks) = %d, want %d", got, want)
	}

	tbl, ok := doc.Blocks[0].(*pandoc.Table)
	if !ok {
		t.Fatalf("doc.Blocks[0] is %T, want *pandoc.Table", doc.Blocks[0])
	}
	if tbl.Id != "tbl:widgets" {
		t.Errorf("table id = %q, want %q", tbl.Id, "tbl:widgets")
	}
	if tbl.Caption.Short != nil {
		t.Errorf("caption short = %v, want nil", tbl.Caption.Short)
	}
	if got, want := len(tbl.Caption.Long), 1; got != want {
		t.Fatalf("len(caption.Long) = %d, want %d", got, want)
	}
	plain, ok := tbl.Caption.Long[0].(*pandoc.Plain)
	if !ok {
		t.Fatalf("caption block is %T, want *pandoc.Plain", tbl.Caption.Long[0])
	}
	if got, want := pandoc.Stringify(plain.Inlines), "Widget counts."; got != want {
		t.Errorf("caption text = %q, want %q", got, want)
	}
	if got, want := len(tbl.Bodies), 1; got != want {
		t.Fatalf("len(tbl.Bodies) = %d, want %d", got, want)
	}

	para, ok := doc.Blocks[1].(*pandoc.Para)
	if !ok {
		t.Fatalf("doc.Blocks[1] is %T, want *pandoc.Para", doc.Blocks[1])
	}
	cite, ok := para.Inlines[2].(*pandoc.Cite)
	if !ok {
		t.Fatalf("para.Inlines[2] is %T, want *pandoc.Cite", para.Inlines[2])
	}
	if got, want := len(cite.Citations), 1; got != want {
		t.Fatalf("len(cite.Citations) = %d, want %d", got, want)
	}
	if cite.Citations[0].Id != "tbl:widgets" {
		t.Errorf("citation id = %q, want %q", cite.Citations[0].Id, "tbl:widgets")
	}
	if cite.Citations[0].Mode != pandoc.AuthorInText {
		t.Errorf("citation mode = %q, want %q", cite.Citations[0].Mode, pandoc.AuthorInText)
	}

	if v := doc.Meta.Get("tablenos-cleveref"); v != pandoc.MetaBool(true) {
		t.Errorf("meta tablenos-cleveref = %v, want MetaBool(true)", v)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	doc, err := pandoc.Decode(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var buf bytes.Buffer
	if err := pandoc.Encode(&buf, doc); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// Compare as canonical JSON values so key order and whitespace do
	// not matter.
	var want, got any
	if err := json.Unmarshal([]byte(sampleDoc), &want); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal encoded: %v", err)
	}
	wantCanon, _ := json.Marshal(want)
	gotCanon, _ := json.Marshal(got)
	if !bytes.Equal(wantCanon, gotCanon) {
		t.Errorf("round trip mismatch\n got: %s\nwant: %s", gotCanon, wantCanon)
	}
}

func TestEncodeEmptyAttrSlices(t *testing.T) {
	doc := &pandoc.Document{
		Blocks: []pandoc.Block{
			&pandoc.Div{Blocks: []pandoc.Block{}},
		},
	}
	data, err := pandoc.EncodeBytes(doc)
	if err != nil {
		t.Fatalf("EncodeBytes() error = %v", err)
	}
	// Empty classes and key/value lists must encode as [] not null,
	// or pandoc rejects the document.
	if bytes.Contains(data, []byte("null")) {
		t.Errorf("encoded document contains null: %s", data)
	}
	if !bytes.Contains(data, []byte(`["",[],[]]`)) {
		t.Errorf("empty attr not encoded as tuple: %s", data)
	}
}

func TestDecodeRejectsUnknownBlock(t *testing.T) {
	bad := `{"pandoc-api-version": [1,23,1], "meta": {}, "blocks": [{"t": "Nonsense", "c": []}]}`
	if _, err := pandoc.Decode(strings.NewReader(bad)); err == nil {
		t.Fatal("Decode() error = nil, want unknown block error")
	}
}

func TestMetaSetAndRemove(t *testing.T) {
	var meta pandoc.Meta
	meta.Set("a", pandoc.MetaString("one"))
	meta.Set("b", pandoc.MetaString("two"))
	meta.Set("a", pandoc.MetaString("three"))
	if got := meta.Get("a"); got != pandoc.MetaString("three") {
		t.Errorf("Get(a) = %v, want three", got)
	}
	meta.Set("b", nil)
	if got := meta.Get("b"); got != nil {
		t.Errorf("Get(b) after removal = %v, want nil", got)
	}
	if len(meta) != 1 {
		t.Errorf("len(meta) = %d, want 1", len(meta))
	}
}
