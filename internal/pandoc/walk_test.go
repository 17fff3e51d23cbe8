package pandoc_test

import (
	"testing"

	"github.com/g5becks/tablenos/internal/pandoc"
)

func TestWalkReplacesBlocks(t *testing.T) {
	doc := &pandoc.Document{
		Blocks: []pandoc.Block{
			&pandoc.Para{Inlines: []pandoc.Inline{&pandoc.Str{Text: "keep"}}},
			&pandoc.HorizontalRule{},
		},
	}

	pandoc.Walk(doc, pandoc.Visitor{
		Block: func(b pandoc.Block) ([]pandoc.Block, bool) {
			if _, ok := b.(*pandoc.HorizontalRule); ok {
				return []pandoc.Block{
					&pandoc.Para{Inlines: []pandoc.Inline{&pandoc.Str{Text: "first"}}},
					&pandoc.Para{Inlines: []pandoc.Inline{&pandoc.Str{Text: "second"}}},
				}, true
			}
			return nil, false
		},
	})

	if got, want := len(doc.Blocks), 3; got != want {
		t.Fatalf("len(doc.Blocks) = %d, want %d", got, want)
	}
	second, ok := doc.Blocks[2].(*pandoc.Para)
	if !ok {
		t.Fatalf("doc.Blocks[2] is %T, want *pandoc.Para", doc.Blocks[2])
	}
	if got, want := pandoc.Stringify(second.Inlines), "second"; got != want {
		t.Errorf("replacement text = %q, want %q", got, want)
	}
}

func TestWalkRewritesInlineLists(t *testing.T) {
	doc := &pandoc.Document{
		Blocks: []pandoc.Block{
			&pandoc.Para{Inlines: []pandoc.Inline{
				&pandoc.Str{Text: "a"},
				&pandoc.Emph{Inlines: []pandoc.Inline{&pandoc.Str{Text: "b"}}},
			}},
		},
	}

	var lists int
	pandoc.Walk(doc, pandoc.Visitor{
		Inlines: func(inlines []pandoc.Inline) []pandoc.Inline {
			lists++
			out := make([]pandoc.Inline, 0, len(inlines))
			for _, in := range inlines {
				if s, ok := in.(*pandoc.Str); ok {
					out = append(out, &pandoc.Str{Text: s.Text + "!"})
					continue
				}
				out = append(out, in)
			}
			return out
		},
	})

	// One list for the paragraph, one nested list inside the Emph.
	if lists != 2 {
		t.Errorf("inline lists visited = %d, want 2", lists)
	}
	para := doc.Blocks[0].(*pandoc.Para)
	if got, want := pandoc.Stringify(para.Inlines), "a!b!"; got != want {
		t.Errorf("rewritten text = %q, want %q", got, want)
	}
}

func TestWalkReachesTableCaptionAndCells(t *testing.T) {
	doc := &pandoc.Document{
		Blocks: []pandoc.Block{
			&pandoc.Table{
				Caption: pandoc.Caption{Long: []pandoc.Block{
					&pandoc.Plain{Inlines: []pandoc.Inline{&pandoc.Str{Text: "cap"}}},
				}},
				Bodies: []pandoc.TableBody{{
					Body: []pandoc.TableRow{{
						Cells: []pandoc.TableCell{{
							RowSpan: 1, ColSpan: 1,
							Blocks: []pandoc.Block{
								&pandoc.Plain{Inlines: []pandoc.Inline{&pandoc.Str{Text: "cell"}}},
							},
						}},
					}},
				}},
			},
		},
	}

	var seen []string
	pandoc.Walk(doc, pandoc.Visitor{
		Inlines: func(inlines []pandoc.Inline) []pandoc.Inline {
			seen = append(seen, pandoc.Stringify(inlines))
			return inlines
		},
	})

	want := map[string]bool{"cap": false, "cell": false}
	for _, s := range seen {
		if _, ok := want[s]; ok {
			want[s] = true
		}
	}
	for s, ok := range want {
		if !ok {
			t.Errorf("inline list %q not visited", s)
		}
	}
}

func TestWalkVisitsMetaBlocks(t *testing.T) {
	doc := &pandoc.Document{
		Meta: pandoc.Meta{{
			Key: "abstract",
			Value: &pandoc.MetaBlocks{Blocks: []pandoc.Block{
				&pandoc.Para{Inlines: []pandoc.Inline{&pandoc.Str{Text: "meta"}}},
			}},
		}},
	}

	var visited bool
	pandoc.Walk(doc, pandoc.Visitor{
		Inlines: func(inlines []pandoc.Inline) []pandoc.Inline {
			if pandoc.Stringify(inlines) == "meta" {
				visited = true
			}
			return inlines
		},
	})
	if !visited {
		t.Error("meta block inlines not visited")
	}
}
