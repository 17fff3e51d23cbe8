package attrblock_test

import (
	"testing"

	"github.com/g5becks/tablenos/internal/attrblock"
	"github.com/g5becks/tablenos/internal/pandoc"
)

func inlines(words ...string) []pandoc.Inline {
	var out []pandoc.Inline
	for i, w := range words {
		if i > 0 {
			out = append(out, &pandoc.Space{})
		}
		out = append(out, &pandoc.Str{Text: w})
	}
	return out
}

func TestExtractTrailingBlock(t *testing.T) {
	caption := inlines("Widget", "counts.", "{#tbl:widgets}")
	kept, attrs, found, err := attrblock.Extract(caption)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !found {
		t.Fatal("Extract() found = false, want true")
	}
	if attrs.Id != "tbl:widgets" {
		t.Errorf("attrs.Id = %q, want %q", attrs.Id, "tbl:widgets")
	}
	if got, want := pandoc.Stringify(kept), "Widget counts."; got != want {
		t.Errorf("kept caption = %q, want %q", got, want)
	}
}

func TestExtractNoBlock(t *testing.T) {
	caption := inlines("Just", "a", "caption.")
	kept, _, found, err := attrblock.Extract(caption)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if found {
		t.Fatal("Extract() found = true, want false")
	}
	if got, want := pandoc.Stringify(kept), "Just a caption."; got != want {
		t.Errorf("kept caption = %q, want %q", got, want)
	}
}

func TestExtractMultiTokenBlock(t *testing.T) {
	// Pandoc splits {#tbl:results .striped tag="Tbl A"} on spaces
	// before this filter ever sees it.
	caption := []pandoc.Inline{
		&pandoc.Str{Text: "Results."},
		&pandoc.Space{},
		&pandoc.Str{Text: "{#tbl:results"},
		&pandoc.Space{},
		&pandoc.Str{Text: ".striped"},
		&pandoc.Space{},
		&pandoc.Str{Text: `tag="Tbl`},
		&pandoc.Space{},
		&pandoc.Str{Text: `A"}`},
	}
	kept, attrs, found, err := attrblock.Extract(caption)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !found {
		t.Fatal("Extract() found = false, want true")
	}
	if attrs.Id != "tbl:results" {
		t.Errorf("attrs.Id = %q, want %q", attrs.Id, "tbl:results")
	}
	if len(attrs.Classes) != 1 || attrs.Classes[0] != "striped" {
		t.Errorf("attrs.Classes = %v, want [striped]", attrs.Classes)
	}
	tag, ok := attrs.Get("tag")
	if !ok {
		t.Fatal("tag attribute missing")
	}
	if want := `"Tbl A"`; tag != want {
		t.Errorf("tag = %q, want %q", tag, want)
	}
	if got, want := pandoc.Stringify(kept), "Results."; got != want {
		t.Errorf("kept caption = %q, want %q", got, want)
	}
}

func TestExtractMathTag(t *testing.T) {
	caption := []pandoc.Inline{
		&pandoc.Str{Text: "Data."},
		&pandoc.Space{},
		&pandoc.Str{Text: "{#tbl:data"},
		&pandoc.Space{},
		&pandoc.Str{Text: "tag="},
		&pandoc.Math{MathType: pandoc.InlineMath, Text: `\text{B.1}`},
		&pandoc.Str{Text: "}"},
	}
	_, attrs, found, err := attrblock.Extract(caption)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !found {
		t.Fatal("Extract() found = false, want true")
	}
	tag, ok := attrs.Get("tag")
	if !ok {
		t.Fatal("tag attribute missing")
	}
	if want := `$\text{B.1}$`; tag != want {
		t.Errorf("tag = %q, want %q", tag, want)
	}
}

func TestExtractUnclosedBlock(t *testing.T) {
	caption := inlines("Oops.", "{#tbl:oops")
	kept, _, found, err := attrblock.Extract(caption)
	if err == nil {
		t.Fatal("Extract() error = nil, want unclosed block error")
	}
	if !found {
		t.Error("Extract() found = false, want true for malformed block")
	}
	if got, want := pandoc.Stringify(kept), "Oops. {#tbl:oops"; got != want {
		t.Errorf("kept caption = %q, want unchanged %q", got, want)
	}
}

func TestParseEmptyLabel(t *testing.T) {
	attrs, err := attrblock.Parse("{#tbl:}")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if attrs.Id != "tbl:" {
		t.Errorf("attrs.Id = %q, want %q", attrs.Id, "tbl:")
	}
}

func TestParseBareWordIsClass(t *testing.T) {
	attrs, err := attrblock.Parse("{#tbl:x unnumbered}")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(attrs.Classes) != 1 || attrs.Classes[0] != "unnumbered" {
		t.Errorf("attrs.Classes = %v, want [unnumbered]", attrs.Classes)
	}
}
