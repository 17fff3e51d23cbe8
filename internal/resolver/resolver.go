// Package resolver assigns numbers to labeled tables and rewrites the
// references that point at them. It runs two ordered passes over the
// document: label discovery, then reference rewriting. All state lives
// on the Resolver so each document gets its own.
package resolver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/g5becks/tablenos/internal/attrblock"
	"github.com/g5becks/tablenos/internal/config"
	"github.com/g5becks/tablenos/internal/diag"
	"github.com/g5becks/tablenos/internal/pandoc"
)

// labelPattern is the label convention: "tbl:" followed by letters,
// digits, underscores, slashes or dashes, possibly nothing at all.
var labelPattern = regexp.MustCompile(`^tbl:[\w/-]*$`)

// Entry is one numbered table.
type Entry struct {
	Label           string
	Number          int
	Section         int
	Tagged          bool
	Tag             string
	TagIsMath       bool
	Unreferenceable bool
	Caption         string
}

// DisplayText renders the number the way readers see it: the tag
// verbatim when present, a section-qualified pair under per-section
// numbering, otherwise the bare count.
func (e *Entry) DisplayText(bySection bool) string {
	if e.Tagged {
		return e.Tag
	}
	if bySection {
		return strconv.Itoa(e.Section) + "." + strconv.Itoa(e.Number)
	}
	return strconv.Itoa(e.Number)
}

// Modifier is the character in front of a reference.
type Modifier int

const (
	ModNone Modifier = iota
	ModPlus          // lowercase name, clever
	ModStar          // capitalized name, clever
	ModBang          // bare number, clever suppressed
)

// Ref is one resolved reference occurrence.
type Ref struct {
	Label        string
	Modifier     Modifier
	LinkDisabled bool
}

// Stats summarizes a discovery pass for target finalization.
type Stats struct {
	AnyLabeled    bool
	HasUnnumbered bool
	HasTagged     bool
	CleverUsed    bool
	RefCount      int
}

// Target renders resolution results for one output family.
type Target interface {
	// NumberedTable rewrites a labeled table's caption and wraps it in
	// format markup, returning replacement blocks.
	NumberedTable(t *pandoc.Table, e *Entry) []pandoc.Block
	// UnnumberedTable handles a table with no usable label.
	UnnumberedTable(t *pandoc.Table) []pandoc.Block
	// Reference renders a resolved reference.
	Reference(e *Entry, r Ref) []pandoc.Inline
	// Finalize amends document metadata after both passes.
	Finalize(doc *pandoc.Document, st *Stats)
}

type Resolver struct {
	target Target
	cfg    *config.Settings
	diags  *diag.Collector

	entries map[string]*Entry
	order   []*Entry
	counter int
	section int
	anon    int
	stats   Stats
}

func New(target Target, cfg *config.Settings, diags *diag.Collector) *Resolver {
	return &Resolver{
		target:  target,
		cfg:     cfg,
		diags:   diags,
		entries: map[string]*Entry{},
		section: cfg.SectionOffset,
	}
}

// Entries returns the numbered tables in document order.
func (r *Resolver) Entries() []*Entry {
	return r.order
}

// Stats returns the discovery statistics. Valid after Apply.
func (r *Resolver) Stats() Stats {
	return r.stats
}

// Apply runs both passes and finalizes the target's metadata.
func (r *Resolver) Apply(doc *pandoc.Document) {
	r.discover(doc)
	r.rewriteRefs(doc)
	r.target.Finalize(doc, &r.stats)
}

// discover is the label discovery pass. It numbers tables in document
// order and replaces each with the target's rendition.
func (r *Resolver) discover(doc *pandoc.Document) {
	doc.Blocks = pandoc.WalkBlocks(doc.Blocks, pandoc.Visitor{
		Block: func(b pandoc.Block) ([]pandoc.Block, bool) {
			switch blk := b.(type) {
			case *pandoc.Header:
				if blk.Level == 1 {
					r.section++
					if r.cfg.NumberBySection {
						r.counter = 0
					}
				}
				return nil, false
			case *pandoc.Table:
				return r.registerTable(blk), true
			}
			return nil, false
		},
	})
}

func (r *Resolver) registerTable(t *pandoc.Table) []pandoc.Block {
	attrs, ok := r.tableAttributes(t)
	if !ok || !labelPattern.MatchString(attrs.Id) {
		r.stats.HasUnnumbered = true
		return r.target.UnnumberedTable(t)
	}

	entry := &Entry{Label: attrs.Id, Section: r.section}
	if inlines, _ := captionInlines(&t.Caption); inlines != nil {
		entry.Caption = pandoc.Stringify(inlines)
	}
	if attrs.Id == "tbl:" {
		// Numbered but never referenceable. Give it a private label so
		// anchors stay unique.
		r.anon++
		entry.Label = fmt.Sprintf("tbl:unreferenceable-%d", r.anon)
		entry.Unreferenceable = true
	}

	if tag, present := attrs.Get("tag"); present {
		entry.Tagged = true
		entry.Tag, entry.TagIsMath = parseTag(tag, r.diags)
	} else {
		r.counter++
		entry.Number = r.counter
	}

	if entry.Tagged {
		r.stats.HasTagged = true
	}
	r.stats.AnyLabeled = true
	r.order = append(r.order, entry)

	if !entry.Unreferenceable {
		if first, dup := r.entries[entry.Label]; dup {
			bySection := r.cfg.NumberBySection
			r.diags.Warnf(diag.DuplicateLabel,
				"duplicate label %q on table %s; references resolve to table %s",
				entry.Label, describeTable(entry, bySection), describeTable(first, bySection))
		} else {
			r.entries[entry.Label] = entry
		}
	}

	return r.target.NumberedTable(t, entry)
}

// tableAttributes reads the label either from the table's own
// attributes or from a trailing block in the caption, which is then
// removed.
func (r *Resolver) tableAttributes(t *pandoc.Table) (attrblock.Attributes, bool) {
	if labelPattern.MatchString(t.Id) {
		attrs := attrblock.Attributes{Id: t.Id, Classes: t.Classes, KVs: t.KVs}
		return attrs, true
	}

	inlines, capIdx := captionInlines(&t.Caption)
	if inlines == nil {
		return attrblock.Attributes{}, false
	}
	kept, attrs, found, err := attrblock.Extract(inlines)
	if err != nil {
		r.diags.Warnf(diag.MalformedAttributes, "table caption: %v", err)
		return attrblock.Attributes{}, false
	}
	if !found {
		return attrblock.Attributes{}, false
	}
	setCaptionInlines(&t.Caption, capIdx, kept)
	t.Id = attrs.Id
	return attrs, true
}

// parseTag strips surrounding quotes from an explicit tag and detects
// the $...$ math form. A tag mixing math and text is unsupported and
// falls back to its literal text.
func parseTag(tag string, diags *diag.Collector) (string, bool) {
	if len(tag) >= 2 {
		switch {
		case tag[0] == '"' && tag[len(tag)-1] == '"',
			tag[0] == '\'' && tag[len(tag)-1] == '\'':
			return tag[1 : len(tag)-1], false
		case tag[0] == '$' && tag[len(tag)-1] == '$':
			return tag[1 : len(tag)-1], true
		}
	}
	if strings.Contains(tag, "$") {
		diags.Warnf(diag.MixedTags, "tag %q mixes math and text; using it verbatim", tag)
	}
	return tag, false
}

// describeTable identifies a table in diagnostics by its number and,
// when it has one, its caption.
func describeTable(e *Entry, bySection bool) string {
	if e.Caption == "" {
		return e.DisplayText(bySection)
	}
	return fmt.Sprintf("%s (%q)", e.DisplayText(bySection), e.Caption)
}

// captionInlines returns the inlines of the last caption block, which
// is where an attribute block sits, along with its index.
func captionInlines(c *pandoc.Caption) ([]pandoc.Inline, int) {
	for i := len(c.Long) - 1; i >= 0; i-- {
		switch blk := c.Long[i].(type) {
		case *pandoc.Plain:
			return blk.Inlines, i
		case *pandoc.Para:
			return blk.Inlines, i
		}
	}
	return nil, -1
}

func setCaptionInlines(c *pandoc.Caption, idx int, inlines []pandoc.Inline) {
	switch blk := c.Long[idx].(type) {
	case *pandoc.Plain:
		blk.Inlines = inlines
	case *pandoc.Para:
		blk.Inlines = inlines
	}
}
