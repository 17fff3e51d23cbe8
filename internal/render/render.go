// Package render turns resolution results into output markup. Each
// output family gets its own Target implementation; the resolver
// stays format-agnostic.
package render

import (
	"strings"

	"github.com/g5becks/tablenos/internal/config"
	"github.com/g5becks/tablenos/internal/pandoc"
	"github.com/g5becks/tablenos/internal/resolver"
)

// ForFormat picks the Target for a pandoc output format name.
func ForFormat(format string, cfg *config.Settings) resolver.Target {
	switch format {
	case "latex", "beamer":
		return &latexTarget{cfg: cfg}
	case "html", "html4", "html5", "epub", "epub2", "epub3":
		return &htmlTarget{base: base{cfg: cfg}}
	case "docx":
		return &docxTarget{base: base{cfg: cfg}}
	default:
		return &plainTarget{base: base{cfg: cfg}}
	}
}

// base carries the caption and reference text shared by every target
// that pre-renders numbers instead of leaving them to a typesetter.
type base struct {
	cfg *config.Settings
}

// numberInlines renders an entry's display number. Math tags become a
// real math inline with spaces escaped the way TeX wants them.
func (b *base) numberInlines(e *resolver.Entry) []pandoc.Inline {
	if e.Tagged && e.TagIsMath {
		return []pandoc.Inline{&pandoc.Math{
			MathType: pandoc.InlineMath,
			Text:     strings.ReplaceAll(e.Tag, " ", `\ `),
		}}
	}
	return []pandoc.Inline{&pandoc.Str{Text: e.DisplayText(b.cfg.NumberBySection)}}
}

// captionPrefix builds the "Table N" caption lead-in, without the
// joiner that separates it from the caption body.
func (b *base) captionPrefix(e *resolver.Entry) []pandoc.Inline {
	parts := []pandoc.Inline{&pandoc.Str{Text: b.cfg.CaptionName}, &pandoc.Space{}}
	parts = append(parts, b.numberInlines(e)...)
	switch b.cfg.CaptionSeparator {
	case "colon", "period":
		sep := b.cfg.SeparatorText()
		if s, ok := parts[len(parts)-1].(*pandoc.Str); ok {
			parts[len(parts)-1] = &pandoc.Str{Text: s.Text + sep}
		} else {
			parts = append(parts, &pandoc.Str{Text: sep})
		}
	}
	return parts
}

// joiner separates the caption prefix from the caption body.
func (b *base) joiner() pandoc.Inline {
	switch b.cfg.CaptionSeparator {
	case "newline":
		return &pandoc.LineBreak{}
	case "quad":
		return &pandoc.Str{Text: b.cfg.SeparatorText()}
	default:
		return &pandoc.Space{}
	}
}

// rewriteCaption replaces the caption's first inline run with the
// prefixed form. wrap, when non-nil, encloses the prefix (the HTML
// target uses it for its span).
func (b *base) rewriteCaption(t *pandoc.Table, e *resolver.Entry, wrap func([]pandoc.Inline) []pandoc.Inline) {
	prefix := b.captionPrefix(e)
	if wrap != nil {
		prefix = wrap(prefix)
	}

	old := captionBody(&t.Caption)
	replaced := prefix
	if len(old) > 0 {
		replaced = append(replaced, b.joiner())
		replaced = append(replaced, old...)
	}
	t.Caption.Long = []pandoc.Block{&pandoc.Plain{Inlines: replaced}}
}

// refInlines renders a pre-rendered reference: optional clever name,
// then the number, linked unless disabled.
func (b *base) refInlines(e *resolver.Entry, r resolver.Ref, link bool) []pandoc.Inline {
	var out []pandoc.Inline
	if name, ok := b.cleverName(r); ok {
		// Non-breaking space keeps the name and number on one line.
		out = append(out, &pandoc.Str{Text: name + " "})
	}

	number := b.numberInlines(e)
	if link && !r.LinkDisabled {
		out = append(out, &pandoc.Link{
			Inlines: number,
			Target:  pandoc.Target{Url: "#" + e.Label},
		})
		return out
	}
	return append(out, number...)
}

func (b *base) cleverName(r resolver.Ref) (string, bool) {
	switch r.Modifier {
	case resolver.ModPlus:
		name, _ := b.cfg.RefNames(false)
		return name, true
	case resolver.ModStar:
		name, _ := b.cfg.RefNames(true)
		return name, true
	case resolver.ModBang:
		return "", false
	default:
		if b.cfg.Cleveref {
			name, _ := b.cfg.RefNames(false)
			return name, true
		}
		return "", false
	}
}

// captionBody flattens the caption's blocks into one inline run.
func captionBody(c *pandoc.Caption) []pandoc.Inline {
	var out []pandoc.Inline
	for _, blk := range c.Long {
		var inlines []pandoc.Inline
		switch b := blk.(type) {
		case *pandoc.Plain:
			inlines = b.Inlines
		case *pandoc.Para:
			inlines = b.Inlines
		default:
			continue
		}
		if len(out) > 0 && len(inlines) > 0 {
			out = append(out, &pandoc.Space{})
		}
		out = append(out, inlines...)
	}
	return out
}

type plainTarget struct {
	base
}

func (p *plainTarget) NumberedTable(t *pandoc.Table, e *resolver.Entry) []pandoc.Block {
	p.rewriteCaption(t, e, nil)
	return []pandoc.Block{t}
}

func (p *plainTarget) UnnumberedTable(t *pandoc.Table) []pandoc.Block {
	return []pandoc.Block{t}
}

func (p *plainTarget) Reference(e *resolver.Entry, r resolver.Ref) []pandoc.Inline {
	return p.refInlines(e, r, false)
}

func (p *plainTarget) Finalize(doc *pandoc.Document, st *resolver.Stats) {}
