package resolver

import (
	"strings"

	"github.com/g5becks/tablenos/internal/diag"
	"github.com/g5becks/tablenos/internal/pandoc"
)

// rewriteRefs is the reference rewriting pass. Pandoc parses
// "+@tbl:id" as a Str ending in "+" followed by a Cite, and the
// braced form "{@tbl:id}" as brace characters glued to the
// neighboring Strs, so matching happens over whole inline lists.
func (r *Resolver) rewriteRefs(doc *pandoc.Document) {
	pandoc.Walk(doc, pandoc.Visitor{
		Inlines: r.rewriteInlineList,
	})
}

func (r *Resolver) rewriteInlineList(inlines []pandoc.Inline) []pandoc.Inline {
	out := make([]pandoc.Inline, 0, len(inlines))
	for i := 0; i < len(inlines); i++ {
		cite, ok := inlines[i].(*pandoc.Cite)
		if !ok || len(cite.Citations) != 1 ||
			!labelPattern.MatchString(cite.Citations[0].Id) {
			out = append(out, inlines[i])
			continue
		}

		label := cite.Citations[0].Id
		ref := Ref{Label: label}
		braced := false

		// Read the modifier, and an opening brace, off the tail of the
		// preceding text.
		prefix := ""
		if len(out) > 0 {
			if s, ok := out[len(out)-1].(*pandoc.Str); ok {
				prefix = s.Text
			}
		}
		trimmed := prefix
		if mod, rest, ok := trailingModifier(trimmed); ok {
			ref.Modifier = mod
			trimmed = rest
		}
		if strings.HasSuffix(trimmed, "{") {
			braced = true
			trimmed = strings.TrimSuffix(trimmed, "{")
		}

		// Locate the closing brace and any attributes inside it.
		closeIdx := -1
		if braced {
			closeIdx = r.findClosingBrace(inlines, i+1, &ref)
			if closeIdx < 0 {
				braced = false
				trimmed = prefix // put the brace and modifier back
				ref.Modifier = ModNone
				ref.LinkDisabled = false
			}
		}

		entry, known := r.entries[label]
		if !known {
			r.diags.Warnf(diag.UnresolvedReference, "no table with label %q", label)
			out = append(out, inlines[i])
			continue
		}

		r.stats.RefCount++
		if r.clever(ref.Modifier) {
			r.stats.CleverUsed = true
		}

		// Commit the prefix trim now that the reference resolves.
		if trimmed != prefix && len(out) > 0 {
			if trimmed == "" {
				out = out[:len(out)-1]
			} else {
				out[len(out)-1] = &pandoc.Str{Text: trimmed}
			}
		}

		out = append(out, r.target.Reference(entry, ref)...)

		if braced && closeIdx >= 0 {
			// Skip everything through the closing brace, keeping any
			// text after it.
			if s, ok := inlines[closeIdx].(*pandoc.Str); ok {
				if _, after, found := strings.Cut(s.Text, "}"); found && after != "" {
					out = append(out, &pandoc.Str{Text: after})
				}
			}
			i = closeIdx
		}
	}
	return out
}

// findClosingBrace scans forward from start for a Str containing "}".
// Tokens between the reference and the brace are treated as reference
// attributes; only ".nolink" is recognized. Returns -1 when no brace
// closes the group.
func (r *Resolver) findClosingBrace(inlines []pandoc.Inline, start int, ref *Ref) int {
	for i := start; i < len(inlines); i++ {
		switch v := inlines[i].(type) {
		case *pandoc.Space, *pandoc.SoftBreak:
			continue
		case *pandoc.Str:
			body, _, found := strings.Cut(v.Text, "}")
			if strings.Contains(body, ".nolink") {
				ref.LinkDisabled = true
			}
			if found {
				return i
			}
		default:
			return -1
		}
	}
	return -1
}

// clever reports whether a modifier produces a named reference under
// the current settings.
func (r *Resolver) clever(m Modifier) bool {
	switch m {
	case ModPlus, ModStar:
		return true
	case ModBang:
		return false
	default:
		return r.cfg.Cleveref
	}
}

func trailingModifier(s string) (Modifier, string, bool) {
	if s == "" {
		return ModNone, s, false
	}
	switch s[len(s)-1] {
	case '+':
		return ModPlus, s[:len(s)-1], true
	case '*':
		return ModStar, s[:len(s)-1], true
	case '!':
		return ModBang, s[:len(s)-1], true
	}
	return ModNone, s, false
}
