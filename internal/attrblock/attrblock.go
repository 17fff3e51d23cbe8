// Package attrblock parses the trailing {#tbl:id ...} attribute block
// that markdown writers attach to a table caption. Pandoc leaves the
// block in the caption as ordinary inlines, so it has to be split off
// and parsed here before numbering can happen.
package attrblock

import (
	"fmt"
	"strings"

	"github.com/g5becks/tablenos/internal/pandoc"
)

// Attributes is a parsed attribute block. Values keep their
// surrounding quotes so callers can tell tag="Text" from tag=$math$.
type Attributes struct {
	Id      string
	Classes []string
	KVs     []pandoc.KV
}

// Get returns the value for key and whether it was present.
func (a *Attributes) Get(key string) (string, bool) {
	for _, kv := range a.KVs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Extract splits a trailing attribute block off a caption. It returns
// the caption with the block (and its leading space) removed, the
// parsed attributes, and whether a block was found. A block that is
// present but malformed yields found = true and a non-nil error; the
// caption is returned unchanged in that case.
func Extract(inlines []pandoc.Inline) ([]pandoc.Inline, Attributes, bool, error) {
	start := -1
	for i := len(inlines) - 1; i >= 0; i-- {
		s, ok := inlines[i].(*pandoc.Str)
		if !ok || !strings.HasPrefix(s.Text, "{") {
			continue
		}
		if i > 0 {
			if _, ok := inlines[i-1].(*pandoc.Space); !ok {
				continue
			}
		}
		start = i
		break
	}
	if start < 0 {
		return inlines, Attributes{}, false, nil
	}

	raw := rawText(inlines[start:])
	if !strings.HasSuffix(raw, "}") {
		return inlines, Attributes{}, true, fmt.Errorf("attribute block %q has no closing brace", raw)
	}
	attrs, err := Parse(raw)
	if err != nil {
		return inlines, Attributes{}, true, err
	}

	kept := inlines[:start]
	for len(kept) > 0 {
		if _, ok := kept[len(kept)-1].(*pandoc.Space); !ok {
			break
		}
		kept = kept[:len(kept)-1]
	}
	return kept, attrs, true, nil
}

// Parse parses a "{#id .class key=value}" string.
func Parse(s string) (Attributes, error) {
	body, ok := strings.CutPrefix(s, "{")
	if !ok {
		return Attributes{}, fmt.Errorf("attribute block %q does not start with {", s)
	}
	body, ok = strings.CutSuffix(body, "}")
	if !ok {
		return Attributes{}, fmt.Errorf("attribute block %q does not end with }", s)
	}

	tokens, err := tokenize(body)
	if err != nil {
		return Attributes{}, err
	}

	var attrs Attributes
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "#"):
			if attrs.Id == "" {
				attrs.Id = tok[1:]
			}
		case strings.HasPrefix(tok, "."):
			attrs.Classes = append(attrs.Classes, tok[1:])
		case strings.Contains(tok, "="):
			key, value, _ := strings.Cut(tok, "=")
			attrs.KVs = append(attrs.KVs, pandoc.KV{Key: key, Value: value})
		default:
			attrs.Classes = append(attrs.Classes, tok)
		}
	}
	return attrs, nil
}

// tokenize splits on spaces while respecting quoted values, keeping
// the quotes in the token.
func tokenize(s string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '$':
			quote = r
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c in attribute block", quote)
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

// rawText renders inlines back to their markdown-ish source so the
// attribute parser sees quotes and math delimiters pandoc consumed.
func rawText(inlines []pandoc.Inline) string {
	var sb strings.Builder
	writeRaw(&sb, inlines)
	return sb.String()
}

func writeRaw(sb *strings.Builder, inlines []pandoc.Inline) {
	for _, in := range inlines {
		switch v := in.(type) {
		case *pandoc.Str:
			sb.WriteString(v.Text)
		case *pandoc.Space, *pandoc.SoftBreak, *pandoc.LineBreak:
			sb.WriteByte(' ')
		case *pandoc.Math:
			sb.WriteByte('$')
			sb.WriteString(v.Text)
			sb.WriteByte('$')
		case *pandoc.Quoted:
			q := byte('"')
			if v.QuoteType == pandoc.SingleQuote {
				q = '\''
			}
			sb.WriteByte(q)
			writeRaw(sb, v.Inlines)
			sb.WriteByte(q)
		case *pandoc.Code:
			sb.WriteString(v.Text)
		case *pandoc.Emph:
			writeRaw(sb, v.Inlines)
		case *pandoc.Strong:
			writeRaw(sb, v.Inlines)
		case *pandoc.Span:
			writeRaw(sb, v.Inlines)
		default:
			sb.WriteString(pandoc.Stringify([]pandoc.Inline{in}))
		}
	}
}
