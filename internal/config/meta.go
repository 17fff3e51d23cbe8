package config

import (
	"strconv"
	"strings"

	"github.com/g5becks/tablenos/internal/diag"
	"github.com/g5becks/tablenos/internal/pandoc"
)

// ApplyMeta overlays document metadata on the settings. Both the
// tablenos- prefix and the shared xnos- prefix are honored, with the
// specific prefix winning when both appear. Unknown tablenos- keys get
// an info diagnostic; unknown xnos- keys are left alone because other
// filters in the family share that namespace.
func (s *Settings) ApplyMeta(meta pandoc.Meta, c *diag.Collector) {
	known := map[string]bool{}
	apply := func(key string, f func(pandoc.MetaValue) bool) {
		known[key] = true
		v := meta.Get(key)
		if v == nil {
			return
		}
		if !f(v) {
			c.Warnf(diag.UnknownOption, "metadata %s has an unusable value", key)
		}
	}
	// xnos- first so tablenos- overrides.
	applyBoth := func(name string, f func(pandoc.MetaValue) bool) {
		apply("xnos-"+name, f)
		apply("tablenos-"+name, f)
	}

	applyBoth("warning-level", func(v pandoc.MetaValue) bool {
		n, ok := metaInt(v)
		if !ok || n < 0 || n > 2 {
			return false
		}
		s.WarningLevel = n
		return true
	})
	setCleveref := func(v pandoc.MetaValue) bool {
		b, ok := metaBool(v)
		if !ok {
			return false
		}
		s.Cleveref = b
		return true
	}
	// Bare "cleveref" is weakest, then the prefixed forms.
	apply("cleveref", setCleveref)
	applyBoth("cleveref", setCleveref)
	setCapitalise := func(v pandoc.MetaValue) bool {
		b, ok := metaBool(v)
		if !ok {
			return false
		}
		s.Capitalise = b
		return true
	}
	applyBoth("capitalise", setCapitalise)
	applyBoth("capitalize", setCapitalise)

	apply("tablenos-caption-name", func(v pandoc.MetaValue) bool {
		text, ok := metaString(v)
		if !ok {
			return false
		}
		s.CaptionName = text
		s.CaptionNameSet = true
		return true
	})
	apply("tablenos-plus-name", func(v pandoc.MetaValue) bool {
		names, ok := metaNameList(v)
		if !ok {
			return false
		}
		s.PlusName = fillPlural(names)
		s.PlusNameSet = true
		if !s.StarNameSet {
			s.StarName = titleNames(s.PlusName)
		}
		return true
	})
	apply("tablenos-star-name", func(v pandoc.MetaValue) bool {
		names, ok := metaNameList(v)
		if !ok {
			return false
		}
		s.StarName = fillPlural(names)
		s.StarNameSet = true
		return true
	})
	applyBoth("caption-separator", func(v pandoc.MetaValue) bool {
		text, ok := metaString(v)
		if !ok {
			return false
		}
		if _, valid := separators[text]; !valid {
			return false
		}
		s.CaptionSeparator = text
		return true
	})
	applyBoth("number-by-section", func(v pandoc.MetaValue) bool {
		b, ok := metaBool(v)
		if !ok {
			return false
		}
		s.NumberBySection = b
		return true
	})
	applyBoth("number-offset", func(v pandoc.MetaValue) bool {
		n, ok := metaInt(v)
		if !ok || n < 0 {
			return false
		}
		s.SectionOffset = n
		return true
	})

	for _, entry := range meta {
		if !strings.HasPrefix(entry.Key, "tablenos-") || known[entry.Key] {
			continue
		}
		c.Infof(diag.UnknownOption, "ignoring unknown metadata key %q", entry.Key)
	}
}

func metaBool(v pandoc.MetaValue) (bool, bool) {
	switch m := v.(type) {
	case pandoc.MetaBool:
		return bool(m), true
	default:
		text, ok := metaString(v)
		if !ok {
			return false, false
		}
		switch strings.ToLower(text) {
		case "true", "on", "yes":
			return true, true
		case "false", "off", "no":
			return false, true
		}
		return false, false
	}
}

func metaInt(v pandoc.MetaValue) (int, bool) {
	text, ok := metaString(v)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

func metaString(v pandoc.MetaValue) (string, bool) {
	switch m := v.(type) {
	case pandoc.MetaString:
		return string(m), true
	case *pandoc.MetaInlines:
		return pandoc.Stringify(m.Inlines), true
	case pandoc.MetaBool:
		return strconv.FormatBool(bool(m)), true
	default:
		return "", false
	}
}

// metaNameList accepts either a single name or a [singular, plural]
// pair.
func metaNameList(v pandoc.MetaValue) ([]string, bool) {
	if list, ok := v.(*pandoc.MetaList); ok {
		if len(list.Entries) == 0 || len(list.Entries) > 2 {
			return nil, false
		}
		var names []string
		for _, e := range list.Entries {
			text, ok := metaString(e)
			if !ok {
				return nil, false
			}
			names = append(names, text)
		}
		return names, true
	}
	text, ok := metaString(v)
	if !ok {
		return nil, false
	}
	return []string{text}, true
}
