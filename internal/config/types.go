package config

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

// Separator names accepted by caption-separator and their rendered
// text. "quad" is the em-quad space LaTeX puts after an unseparated
// caption number.
var separators = map[string]string{
	"none":    "",
	"colon":   ":",
	"period":  ".",
	"space":   " ",
	"quad":    " ",
	"newline": "\n",
}

type Settings struct {
	WarningLevel      int      `koanf:"warning-level"         validate:"min=0,max=2"`
	Cleveref          bool     `koanf:"cleveref-default"`
	Capitalise        bool     `koanf:"capitalise"`
	CaptionName       string   `koanf:"caption-name"`
	PlusName          []string `koanf:"plus-name"             validate:"omitempty,min=1,max=2"`
	StarName          []string `koanf:"star-name"             validate:"omitempty,min=1,max=2"`
	CaptionSeparator  string   `koanf:"caption-separator"     validate:"omitempty,oneof=none colon period space quad newline"`
	NumberBySection   bool     `koanf:"number-by-section"`
	SectionOffset     int      `koanf:"section-number-offset" validate:"min=0"`
	LatexCounterQuirk bool     `koanf:"latex-counter-quirk"`

	// Explicit-name tracking. Capitalisation and star-name derivation
	// only apply to names the user did not set themselves.
	PlusNameSet    bool `koanf:"-"`
	StarNameSet    bool `koanf:"-"`
	CaptionNameSet bool `koanf:"-"`

	ConfigDir string `koanf:"-"`
}

// Default returns the baseline a config file and metadata overlay.
// Name and separator defaults are filled by ApplyDefaults afterwards
// so that user-set values remain distinguishable from defaults.
func Default() *Settings {
	return &Settings{WarningLevel: 2}
}

func (s *Settings) ApplyDefaults() {
	if s.CaptionName == "" {
		s.CaptionName = "Table"
	} else {
		s.CaptionNameSet = true
	}
	if len(s.PlusName) == 0 {
		s.PlusName = []string{"table", "tables"}
	} else {
		s.PlusNameSet = true
		s.PlusName = fillPlural(s.PlusName)
	}
	if len(s.StarName) == 0 {
		if s.PlusNameSet {
			s.StarName = titleNames(s.PlusName)
		} else {
			s.StarName = []string{"Table", "Tables"}
		}
	} else {
		s.StarNameSet = true
		s.StarName = fillPlural(s.StarName)
	}
	if s.CaptionSeparator == "" {
		s.CaptionSeparator = "colon"
	}
}

// SeparatorText returns the text rendered between a caption number and
// the caption body.
func (s *Settings) SeparatorText() string {
	return separators[s.CaptionSeparator]
}

// RefNames returns the singular/plural name pair for a reference,
// honoring the capitalise option for names the user did not override.
func (s *Settings) RefNames(starred bool) (string, string) {
	names := s.PlusName
	explicit := s.PlusNameSet
	if starred {
		names = s.StarName
		explicit = s.StarNameSet
	}
	if s.Capitalise && !explicit && !starred {
		return titleWord(names[0]), titleWord(names[1])
	}
	return names[0], names[1]
}

func (s *Settings) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	valErr := v.Struct(s)
	if valErr == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(valErr, &validationErrors) {
		return oops.
			Code("CONFIG_INVALID").
			Wrapf(valErr, "validating settings")
	}

	fe := validationErrors[0]
	field := strings.ToLower(fe.Field())

	switch {
	case fe.Tag() == "oneof" && field == "captionseparator":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "caption-separator").
			With("value", s.CaptionSeparator).
			Hint("Supported separators: none, colon, period, space, quad, newline").
			Errorf("unknown caption separator %q", s.CaptionSeparator)

	case field == "warninglevel":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "warning-level").
			With("value", s.WarningLevel).
			Hint("warning-level must be 0, 1 or 2").
			Errorf("warning level %d out of range", s.WarningLevel)

	case field == "sectionoffset":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "section-number-offset").
			With("value", s.SectionOffset).
			Errorf("section number offset must not be negative")

	default:
		return oops.
			Code("CONFIG_INVALID").
			With("field", field).
			With("tag", fe.Tag()).
			Errorf("validation failed for field %q", field)
	}
}

// fillPlural completes a single-element name list with an "s" plural.
func fillPlural(names []string) []string {
	if len(names) == 1 {
		return []string{names[0], names[0] + "s"}
	}
	return names
}

func titleNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = titleWord(n)
	}
	return out
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
